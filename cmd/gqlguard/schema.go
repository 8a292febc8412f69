package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlguard/internal/schema"
)

// loadSchema builds the schema from the configured SDL files.
func (a *app) loadSchema() (*schema.Schema, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	sources := make([]*ast.Source, 0, len(a.cfg.Schema))
	for _, path := range a.cfg.Schema {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		sources = append(sources, &ast.Source{Name: path, Input: string(b)})
	}
	sch, err := schema.BuildFromSources(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

func printSchemaCmd(a *app) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "print-schema",
		Short: "Merge the schema files and print the result as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := a.loadSchema()
			if err != nil {
				return err
			}
			sdl := schema.Render(sch)
			if outFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), sdl)
				return nil
			}
			return os.WriteFile(outFile, []byte(sdl), 0644)
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write SDL to file (default: stdout)")
	return cmd
}
