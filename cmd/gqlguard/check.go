package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqlguard/internal/config"
	"github.com/hanpama/gqlguard/internal/eventbus"
	"github.com/hanpama/gqlguard/internal/guard"
	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/otel"
	"github.com/hanpama/gqlguard/internal/reqid"
	"github.com/hanpama/gqlguard/internal/validator"
)

// report is the JSON document written by check and check-value.
type report struct {
	Operation string                   `json:"operation,omitempty"`
	Valid     bool                     `json:"valid"`
	Errors    []validator.GraphQLError `json:"errors,omitempty"`
}

func checkCmd(a *app) *cobra.Command {
	var (
		operation     string
		variablesFile string
		failFast      bool
		otelEndpoint  string
	)
	cmd := &cobra.Command{
		Use:   "check <query-file>",
		Short: "Validate one operation of a query document",
		Long: `Validate one operation of a query document against the schema.

Variables are read from a JSON or YAML file. The result is printed as JSON;
the command exits non-zero when the operation has errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Merge(&config.Config{
				OTel:       config.OTelConfig{Endpoint: otelEndpoint},
				Validation: config.ValidationConfig{FailFast: failFast},
			})
			sch, err := a.loadSchema()
			if err != nil {
				return err
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read query: %w", err)
			}
			doc, err := language.ParseQuery(string(src))
			if err != nil {
				return fmt.Errorf("parse query: %w", err)
			}
			vars, err := loadVariables(variablesFile)
			if err != nil {
				return err
			}

			eventbus.Use(eventbus.New())
			shutdown, err := otel.Setup(a.cfg.OTel.Endpoint, a.cfg.OTel.Service)
			if err != nil {
				return fmt.Errorf("otel setup: %w", err)
			}
			defer func() { _ = shutdown(context.Background()) }()

			ctx, rid := reqid.NewContext(cmd.Context())
			logger := a.logger.With(zap.Int64("rid", rid))
			v := validator.New(sch,
				validator.WithLogger(logger),
				validator.WithFailFast(a.cfg.Validation.FailFast),
			)
			errs := v.ValidateOperation(ctx, doc, operation, vars)
			logger.Info("checked operation",
				zap.String("file", args[0]),
				zap.String("operation", operation),
				zap.Int("errors", errs.Len()),
			)
			return writeReport(cmd, report{
				Operation: operation,
				Valid:     errs.Len() == 0,
				Errors:    errs.GraphQLErrors(),
			})
		},
	}
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation name (required when the document has several)")
	cmd.Flags().StringVar(&variablesFile, "variables", "", "Variables file (JSON or YAML)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first error")
	cmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP collector endpoint")
	return cmd
}

func checkValueCmd(a *app) *cobra.Command {
	var argsText string
	cmd := &cobra.Command{
		Use:   "check-value <Type.field> <value-file>",
		Short: "Check a resolved value against a field's declared type",
		Long: `Check that a value, read from a JSON or YAML file, is a valid resolved
value for the named field. Records returned for interface or union types
must name their concrete type in "__typename".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := a.loadSchema()
			if err != nil {
				return err
			}
			typeName, fieldName, ok := strings.Cut(args[0], ".")
			if !ok {
				return fmt.Errorf("field must be given as Type.field, got %q", args[0])
			}
			parent := sch.Type(typeName)
			if parent == nil {
				return fmt.Errorf("unknown type %q", typeName)
			}
			if parent.Field(fieldName) == nil {
				return fmt.Errorf("type %q has no field %q", typeName, fieldName)
			}

			b, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read value: %w", err)
			}
			var raw any
			if err := yaml.Unmarshal(b, &raw); err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			site, err := fieldSite(fieldName, argsText)
			if err != nil {
				return err
			}

			v := validator.New(sch, validator.WithLogger(a.logger))
			errs := &validator.Errors{}
			if err := v.ValidateArguments(errs, parent.Field(fieldName), site, nil); err == nil {
				g := guard.New(guard.Recorded{args[0]: raw}, v, guard.WithLogger(a.logger))
				_, err := g.ResolveField(cmd.Context(), errs, parent, site, nil, validator.Path{fieldName})
				if err != nil && errs.Len() == 0 {
					return err
				}
			}
			return writeReport(cmd, report{Valid: errs.Len() == 0, Errors: errs.GraphQLErrors()})
		},
	}
	cmd.Flags().StringVar(&argsText, "args", "", `Field arguments as a JSON or YAML map, e.g. '{"id": "1"}'`)
	return cmd
}

// fieldSite builds the selection a resolved value is checked for.
func fieldSite(name, argsText string) (*language.Field, error) {
	site := &language.Field{Name: name, Alias: name}
	if argsText == "" {
		return site, nil
	}
	var args map[string]any
	if err := yaml.Unmarshal([]byte(argsText), &args); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		site.Arguments = append(site.Arguments, &language.Argument{Name: k, Value: language.ValueFromGo(args[k])})
	}
	return site, nil
}

// loadVariables reads a variables file. JSON is read through the YAML
// decoder, which accepts it unchanged.
func loadVariables(path string) (validator.VariableMap, error) {
	vars := validator.VariableMap{}
	if path == "" {
		return vars, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables: %w", err)
	}
	if err := yaml.Unmarshal(b, &vars); err != nil {
		return nil, fmt.Errorf("parse variables: %w", err)
	}
	return vars, nil
}

func writeReport(cmd *cobra.Command, r report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	if !r.Valid {
		return errInvalid
	}
	return nil
}
