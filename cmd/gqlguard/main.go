package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/gqlguard/internal/config"
	"github.com/hanpama/gqlguard/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// errInvalid signals that a check ran and found problems. The report has
// already been written, so main exits without printing it again.
var errInvalid = errors.New("validation failed")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// app carries the state every subcommand shares once the persistent flags
// have been applied.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		schemas    []string
		a          = &app{}
	)

	cmd := &cobra.Command{
		Use:   "gqlguard",
		Short: "Validate GraphQL operations and resolved values against a schema",
		Long: `gqlguard checks GraphQL operations against a schema before execution:
fields must exist on their parent types, arguments and variables must match
their declared types, and fragments must apply where they are spread.

The schema is read from one or more SDL files, merged in order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.Merge(&config.Config{Schema: schemas, Log: config.LogConfig{Level: logLevel}})
			logger, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringSliceVarP(&schemas, "schema", "s", nil, "Schema SDL file. Repeatable; files are merged in order")

	cmd.AddCommand(
		checkCmd(a),
		checkValueCmd(a),
		serveCmd(a),
		printSchemaCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "gqlguard %s\n", Version)
			},
		},
	)
	return cmd
}
