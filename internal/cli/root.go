// Package cli provides the command-line interface for hubgrid.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SophieEDesign/marketinghub-sub007/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hubgrid",
		Short: "hubgrid - record grid editing engine",
		Long: `hubgrid edits relational record tables the way a spreadsheet does.

It parses tab-separated clipboard text, validates and normalizes values
against each column's type, resolves pasted labels to linked records,
and keeps reciprocal link fields on both sides of a relationship in
step.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			var configFileUsed string
			cfg, configFileUsed, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			if cfg.Verbose && configFileUsed != "" {
				fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFileUsed)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./hubgrid.yaml)")
	rootCmd.PersistentFlags().String("store-driver", "", "Record store driver (postgres|sqlite)")
	rootCmd.PersistentFlags().String("store-dsn", "", "Postgres connection string")
	rootCmd.PersistentFlags().String("store-path", "", "SQLite database path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newPasteCommand())
	rootCmd.AddCommand(newFieldsCommand())
	rootCmd.AddCommand(newCopyCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
