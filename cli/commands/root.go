// Package commands implements the sqlorm command-line tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/internal/debug"
)

var (
	cfg *config.Config

	verbose         bool
	schemaFlag      string
	databaseURLFlag string
)

var rootCmd = &cobra.Command{
	Use:   "sqlorm",
	Short: "Keep SQLite tables in line with declared schemas",
	Long: `sqlorm compares the tables declared in a schema file with a live
database and brings the database in line: it creates missing tables, adds
columns, and rebuilds tables whose columns were removed or changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug.Init(verbose)
		c, err := config.Load()
		if err != nil {
			return err
		}
		if schemaFlag != "" {
			c.SchemaPath = schemaFlag
		}
		if databaseURLFlag != "" {
			c.DatabaseURL = databaseURLFlag
		}
		cfg = c
		debug.Debug("loaded config", "schema", cfg.SchemaPath, "provider", cfg.Provider, "driver", cfg.Driver)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	flags.StringVarP(&schemaFlag, "schema", "s", "", "Schema file (default from config, schema.sqlorm)")
	flags.StringVar(&databaseURLFlag, "database-url", "", "Database URL (default $DATABASE_URL)")
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
