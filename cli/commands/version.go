package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(ui.Out, version.Get().FullString(linkedSQLiteVersion()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// linkedSQLiteVersion asks the configured sqlite driver for its library
// version, returning "" when that fails.
func linkedSQLiteVersion() string {
	driver := "sqlite3"
	if cfg != nil && cfg.Driver == "sqlite" {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()
	var v string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&v); err != nil {
		return ""
	}
	return v
}
