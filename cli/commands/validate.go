package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the schema file without touching a database",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(cfg.SchemaPath)
	ui.PrintSuccess("Schema is valid: %s", abs)

	rows := make([][]string, 0, len(reg.Tables()))
	for _, t := range reg.Tables() {
		key := "none"
		if cols := t.PrimaryKeyColumns(); len(cols) > 0 {
			key = fmt.Sprint(len(cols), " column(s)")
		}
		rows = append(rows, []string{t.Name, fmt.Sprint(len(t.Columns)), key, fmt.Sprint(len(t.ForeignKeys))})
	}
	if err := ui.PrintTable([]string{"Table", "Columns", "Primary Key", "Foreign Keys"}, rows); err != nil {
		return err
	}
	if n := len(reg.Indexes()); n > 0 {
		ui.PrintInfo("%d index(es)", n)
	}
	return nil
}
