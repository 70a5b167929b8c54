package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/migrate/introspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [table]",
	Short: "Show live tables, or the columns and indexes of one table",
	Long: `Show what the database reports. Works with sqlite, postgres and mysql
providers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	in, err := introspect.NewIntrospector(db, cfg.Provider)
	if err != nil {
		return err
	}
	version, err := in.Version(ctx)
	if err != nil {
		return err
	}
	ui.PrintHeader("sqlorm inspect", fmt.Sprintf("%s %s", cfg.Provider, version))

	if len(args) == 0 {
		tables, err := in.Tables(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(tables))
		for _, name := range tables {
			cols, _, err := in.Columns(ctx, name)
			if err != nil {
				return err
			}
			rows = append(rows, []string{name, strconv.Itoa(len(cols))})
		}
		return ui.PrintTable([]string{"Table", "Columns"}, rows)
	}

	table := args[0]
	cols, ok, err := in.Columns(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("table %q does not exist", table)
	}
	ui.PrintSection(table)
	if err := ui.PrintTable([]string{"Column", "Type", "Not Null", "Default", "PK"}, columnRows(cols)); err != nil {
		return err
	}

	indexes, err := in.Indexes(ctx, table)
	if err != nil {
		return err
	}
	if len(indexes) == 0 {
		return nil
	}
	ui.PrintSection("Indexes")
	items := make([]string, len(indexes))
	for i, idx := range indexes {
		items[i] = fmt.Sprintf("%s (%s)", idx.Name, strings.Join(idx.Columns, ", "))
		if idx.Unique {
			items[i] += " unique"
		}
	}
	ui.PrintList(items)
	return nil
}

func columnRows(cols []introspect.ColumnMeta) [][]string {
	rows := make([][]string, len(cols))
	for i, c := range cols {
		dflt := ""
		if c.Default != nil {
			dflt = *c.Default
		}
		pk := ""
		if c.PrimaryKey > 0 {
			pk = strconv.Itoa(c.PrimaryKey)
		}
		rows[i] = []string{c.Name, c.Type, strconv.FormatBool(c.NotNull), dflt, pk}
	}
	return rows
}
