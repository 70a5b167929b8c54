package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/migrate/history"
	qexec "github.com/satishbabariya/sqlorm/query/executor"
)

var historyTable string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List synchronizations recorded with history enabled",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyTable, "table", "", "Show only the latest record for this table")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireSQLite(cfg, "history"); err != nil {
		return err
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	backend := qexec.NewSQLBackend(db)
	defer backend.Close()

	ledger := history.NewManager(backend)
	if err := ledger.InitTable(ctx); err != nil {
		return err
	}

	var records []history.Record
	if historyTable != "" {
		r, ok, err := ledger.Latest(ctx, historyTable)
		if err != nil {
			return err
		}
		if !ok {
			ui.PrintInfo("No synchronizations recorded for %s", historyTable)
			return nil
		}
		records = append(records, *r)
	} else if records, err = ledger.GetAll(ctx); err != nil {
		return err
	}
	if len(records) == 0 {
		ui.PrintInfo("No synchronizations recorded")
		return nil
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.AppliedAt.Local().Format("2006-01-02 15:04:05"),
			r.Table,
			ui.Outcome(r.Outcome),
			strconv.Itoa(len(r.Statements)),
			fmt.Sprintf("%dms", r.ExecutionTime),
			r.Checksum[:min(12, len(r.Checksum))],
		}
	}
	return ui.PrintTable([]string{"Applied", "Table", "Outcome", "Statements", "Took", "Checksum"}, rows)
}
