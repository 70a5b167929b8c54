package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/cli/internal/watch"
	"github.com/satishbabariya/sqlorm/migrate/diff"
	"github.com/satishbabariya/sqlorm/migrate/executor"
	"github.com/satishbabariya/sqlorm/schema"
)

var errAborted = errors.New("sync aborted")

var (
	syncPreserve bool
	syncYes      bool
	syncWatch    bool
	syncDryRun   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the database in line with the schema file",
	Long: `Bring every declared table in line with the schema file.

Missing tables are created and missing columns added. Tables with removed or
changed columns are rebuilt through a backup table, keeping their rows,
unless --preserve=false, in which case they are dropped and recreated.
Dropping asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	flags := syncCmd.Flags()
	flags.BoolVar(&syncPreserve, "preserve", true, "Keep rows by rebuilding through a backup table")
	flags.BoolVarP(&syncYes, "yes", "y", false, "Do not ask before dropping tables")
	flags.BoolVarP(&syncWatch, "watch", "w", false, "Sync again whenever the schema file changes")
	flags.BoolVar(&syncDryRun, "dry-run", false, "Print the plan instead of running it")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	preserve := preserveFlag(cmd, syncPreserve)

	if err := syncOnce(ctx, preserve); err != nil {
		return err
	}
	if !syncWatch {
		return nil
	}

	w, err := watch.New(cfg.SchemaPath, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	ui.PrintInfo("Watching %s, press Ctrl+C to stop", cfg.SchemaPath)
	return w.Run(ctx, func(ctx context.Context) error {
		err := syncOnce(ctx, preserve)
		if err != nil {
			ui.PrintError("%v", err)
		}
		return err
	})
}

func syncOnce(ctx context.Context, preserve bool) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer s.Close()

	plans, err := s.sync.PlanAll(ctx, preserve)
	if err != nil {
		return err
	}
	if syncDryRun {
		return ui.PrintMarkdown(planMarkdown(plans))
	}
	if dropped := destructive(plans); len(dropped) > 0 && !syncYes {
		ok, err := confirmDrop(dropped)
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	outcomes, err := s.sync.SyncAll(ctx, preserve)
	if err != nil {
		return err
	}
	return printOutcomes(reg, outcomes)
}

func destructive(plans []*executor.Plan) []string {
	var tables []string
	for _, p := range plans {
		if p.Outcome.Destructive() {
			tables = append(tables, p.Table)
		}
	}
	return tables
}

func confirmDrop(tables []string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Drop and recreate %s? Existing rows will be lost.", strings.Join(tables, ", ")),
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}

// outcomeRows lists tables, then indexes, in registration order.
func outcomeRows(reg *schema.Registry, outcomes map[string]diff.Outcome) [][]string {
	var rows [][]string
	for _, t := range reg.Tables() {
		if o, ok := outcomes[t.Name]; ok {
			rows = append(rows, []string{"table", t.Name, o.String()})
		}
	}
	for _, idx := range reg.Indexes() {
		if o, ok := outcomes[idx.Name]; ok {
			rows = append(rows, []string{"index", idx.Name, o.String()})
		}
	}
	return rows
}

func printOutcomes(reg *schema.Registry, outcomes map[string]diff.Outcome) error {
	rows := outcomeRows(reg, outcomes)
	for _, row := range rows {
		row[2] = ui.Outcome(row[2])
	}
	if err := ui.PrintTable([]string{"Kind", "Name", "Outcome"}, rows); err != nil {
		return err
	}
	ui.PrintSuccess("Database is in sync with %s", cfg.SchemaPath)
	return nil
}
