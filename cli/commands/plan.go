package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/migrate/executor"
)

var planPreserve bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what sync would do without changing the database",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planPreserve, "preserve", true, "Keep rows by rebuilding through a backup table")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer s.Close()

	plans, err := s.sync.PlanAll(ctx, preserveFlag(cmd, planPreserve))
	if err != nil {
		return err
	}
	return ui.PrintMarkdown(planMarkdown(plans))
}

// preserveFlag returns the flag value when it was given, else the config.
func preserveFlag(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("preserve") {
		return flag
	}
	return cfg.Preserve
}

func planMarkdown(plans []*executor.Plan) string {
	var b strings.Builder
	b.WriteString("# Synchronization plan\n\n")
	b.WriteString("| Table | Outcome | Statements |\n|---|---|---|\n")
	for _, p := range plans {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", p.Table, p.Outcome, len(p.Statements))
	}
	for _, p := range plans {
		if len(p.Statements) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", p.Table)
		if p.Outcome.Destructive() {
			b.WriteString("> Existing rows in this table will be lost.\n\n")
		}
		b.WriteString("```sql\n")
		for _, stmt := range p.Statements {
			b.WriteString(stmt)
			b.WriteString(";\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}
