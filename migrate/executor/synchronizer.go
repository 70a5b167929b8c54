// Package executor synchronizes declared tables with a live SQLite database.
package executor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/migrate/diff"
	"github.com/satishbabariya/sqlorm/migrate/history"
	"github.com/satishbabariya/sqlorm/migrate/introspect"
	"github.com/satishbabariya/sqlorm/migrate/sqlgen"
	qexec "github.com/satishbabariya/sqlorm/query/executor"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

// DefaultMaxBackupProbes bounds the search for a free backup table name.
const DefaultMaxBackupProbes = 1000

var (
	minAlterVersion        = version.Must(version.NewVersion("3.2.0"))
	minWithoutRowIDVersion = version.Must(version.NewVersion("3.8.2"))
)

// Synchronizer brings live tables in line with their declarations.
// Rebuilds run several statements and are not atomic; callers that need
// atomicity run the synchronizer over a transaction-bound backend.
type Synchronizer struct {
	backend   qexec.Backend
	inspector introspect.Introspector
	reg       *schema.Registry
	gen       *sqlgen.Generator

	history      *history.Manager
	maxProbes    int
	checkVersion bool
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithHistory records every synchronization that changes a table.
func WithHistory(m *history.Manager) Option {
	return func(s *Synchronizer) { s.history = m }
}

// WithMaxBackupProbes bounds how many backup names are tried.
func WithMaxBackupProbes(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.maxProbes = n
		}
	}
}

// WithVersionCheck rejects plans the live engine version cannot run.
func WithVersionCheck() Option {
	return func(s *Synchronizer) { s.checkVersion = true }
}

// New returns a synchronizer that runs DDL on backend and reads live
// schema through inspector.
func New(backend qexec.Backend, inspector introspect.Introspector, reg *schema.Registry, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend:   backend,
		inspector: inspector,
		reg:       reg,
		gen:       sqlgen.New(reg),
		maxProbes: DefaultMaxBackupProbes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan is the outcome for one table and the statements that produce it.
type Plan struct {
	Table      string
	Outcome    diff.Outcome
	Statements []string
	Diff       *diff.TableDiff
}

// Simulate classifies t without running anything.
func (s *Synchronizer) Simulate(ctx context.Context, t *schema.Table, preserve bool) (diff.Outcome, error) {
	d, err := s.compare(ctx, t)
	if err != nil {
		return 0, err
	}
	return d.Outcome(preserve)
}

// Plan classifies t and returns the statements Sync would run.
func (s *Synchronizer) Plan(ctx context.Context, t *schema.Table, preserve bool) (*Plan, error) {
	d, err := s.compare(ctx, t)
	if err != nil {
		return nil, err
	}
	outcome, err := d.Outcome(preserve)
	if err != nil {
		return nil, err
	}
	debug.Debug("classified table",
		"table", t.Name,
		"outcome", outcome.String(),
		"extra", d.Extra,
		"missing", columnNames(d.Missing))

	p := &Plan{Table: t.Name, Outcome: outcome, Diff: d}
	switch outcome {
	case diff.AlreadyInSync:
	case diff.NewTableCreated:
		create, err := s.gen.CreateTable(t, t.Name)
		if err != nil {
			return nil, err
		}
		p.Statements = append(p.Statements, create)
	case diff.NewColumnsAdded:
		if err := s.addColumns(p, t, d.Missing); err != nil {
			return nil, err
		}
	case diff.OldColumnsRemoved:
		if err := s.rebuild(ctx, p, t, d, nil); err != nil {
			return nil, err
		}
	case diff.NewColumnsAddedAndOldColumnsRemoved:
		if err := s.rebuild(ctx, p, t, d, d.Missing); err != nil {
			return nil, err
		}
		if err := s.addColumns(p, t, d.Missing); err != nil {
			return nil, err
		}
	case diff.DroppedAndRecreated:
		create, err := s.gen.CreateTable(t, t.Name)
		if err != nil {
			return nil, err
		}
		p.Statements = append(p.Statements, sqlgen.DropTable(t.Name), create)
	}

	// Dropping or renaming a table takes its indexes with it.
	switch outcome {
	case diff.OldColumnsRemoved, diff.NewColumnsAddedAndOldColumnsRemoved, diff.DroppedAndRecreated:
		if err := s.recreateIndexes(p, t); err != nil {
			return nil, err
		}
	}

	if s.checkVersion && len(p.Statements) > 0 {
		if err := s.versionGate(ctx, t, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Sync brings t in line with its declaration. A failing statement abandons
// the remaining ones; completed statements are not undone.
func (s *Synchronizer) Sync(ctx context.Context, t *schema.Table, preserve bool) (diff.Outcome, error) {
	p, err := s.Plan(ctx, t, preserve)
	if err != nil {
		return 0, err
	}
	if err := s.apply(ctx, p); err != nil {
		return 0, err
	}
	return p.Outcome, nil
}

func (s *Synchronizer) apply(ctx context.Context, p *Plan) error {
	start := time.Now()
	for i, stmt := range p.Statements {
		debug.Debug("executing ddl", "table", p.Table, "step", i+1, "sql", stmt)
		if err := s.backend.Exec(ctx, stmt); err != nil {
			debug.Error("ddl failed", "table", p.Table, "step", i+1, "sql", stmt, "error", err)
			return fmt.Errorf("sync %s: step %d of %d: %w", p.Table, i+1, len(p.Statements), err)
		}
	}
	if s.history == nil || len(p.Statements) == 0 {
		return nil
	}
	snapshot, err := history.SerializeSnapshot(p.Diff.Live)
	if err != nil {
		return err
	}
	return s.history.Record(ctx, &history.Record{
		Table:         p.Table,
		Outcome:       p.Outcome.String(),
		Statements:    p.Statements,
		Checksum:      history.CalculateChecksum(strings.Join(p.Statements, ";\n")),
		AppliedAt:     time.Now(),
		ExecutionTime: time.Since(start).Milliseconds(),
		Snapshot:      snapshot,
	})
}

// SyncAll synchronizes every registered table in registration order, then
// creates registered indexes that do not exist yet. Indexes always report
// AlreadyInSync.
func (s *Synchronizer) SyncAll(ctx context.Context, preserve bool) (map[string]diff.Outcome, error) {
	out := make(map[string]diff.Outcome)
	for _, t := range s.reg.Tables() {
		o, err := s.Sync(ctx, t, preserve)
		if err != nil {
			return out, err
		}
		out[t.Name] = o
	}
	stmts, err := s.pendingIndexes(ctx)
	if err != nil {
		return out, err
	}
	for _, idx := range s.reg.Indexes() {
		out[idx.Name] = diff.AlreadyInSync
	}
	for _, stmt := range stmts {
		debug.Debug("executing ddl", "sql", stmt)
		if err := s.backend.Exec(ctx, stmt); err != nil {
			return out, fmt.Errorf("create index: %w", err)
		}
	}
	return out, nil
}

// SimulateAll classifies every registered table and index without running
// anything.
func (s *Synchronizer) SimulateAll(ctx context.Context, preserve bool) (map[string]diff.Outcome, error) {
	out := make(map[string]diff.Outcome)
	for _, t := range s.reg.Tables() {
		o, err := s.Simulate(ctx, t, preserve)
		if err != nil {
			return out, err
		}
		out[t.Name] = o
	}
	for _, idx := range s.reg.Indexes() {
		out[idx.Name] = diff.AlreadyInSync
	}
	return out, nil
}

// PlanAll plans every registered table in registration order.
func (s *Synchronizer) PlanAll(ctx context.Context, preserve bool) ([]*Plan, error) {
	var plans []*Plan
	for _, t := range s.reg.Tables() {
		p, err := s.Plan(ctx, t, preserve)
		if err != nil {
			return plans, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *Synchronizer) compare(ctx context.Context, t *schema.Table) (*diff.TableDiff, error) {
	live, exists, err := s.inspector.Columns(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	return diff.Compare(t, live, exists), nil
}

func (s *Synchronizer) addColumns(p *Plan, t *schema.Table, cols []*schema.Column) error {
	for _, c := range cols {
		stmt, err := s.gen.AddColumn(t, c)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	return nil
}

func (s *Synchronizer) recreateIndexes(p *Plan, t *schema.Table) error {
	for _, idx := range s.reg.Indexes() {
		if idx.Table != t.ID {
			continue
		}
		stmt, err := s.gen.CreateIndex(idx)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	return nil
}

// rebuild renames the live table to a free backup name, creates the
// declared table without the omit columns, copies the overlapping columns
// and drops the backup.
func (s *Synchronizer) rebuild(ctx context.Context, p *Plan, t *schema.Table, d *diff.TableDiff, omit []*schema.Column) error {
	backup, err := s.backupName(ctx, t.Name)
	if err != nil {
		return err
	}
	create, err := s.gen.CreateTable(t, t.Name, columnNames(omit)...)
	if err != nil {
		return err
	}

	// Keep child tables' REFERENCES pointing at the original name.
	legacy := s.referenced(t)
	if legacy {
		p.Statements = append(p.Statements, "PRAGMA legacy_alter_table = ON")
	}
	p.Statements = append(p.Statements, sqlgen.RenameTable(t.Name, backup), create)
	if kept := d.Kept(); len(kept) > 0 {
		p.Statements = append(p.Statements, sqlgen.CopyData(backup, t.Name, kept))
	}
	p.Statements = append(p.Statements, sqlgen.DropTable(backup))
	if legacy {
		p.Statements = append(p.Statements, "PRAGMA legacy_alter_table = OFF")
	}
	return nil
}

// backupName probes name_backup, name_backup1, name_backup2, ... for the
// first name not taken.
func (s *Synchronizer) backupName(ctx context.Context, name string) (string, error) {
	base := name + "_backup"
	for n := 0; n < s.maxProbes; n++ {
		candidate := base
		if n > 0 {
			candidate += strconv.Itoa(n)
		}
		taken, err := introspect.TableExists(ctx, s.inspector, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", sqlerr.New(sqlerr.CodeBackupNameExhausted, "table %q: %d backup names taken", name, s.maxProbes)
}

func (s *Synchronizer) referenced(t *schema.Table) bool {
	for _, other := range s.reg.Tables() {
		for _, fk := range other.ForeignKeys {
			if fk.RefTable == t.ID {
				return true
			}
		}
	}
	return false
}

func (s *Synchronizer) pendingIndexes(ctx context.Context) ([]string, error) {
	existing := make(map[string]map[string]bool)
	var stmts []string
	for _, idx := range s.reg.Indexes() {
		t, ok := s.reg.Table(idx.Table)
		if !ok {
			return nil, sqlerr.New(sqlerr.CodeUnknownTable, "index %q: %s", idx.Name, idx.Table)
		}
		names, ok := existing[t.Name]
		if !ok {
			live, err := s.inspector.Indexes(ctx, t.Name)
			if err != nil {
				return nil, err
			}
			names = make(map[string]bool, len(live))
			for _, l := range live {
				names[l.Name] = true
			}
			existing[t.Name] = names
		}
		if names[idx.Name] {
			continue
		}
		stmt, err := s.gen.CreateIndex(idx)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// versionGate rejects statements the live engine cannot run.
func (s *Synchronizer) versionGate(ctx context.Context, t *schema.Table, p *Plan) error {
	raw, err := s.inspector.Version(ctx)
	if err != nil {
		return err
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("parse engine version %q: %w", raw, err)
	}
	for _, stmt := range p.Statements {
		if strings.HasPrefix(stmt, "ALTER TABLE") && v.LessThan(minAlterVersion) {
			return fmt.Errorf("sync %s: engine %s does not support ALTER TABLE (needs %s)", t.Name, v, minAlterVersion)
		}
	}
	if t.WithoutRowID && v.LessThan(minWithoutRowIDVersion) {
		return fmt.Errorf("sync %s: engine %s does not support WITHOUT ROWID (needs %s)", t.Name, v, minWithoutRowIDVersion)
	}
	return nil
}

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
