// Package diff classifies how a declared table diverges from its live
// counterpart.
package diff

import (
	"fmt"

	"github.com/satishbabariya/sqlorm/migrate/introspect"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

// Outcome is the result of synchronizing one table.
type Outcome int

const (
	AlreadyInSync Outcome = iota
	NewTableCreated
	NewColumnsAdded
	OldColumnsRemoved
	NewColumnsAddedAndOldColumnsRemoved
	DroppedAndRecreated
)

var outcomeNames = [...]string{
	AlreadyInSync:                       "already_in_sync",
	NewTableCreated:                     "new_table_created",
	NewColumnsAdded:                     "new_columns_added",
	OldColumnsRemoved:                   "old_columns_removed",
	NewColumnsAddedAndOldColumnsRemoved: "new_columns_added_and_old_columns_removed",
	DroppedAndRecreated:                 "dropped_and_recreated",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Destructive reports whether the outcome loses existing rows.
func (o Outcome) Destructive() bool {
	return o == DroppedAndRecreated
}

// TableDiff is the divergence between a declared table and the live one.
type TableDiff struct {
	Table  *schema.Table
	Exists bool

	// Extra lists live columns that must go: absent from the declaration or
	// present with a different definition.
	Extra []string
	// Changed is the subset of Extra that the declaration still has.
	Changed []string
	// Missing lists declared columns absent from the live table.
	Missing []*schema.Column
	// Live is what introspection reported.
	Live []introspect.ColumnMeta
}

// Compare diffs t against its live columns.
func Compare(t *schema.Table, live []introspect.ColumnMeta, exists bool) *TableDiff {
	d := &TableDiff{Table: t, Exists: exists, Live: live}
	if !exists {
		return d
	}

	liveByName := make(map[string]*introspect.ColumnMeta, len(live))
	for n := range live {
		col := &live[n]
		liveByName[col.Name] = col
		declared, ok := t.Column(col.Name)
		if !ok {
			d.Extra = append(d.Extra, col.Name)
			continue
		}
		if changes := columnChanges(t, declared, col); changes.Any() {
			d.Extra = append(d.Extra, col.Name)
			d.Changed = append(d.Changed, col.Name)
		}
	}
	for _, c := range t.Columns {
		if _, ok := liveByName[c.Name]; !ok {
			d.Missing = append(d.Missing, c)
		}
	}
	return d
}

// Outcome classifies the diff. With preserve unset, any column to remove
// drops and recreates the table. A missing column that ALTER TABLE ADD
// COLUMN cannot add forces a drop and recreate when preserve is unset and
// is an UnsafeMigration error otherwise.
func (d *TableDiff) Outcome(preserve bool) (Outcome, error) {
	if !d.Exists {
		return NewTableCreated, nil
	}
	if len(d.Extra) == 0 && len(d.Missing) == 0 {
		return AlreadyInSync, nil
	}
	if unsafe := d.Unaddable(); len(unsafe) > 0 {
		if preserve {
			return 0, sqlerr.New(sqlerr.CodeUnsafeMigration,
				"table %q: column %q cannot be added to existing rows", d.Table.Name, unsafe[0].Name)
		}
		return DroppedAndRecreated, nil
	}
	switch {
	case len(d.Extra) > 0 && !preserve:
		return DroppedAndRecreated, nil
	case len(d.Extra) == 0:
		return NewColumnsAdded, nil
	case len(d.Missing) == 0:
		return OldColumnsRemoved, nil
	default:
		return NewColumnsAddedAndOldColumnsRemoved, nil
	}
}

// Unaddable returns the missing columns SQLite refuses in ALTER TABLE ADD
// COLUMN: key or UNIQUE columns and NOT NULL columns without a default.
func (d *TableDiff) Unaddable() []*schema.Column {
	var out []*schema.Column
	for _, c := range d.Missing {
		if !Addable(d.Table, c) {
			out = append(out, c)
		}
	}
	return out
}

// Addable reports whether c can be added to t with ALTER TABLE ADD COLUMN.
func Addable(t *schema.Table, c *schema.Column) bool {
	if t.IsPrimaryKey(c.Name) || c.Unique {
		return false
	}
	return !c.NotNull || c.HasDefault()
}

// Kept returns the column names present in both the live table and the
// declaration with the same name, in declaration order.
func (d *TableDiff) Kept() []string {
	live := make(map[string]bool, len(d.Live))
	for _, c := range d.Live {
		live[c.Name] = true
	}
	var out []string
	for _, c := range d.Table.Columns {
		if live[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}
