// Package schema describes declared tables: their columns, keys, indexes
// and the run-time registry the compiler and synchronizer resolve them from.
package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// TableID identifies a declared table independently of its SQL name.
type TableID string

// Table is a declared table. It is built once at startup and not mutated
// after it is added to a Registry.
type Table struct {
	ID           TableID
	Name         string
	Columns      []*Column
	PrimaryKey   []string // table-level composite key, column names
	ForeignKeys  []*ForeignKey
	WithoutRowID bool

	goType reflect.Type
}

// Definition is anything that can be part of a table declaration.
type Definition interface {
	apply(*Table)
}

type columnDef struct{ c *Column }

func (d columnDef) apply(t *Table) { t.Columns = append(t.Columns, d.c) }

type primaryKeyDef []string

func (d primaryKeyDef) apply(t *Table) { t.PrimaryKey = append(t.PrimaryKey, d...) }

// CompositeKey declares a table-level PRIMARY KEY over cols.
func CompositeKey(cols ...string) Definition {
	return primaryKeyDef(cols)
}

type withoutRowIDDef struct{}

func (withoutRowIDDef) apply(t *Table) { t.WithoutRowID = true }

// WithoutRowID appends WITHOUT ROWID to the table.
func WithoutRowID() Definition {
	return withoutRowIDDef{}
}

// Make declares a table mapped to struct T.
func Make[T any](id TableID, name string, defs ...Definition) *Table {
	t := NewTable(id, name, defs...)
	t.goType = reflect.TypeFor[T]()
	return t
}

// NewTable declares a table with no Go mapping.
func NewTable(id TableID, name string, defs ...Definition) *Table {
	t := &Table{ID: id, Name: name}
	for _, d := range defs {
		d.apply(t)
	}
	return t
}

// GoType returns the mapped struct type, or nil for dynamic tables.
func (t *Table) GoType() reflect.Type {
	return t.goType
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKeyColumns returns the key columns: column-level keys first, then
// the table-level composite key.
func (t *Table) PrimaryKeyColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c)
		}
	}
	for _, name := range t.PrimaryKey {
		if c, ok := t.Column(name); ok && !c.PrimaryKey {
			out = append(out, c)
		}
	}
	return out
}

// IsPrimaryKey reports whether the named column is part of the key.
func (t *Table) IsPrimaryKey(name string) bool {
	for _, c := range t.PrimaryKeyColumns() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// RowIDAlias returns the single INTEGER PRIMARY KEY column that aliases the
// rowid, if there is one.
func (t *Table) RowIDAlias() (*Column, bool) {
	if t.WithoutRowID {
		return nil, false
	}
	pk := t.PrimaryKeyColumns()
	if len(pk) == 1 && strings.EqualFold(pk[0].Type, TypeInteger) {
		return pk[0], true
	}
	return nil, false
}

func (t *Table) validate() error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("table %q: id and name are required", t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q: no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %q: column with empty name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = true
		if c.Type == "" {
			return fmt.Errorf("table %q: column %q has no SQL type, use WithType", t.Name, c.Name)
		}
		if c.AutoIncrement && !strings.EqualFold(c.Type, TypeInteger) {
			return fmt.Errorf("table %q: AUTOINCREMENT column %q must be INTEGER", t.Name, c.Name)
		}
	}
	keyed := 0
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keyed++
		}
	}
	if keyed > 1 || (keyed == 1 && len(t.PrimaryKey) > 0) {
		return fmt.Errorf("table %q: declare a multi-column primary key with CompositeKey", t.Name)
	}
	for _, name := range t.PrimaryKey {
		if !seen[name] {
			return fmt.Errorf("table %q: primary key references unknown column %q", t.Name, name)
		}
	}
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
			return fmt.Errorf("table %q: foreign key column count mismatch", t.Name)
		}
		for _, name := range fk.Columns {
			if !seen[name] {
				return fmt.Errorf("table %q: foreign key references unknown column %q", t.Name, name)
			}
		}
	}
	return nil
}
