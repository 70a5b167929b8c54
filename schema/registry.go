package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// Index is a declared CREATE INDEX.
type Index struct {
	Name    string
	Table   TableID
	Columns []string
	Unique  bool
}

// Registry maps table ids to declared tables. It is safe for concurrent
// reads once populated.
type Registry struct {
	mu      sync.RWMutex
	order   []TableID
	tables  map[TableID]*Table
	byName  map[string]*Table
	byType  map[reflect.Type]*Table
	indexes []*Index
}

// NewRegistry returns a registry holding tables, in order.
func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{
		tables: make(map[TableID]*Table),
		byName: make(map[string]*Table),
		byType: make(map[reflect.Type]*Table),
	}
	for _, t := range tables {
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error, for package-level
// declarations.
func MustRegistry(tables ...*Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Add validates and registers t.
func (r *Registry) Add(t *Table) error {
	if err := t.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tables[t.ID]; dup {
		return fmt.Errorf("table id %q already registered", t.ID)
	}
	if _, dup := r.byName[t.Name]; dup {
		return fmt.Errorf("table name %q already registered", t.Name)
	}
	if t.goType != nil {
		if other, dup := r.byType[t.goType]; dup {
			return fmt.Errorf("type %s already mapped by table %q", t.goType, other.Name)
		}
		r.byType[t.goType] = t
	}
	r.tables[t.ID] = t
	r.byName[t.Name] = t
	r.order = append(r.order, t.ID)
	return nil
}

// AddIndex registers an index on an already registered table.
func (r *Registry) AddIndex(idx *Index) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[idx.Table]
	if !ok {
		return fmt.Errorf("index %q: unknown table %q", idx.Name, idx.Table)
	}
	if idx.Name == "" || len(idx.Columns) == 0 {
		return fmt.Errorf("index on %q: name and columns are required", t.Name)
	}
	for _, col := range idx.Columns {
		if _, ok := t.Column(col); !ok {
			return fmt.Errorf("index %q: unknown column %q on %q", idx.Name, col, t.Name)
		}
	}
	r.indexes = append(r.indexes, idx)
	return nil
}

// Table returns the table registered under id.
func (r *Registry) Table(id TableID) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// TableByName returns the table with the given SQL name.
func (r *Registry) TableByName(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// TableFor returns the table mapping Go type t.
func (r *Registry) TableFor(t reflect.Type) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tbl, ok := r.byType[t]
	return tbl, ok
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Table, len(r.order))
	for i, id := range r.order {
		out[i] = r.tables[id]
	}
	return out
}

// Indexes returns the registered indexes in registration order.
func (r *Registry) Indexes() []*Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Index(nil), r.indexes...)
}
