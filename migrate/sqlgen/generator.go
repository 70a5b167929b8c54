// Package sqlgen renders SQLite DDL for declared tables.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/sqlorm/schema"
)

// Generator renders DDL. Foreign key targets are resolved through the
// registry.
type Generator struct {
	reg *schema.Registry
}

// New returns a generator over reg.
func New(reg *schema.Registry) *Generator {
	return &Generator{reg: reg}
}

// QuoteTable quotes a table or index name the way statements name tables.
func QuoteTable(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// QuoteColumn quotes a column name.
func QuoteColumn(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteColumn(n)
	}
	return strings.Join(quoted, ", ")
}

// SerializeColumn renders a column definition as used by both CREATE TABLE
// and ALTER TABLE ADD COLUMN.
func SerializeColumn(c *schema.Column) string {
	var b strings.Builder
	b.WriteString(QuoteColumn(c.Name))
	if c.Type != "" {
		b.WriteString(" ")
		b.WriteString(c.Type)
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
		if c.AutoIncrement {
			b.WriteString(" AUTOINCREMENT")
		}
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(*c.Default)
	}
	if c.Collate != "" {
		b.WriteString(" COLLATE ")
		b.WriteString(c.Collate)
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// CreateTable renders CREATE TABLE for t under name, leaving out the omit
// columns and any foreign key that involves them.
func (g *Generator) CreateTable(t *schema.Table, name string, omit ...string) (string, error) {
	skip := make(map[string]bool, len(omit))
	for _, o := range omit {
		skip[o] = true
	}

	var defs []string
	for _, c := range t.Columns {
		if !skip[c.Name] {
			defs = append(defs, SerializeColumn(c))
		}
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("table %q: no columns to create", t.Name)
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+quoteColumns(t.PrimaryKey)+")")
	}
fks:
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if skip[c] {
				continue fks
			}
		}
		ref, err := g.foreignKey(fk)
		if err != nil {
			return "", fmt.Errorf("table %q: %w", t.Name, err)
		}
		defs = append(defs, "FOREIGN KEY ("+quoteColumns(fk.Columns)+") "+ref)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteTable(name))
	b.WriteString(" (")
	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(")")
	if t.WithoutRowID {
		b.WriteString(" WITHOUT ROWID")
	}
	return b.String(), nil
}

// foreignKey renders the REFERENCES part of fk.
func (g *Generator) foreignKey(fk *schema.ForeignKey) (string, error) {
	target, ok := g.reg.Table(fk.RefTable)
	if !ok {
		return "", fmt.Errorf("foreign key references unknown table %q", fk.RefTable)
	}
	s := "REFERENCES " + QuoteTable(target.Name) + " (" + quoteColumns(fk.RefColumns) + ")"
	if fk.OnUpdate != "" {
		s += " ON UPDATE " + fk.OnUpdate
	}
	if fk.OnDelete != "" {
		s += " ON DELETE " + fk.OnDelete
	}
	return s, nil
}

// AddColumn renders ALTER TABLE ADD COLUMN for c. A single-column foreign
// key on c is rendered inline.
func (g *Generator) AddColumn(t *schema.Table, c *schema.Column) (string, error) {
	def := SerializeColumn(c)
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 1 && fk.Columns[0] == c.Name {
			ref, err := g.foreignKey(fk)
			if err != nil {
				return "", fmt.Errorf("table %q: %w", t.Name, err)
			}
			def += " " + ref
		}
	}
	return "ALTER TABLE " + QuoteTable(t.Name) + " ADD COLUMN " + def, nil
}

// RenameTable renders ALTER TABLE RENAME TO.
func RenameTable(from, to string) string {
	return "ALTER TABLE " + QuoteTable(from) + " RENAME TO " + QuoteTable(to)
}

// DropTable renders DROP TABLE.
func DropTable(name string) string {
	return "DROP TABLE " + QuoteTable(name)
}

// CopyData renders INSERT INTO to SELECT from, restricted to cols.
func CopyData(from, to string, cols []string) string {
	list := quoteColumns(cols)
	return "INSERT INTO " + QuoteTable(to) + " (" + list + ") SELECT " + list + " FROM " + QuoteTable(from)
}

// CreateIndex renders CREATE [UNIQUE] INDEX IF NOT EXISTS for idx.
func (g *Generator) CreateIndex(idx *schema.Index) (string, error) {
	t, ok := g.reg.Table(idx.Table)
	if !ok {
		return "", fmt.Errorf("index %q: unknown table %q", idx.Name, idx.Table)
	}
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX IF NOT EXISTS ")
	b.WriteString(QuoteTable(idx.Name))
	b.WriteString(" ON ")
	b.WriteString(QuoteTable(t.Name))
	b.WriteString(" (")
	b.WriteString(quoteColumns(idx.Columns))
	b.WriteString(")")
	return b.String(), nil
}
