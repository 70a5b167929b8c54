// Package dsl loads declared tables from a schema file. Two formats are
// accepted: the native grammar
//
//	table users {
//	  id    INTEGER @primary @autoincrement
//	  name  TEXT    @default("anon") @collate(NOCASE)
//	  email TEXT?   @unique
//	}
//
//	table posts {
//	  id      INTEGER @primary
//	  user_id INTEGER
//	  @@foreign(user_id) references users(id) on delete "CASCADE"
//	}
//
//	unique index idx_users_email on users(email)
//
// and an equivalent YAML document. Columns are NOT NULL unless their type
// is followed by '?'. Table ids equal table names.
package dsl

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/sqlorm/schema"
)

// Schema is a loaded set of declarations.
type Schema struct {
	Tables  []*schema.Table
	Indexes []*schema.Index
}

// Registry validates the declarations and returns them as a registry.
func (s *Schema) Registry() (*schema.Registry, error) {
	reg, err := schema.NewRegistry(s.Tables...)
	if err != nil {
		return nil, err
	}
	for _, idx := range s.Indexes {
		if err := reg.AddIndex(idx); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Load reads path from fs. Files ending in .yaml or .yml are parsed as
// YAML, everything else with the native grammar.
func Load(fs afero.Fs, path string) (*Schema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Parse(path, strings.NewReader(string(data)))
}

// Parse parses the native grammar from r.
func Parse(filename string, r io.Reader) (*Schema, error) {
	raw, err := parseRaw(filename, r)
	if err != nil {
		return nil, err
	}
	out := &Schema{}
	for _, item := range raw.Items {
		switch {
		case item.Table != nil:
			t, err := convertTable(item.Table)
			if err != nil {
				return nil, err
			}
			out.Tables = append(out.Tables, t)
		case item.Index != nil:
			idx := item.Index
			out.Indexes = append(out.Indexes, &schema.Index{
				Name:    idx.Name,
				Table:   schema.TableID(idx.Table),
				Columns: idx.Columns,
				Unique:  idx.Unique,
			})
		}
	}
	return out, nil
}

// ParseString parses the native grammar from src.
func ParseString(filename, src string) (*Schema, error) {
	return Parse(filename, strings.NewReader(src))
}

func convertTable(rt *rawTable) (*schema.Table, error) {
	var defs []schema.Definition
	for _, rc := range rt.Columns {
		def, err := convertColumn(rc)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	for _, a := range rt.Attrs {
		def, err := convertBlockAttr(a)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return schema.NewTable(schema.TableID(rt.Name), rt.Name, defs...), nil
}

func convertColumn(rc *rawColumn) (schema.Definition, error) {
	typ := rc.Type
	if len(rc.TypeArgs) > 0 {
		typ += "(" + strings.Join(rc.TypeArgs, ", ") + ")"
	}
	opts := []schema.ColumnOption{schema.NotNull()}
	if rc.Nullable {
		opts[0] = schema.Nullable()
	}
	for _, a := range rc.Attrs {
		opt, err := convertColumnAttr(a)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return schema.Dynamic(rc.Name, typ, opts...), nil
}

func convertColumnAttr(a *rawColumnAttr) (schema.ColumnOption, error) {
	want := 0
	var opt schema.ColumnOption
	switch a.Name {
	case "primary":
		opt = schema.PrimaryKey()
	case "autoincrement":
		opt = schema.AutoIncrement()
	case "unique":
		opt = schema.Unique()
	case "default":
		want = 1
		if len(a.Args) == 1 {
			opt = defaultOption(a.Args[0])
		}
	case "collate":
		want = 1
		if len(a.Args) == 1 {
			if a.Args[0].Ident == nil {
				return nil, fmt.Errorf("%s: @collate expects a collation name", a.Pos)
			}
			opt = schema.Collate(*a.Args[0].Ident)
		}
	default:
		return nil, fmt.Errorf("%s: unknown column attribute @%s", a.Pos, a.Name)
	}
	if len(a.Args) != want {
		return nil, fmt.Errorf("%s: @%s takes %d argument(s), got %d", a.Pos, a.Name, want, len(a.Args))
	}
	return opt, nil
}

// defaultOption maps a literal to a DEFAULT. Strings are quoted, numbers
// and other identifiers such as CURRENT_TIMESTAMP are used verbatim.
func defaultOption(v *rawValue) schema.ColumnOption {
	switch {
	case v.String != nil:
		return schema.Default(*v.String)
	case v.Number != nil:
		return schema.DefaultExpr(*v.Number)
	}
	switch strings.ToLower(*v.Ident) {
	case "true":
		return schema.Default(true)
	case "false":
		return schema.Default(false)
	case "null":
		return schema.Default(nil)
	}
	return schema.DefaultExpr(*v.Ident)
}

func convertBlockAttr(a *rawBlockAttr) (schema.Definition, error) {
	if a.RefTable != "" && a.Name != "foreign" {
		return nil, fmt.Errorf("%s: only @@foreign takes references", a.Pos)
	}
	switch a.Name {
	case "id":
		if len(a.Args) == 0 {
			return nil, fmt.Errorf("%s: @@id needs at least one column", a.Pos)
		}
		return schema.CompositeKey(a.Args...), nil
	case "without_rowid":
		if len(a.Args) > 0 {
			return nil, fmt.Errorf("%s: @@without_rowid takes no arguments", a.Pos)
		}
		return schema.WithoutRowID(), nil
	case "foreign":
		if len(a.Args) == 0 || a.RefTable == "" {
			return nil, fmt.Errorf("%s: @@foreign needs columns and a references clause", a.Pos)
		}
		fk := schema.Foreign(a.Args...).References(schema.TableID(a.RefTable), a.RefCols...)
		for _, act := range a.Actions {
			action := strings.ToUpper(act.Action)
			if !validAction(action) {
				return nil, fmt.Errorf("%s: unknown referential action %q", a.Pos, act.Action)
			}
			if act.Event == "delete" {
				fk.OnDeleteDo(action)
			} else {
				fk.OnUpdateDo(action)
			}
		}
		return fk, nil
	}
	return nil, fmt.Errorf("%s: unknown block attribute @@%s", a.Pos, a.Name)
}

func validAction(action string) bool {
	switch action {
	case schema.ActionNoAction, schema.ActionRestrict, schema.ActionSetNull,
		schema.ActionSetDefault, schema.ActionCascade:
		return true
	}
	return false
}
