package dsl

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/sqlorm/schema"
)

type yamlFile struct {
	Tables  []yamlTable `yaml:"tables"`
	Indexes []yamlIndex `yaml:"indexes"`
}

type yamlTable struct {
	Name         string           `yaml:"name"`
	Columns      []yamlColumn     `yaml:"columns"`
	PrimaryKey   []string         `yaml:"primary_key"`
	ForeignKeys  []yamlForeignKey `yaml:"foreign_keys"`
	WithoutRowID bool             `yaml:"without_rowid"`
}

type yamlColumn struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Nullable      bool   `yaml:"nullable"`
	PrimaryKey    bool   `yaml:"primary_key"`
	AutoIncrement bool   `yaml:"autoincrement"`
	Unique        bool   `yaml:"unique"`
	Default       any    `yaml:"default"`
	DefaultExpr   string `yaml:"default_expr"`
	Collate       string `yaml:"collate"`
}

type yamlForeignKey struct {
	Columns    []string `yaml:"columns"`
	References string   `yaml:"references"`
	RefColumns []string `yaml:"ref_columns"`
	OnDelete   string   `yaml:"on_delete"`
	OnUpdate   string   `yaml:"on_update"`
}

type yamlIndex struct {
	Name    string   `yaml:"name"`
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

// ParseYAML parses a YAML schema document.
func ParseYAML(data []byte) (*Schema, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml schema: %w", err)
	}
	out := &Schema{}
	for _, yt := range doc.Tables {
		t, err := yt.table()
		if err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, t)
	}
	for _, yi := range doc.Indexes {
		out.Indexes = append(out.Indexes, &schema.Index{
			Name:    yi.Name,
			Table:   schema.TableID(yi.Table),
			Columns: yi.Columns,
			Unique:  yi.Unique,
		})
	}
	return out, nil
}

func (yt yamlTable) table() (*schema.Table, error) {
	if yt.Name == "" {
		return nil, fmt.Errorf("yaml schema: table without a name")
	}
	var defs []schema.Definition
	for _, yc := range yt.Columns {
		if yc.Name == "" || yc.Type == "" {
			return nil, fmt.Errorf("yaml schema: table %s: columns need a name and a type", yt.Name)
		}
		if yc.Default != nil && yc.DefaultExpr != "" {
			return nil, fmt.Errorf("yaml schema: %s.%s: default and default_expr are exclusive", yt.Name, yc.Name)
		}
		opts := []schema.ColumnOption{schema.NotNull()}
		if yc.Nullable {
			opts[0] = schema.Nullable()
		}
		if yc.PrimaryKey {
			opts = append(opts, schema.PrimaryKey())
		}
		if yc.AutoIncrement {
			opts = append(opts, schema.AutoIncrement())
		}
		if yc.Unique {
			opts = append(opts, schema.Unique())
		}
		if yc.Default != nil {
			opts = append(opts, schema.Default(yc.Default))
		}
		if yc.DefaultExpr != "" {
			opts = append(opts, schema.DefaultExpr(yc.DefaultExpr))
		}
		if yc.Collate != "" {
			opts = append(opts, schema.Collate(yc.Collate))
		}
		defs = append(defs, schema.Dynamic(yc.Name, yc.Type, opts...))
	}
	if len(yt.PrimaryKey) > 0 {
		defs = append(defs, schema.CompositeKey(yt.PrimaryKey...))
	}
	for _, yf := range yt.ForeignKeys {
		if len(yf.Columns) == 0 || yf.References == "" {
			return nil, fmt.Errorf("yaml schema: table %s: foreign keys need columns and references", yt.Name)
		}
		fk := schema.Foreign(yf.Columns...).References(schema.TableID(yf.References), yf.RefColumns...)
		if yf.OnDelete != "" {
			action := strings.ToUpper(yf.OnDelete)
			if !validAction(action) {
				return nil, fmt.Errorf("yaml schema: table %s: unknown referential action %q", yt.Name, yf.OnDelete)
			}
			fk.OnDeleteDo(action)
		}
		if yf.OnUpdate != "" {
			action := strings.ToUpper(yf.OnUpdate)
			if !validAction(action) {
				return nil, fmt.Errorf("yaml schema: table %s: unknown referential action %q", yt.Name, yf.OnUpdate)
			}
			fk.OnUpdateDo(action)
		}
		defs = append(defs, fk)
	}
	if yt.WithoutRowID {
		defs = append(defs, schema.WithoutRowID())
	}
	return schema.NewTable(schema.TableID(yt.Name), yt.Name, defs...), nil
}
