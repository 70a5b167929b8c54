package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SQL type tags.
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeText    = "TEXT"
	TypeBlob    = "BLOB"
	TypeNumeric = "NUMERIC"
)

// Column is a declared column. Columns built with Col carry accessors for
// the mapped Go struct; columns built with Dynamic do not.
type Column struct {
	Name          string
	Type          string
	NotNull       bool
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	Default       *string // SQL text, as PRAGMA table_info reports it
	Collate       string

	owner reflect.Type
	get   func(obj any) any
	dest  func(obj any) (ptr any, commit func())
}

// HasDefault reports whether the column declares a DEFAULT.
func (c *Column) HasDefault() bool {
	return c.Default != nil
}

// Mapped reports whether the column has accessors for a Go struct field.
func (c *Column) Mapped() bool {
	return c.get != nil
}

// Value reads the column's field from obj, which must be a pointer to the
// struct the owning table maps.
func (c *Column) Value(obj any) (any, error) {
	if c.get == nil {
		return nil, fmt.Errorf("column %q has no accessor", c.Name)
	}
	if err := c.checkOwner(obj); err != nil {
		return nil, err
	}
	return c.get(obj), nil
}

// ScanDest returns a pointer suitable for database/sql scanning and a commit
// func that stores the scanned value into obj.
func (c *Column) ScanDest(obj any) (any, func(), error) {
	if c.dest == nil {
		return nil, nil, fmt.Errorf("column %q has no accessor", c.Name)
	}
	if err := c.checkOwner(obj); err != nil {
		return nil, nil, err
	}
	ptr, commit := c.dest(obj)
	return ptr, commit, nil
}

func (c *Column) checkOwner(obj any) error {
	if t := reflect.TypeOf(obj); t != reflect.PointerTo(c.owner) {
		return fmt.Errorf("column %q: expected *%s, got %v", c.Name, c.owner, t)
	}
	return nil
}

// ColumnOption adjusts a column declaration.
type ColumnOption func(*Column)

// PrimaryKey marks the column as the table's single-column primary key.
func PrimaryKey() ColumnOption {
	return func(c *Column) { c.PrimaryKey = true }
}

// AutoIncrement marks an INTEGER PRIMARY KEY column as AUTOINCREMENT.
func AutoIncrement() ColumnOption {
	return func(c *Column) {
		c.PrimaryKey = true
		c.AutoIncrement = true
	}
}

func Unique() ColumnOption {
	return func(c *Column) { c.Unique = true }
}

func NotNull() ColumnOption {
	return func(c *Column) { c.NotNull = true }
}

func Nullable() ColumnOption {
	return func(c *Column) { c.NotNull = false }
}

// Collate sets the column's collation name.
func Collate(name string) ColumnOption {
	return func(c *Column) { c.Collate = name }
}

// WithType overrides the inferred SQL type.
func WithType(typ string) ColumnOption {
	return func(c *Column) { c.Type = strings.ToUpper(typ) }
}

// Default sets a DEFAULT from a Go value. Strings are quoted.
func Default(v any) ColumnOption {
	text := DefaultLiteral(v)
	return func(c *Column) { c.Default = &text }
}

// DefaultExpr sets a DEFAULT from raw SQL text, e.g. CURRENT_TIMESTAMP.
func DefaultExpr(sql string) ColumnOption {
	return func(c *Column) { c.Default = &sql }
}

// DefaultLiteral renders v the way SQLite stores a default value.
func DefaultLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Col declares a column mapped to a field of T through get and set. The SQL
// type is inferred from V; a pointer V is nullable, anything else NOT NULL.
func Col[T any, V any](name string, get func(*T) V, set func(*T, V), opts ...ColumnOption) Definition {
	vt := reflect.TypeFor[V]()
	c := &Column{
		Name:    name,
		Type:    sqlType(vt),
		NotNull: vt.Kind() != reflect.Pointer,
		owner:   reflect.TypeFor[T](),
		get:     func(obj any) any { return get(obj.(*T)) },
		dest: func(obj any) (any, func()) {
			v := new(V)
			return v, func() { set(obj.(*T), *v) }
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return columnDef{c}
}

// Dynamic declares a column with no Go accessor.
func Dynamic(name, typ string, opts ...ColumnOption) Definition {
	c := &Column{Name: name, Type: strings.ToUpper(typ)}
	for _, opt := range opts {
		opt(c)
	}
	return columnDef{c}
}

var bytesType = reflect.TypeFor[[]byte]()

func sqlType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == bytesType {
		return TypeBlob
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeReal
	case reflect.String:
		return TypeText
	}
	return ""
}
