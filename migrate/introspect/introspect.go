// Package introspect reads live table definitions from a database.
package introspect

import (
	"context"
	"database/sql"
)

// ColumnMeta is one live column as the database reports it.
type ColumnMeta struct {
	Name       string
	Type       string
	NotNull    bool
	Default    *string // SQL text of the default, nil when none
	PrimaryKey int     // 1-based position in the primary key, 0 when not a key column
}

// Index is a live index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspector reports live schema.
type Introspector interface {
	// Columns returns the columns of table in declaration order. It reports
	// false when the table does not exist.
	Columns(ctx context.Context, table string) ([]ColumnMeta, bool, error)
	// Tables lists user tables by name.
	Tables(ctx context.Context) ([]string, error)
	// Indexes lists the indexes of table.
	Indexes(ctx context.Context, table string) ([]Index, error)
	// Version returns the engine version string.
	Version(ctx context.Context) (string, error)
}

// NewIntrospector returns the introspector for provider.
func NewIntrospector(db Querier, provider string) (Introspector, error) {
	switch provider {
	case "sqlite", "sqlite3":
		return NewSQLite(db), nil
	case "postgresql", "postgres":
		return &PostgresIntrospector{db: db}, nil
	case "mysql":
		return &MySQLIntrospector{db: db}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// TableExists reports whether table exists.
func TableExists(ctx context.Context, i Introspector, table string) (bool, error) {
	_, ok, err := i.Columns(ctx, table)
	return ok, err
}
