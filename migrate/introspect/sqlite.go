package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteIntrospector reads schema through PRAGMA statements.
type SQLiteIntrospector struct {
	db Querier
}

// NewSQLite returns an introspector over db.
func NewSQLite(db Querier) *SQLiteIntrospector {
	return &SQLiteIntrospector{db: db}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Columns implements Introspector using PRAGMA table_info. A table with no
// rows in table_info does not exist.
func (i *SQLiteIntrospector) Columns(ctx context.Context, table string) ([]ColumnMeta, bool, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, false, fmt.Errorf("%w: table_info(%s): %w", ErrIntrospectionFailed, table, err)
	}
	defer rows.Close()

	var cols []ColumnMeta
	for rows.Next() {
		var (
			cid     int
			col     ColumnMeta
			notNull int
			dflt    sql.NullString
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &col.PrimaryKey); err != nil {
			return nil, false, fmt.Errorf("%w: scan column: %w", ErrIntrospectionFailed, err)
		}
		col.NotNull = notNull != 0
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return cols, len(cols) > 0, nil
}

// Tables implements Introspector.
func (i *SQLiteIntrospector) Tables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %w", ErrIntrospectionFailed, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Indexes implements Introspector. Automatic indexes backing UNIQUE and
// PRIMARY KEY constraints are skipped.
func (i *SQLiteIntrospector) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("%w: index_list(%s): %w", ErrIntrospectionFailed, table, err)
	}

	var indexes []Index
	for rows.Next() {
		var (
			seq, unique, partial int
			idx                  Index
			origin               string
		)
		if err := rows.Scan(&seq, &idx.Name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan index: %w", ErrIntrospectionFailed, err)
		}
		if origin != "c" {
			continue
		}
		idx.Unique = unique == 1
		indexes = append(indexes, idx)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// index_list must be closed before index_info runs on a one-connection pool.
	for n := range indexes {
		cols, err := i.indexColumns(ctx, indexes[n].Name)
		if err != nil {
			return nil, err
		}
		indexes[n].Columns = cols
	}
	return indexes, nil
}

func (i *SQLiteIntrospector) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, fmt.Errorf("%w: index_info(%s): %w", ErrIntrospectionFailed, index, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

// Version implements Introspector.
func (i *SQLiteIntrospector) Version(ctx context.Context) (string, error) {
	var v string
	if err := i.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v); err != nil {
		return "", fmt.Errorf("%w: sqlite_version: %w", ErrIntrospectionFailed, err)
	}
	return v, nil
}
