package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MySQLIntrospector reads schema from information_schema in the connection's
// current database.
type MySQLIntrospector struct {
	db Querier
}

// Columns implements Introspector.
func (i *MySQLIntrospector) Columns(ctx context.Context, table string) ([]ColumnMeta, bool, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			COALESCE(k.ordinal_position, 0)
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage k
			ON k.table_schema = c.table_schema
			AND k.table_name = c.table_name
			AND k.column_name = c.column_name
			AND k.constraint_name = 'PRIMARY'
		WHERE c.table_schema = DATABASE()
		  AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, table)
	if err != nil {
		return nil, false, fmt.Errorf("%w: columns of %s: %w", ErrIntrospectionFailed, table, err)
	}
	defer rows.Close()

	var cols []ColumnMeta
	for rows.Next() {
		var (
			col          ColumnMeta
			isNullable   string
			defaultValue sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &defaultValue, &col.PrimaryKey); err != nil {
			return nil, false, fmt.Errorf("%w: scan column: %w", ErrIntrospectionFailed, err)
		}
		col.Type = strings.ToUpper(col.Type)
		col.NotNull = isNullable == "NO"
		if defaultValue.Valid {
			col.Default = &defaultValue.String
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return cols, len(cols) > 0, nil
}

// Tables implements Introspector.
func (i *MySQLIntrospector) Tables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
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

// Indexes implements Introspector.
func (i *MySQLIntrospector) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT
			index_name,
			GROUP_CONCAT(column_name ORDER BY seq_in_index),
			MAX(non_unique)
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND index_name != 'PRIMARY'
		GROUP BY index_name
		ORDER BY index_name
	`, table)
	if err != nil {
		return nil, fmt.Errorf("%w: indexes of %s: %w", ErrIntrospectionFailed, table, err)
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var (
			idx         Index
			columns     string
			isNonUnique int
		)
		if err := rows.Scan(&idx.Name, &columns, &isNonUnique); err != nil {
			return nil, fmt.Errorf("%w: scan index: %w", ErrIntrospectionFailed, err)
		}
		idx.Columns = strings.Split(columns, ",")
		idx.Unique = isNonUnique == 0
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// Version implements Introspector.
func (i *MySQLIntrospector) Version(ctx context.Context) (string, error) {
	var v string
	if err := i.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v); err != nil {
		return "", fmt.Errorf("%w: version: %w", ErrIntrospectionFailed, err)
	}
	// "8.0.36-0ubuntu0.22.04.1"
	if n := strings.IndexByte(v, '-'); n > 0 {
		v = v[:n]
	}
	return v, nil
}
