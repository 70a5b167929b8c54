package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresIntrospector reads schema from information_schema in the current
// search_path schema.
type PostgresIntrospector struct {
	db Querier
}

// Columns implements Introspector.
func (i *PostgresIntrospector) Columns(ctx context.Context, table string) ([]ColumnMeta, bool, error) {
	pk, err := i.primaryKey(ctx, table)
	if err != nil {
		return nil, false, err
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT
			column_name,
			data_type,
			udt_name,
			is_nullable,
			column_default,
			character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, false, fmt.Errorf("%w: columns of %s: %w", ErrIntrospectionFailed, table, err)
	}
	defer rows.Close()

	var cols []ColumnMeta
	for rows.Next() {
		var (
			col               ColumnMeta
			dataType, udtName string
			isNullable        string
			defaultValue      sql.NullString
			maxLength         sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &dataType, &udtName, &isNullable, &defaultValue, &maxLength); err != nil {
			return nil, false, fmt.Errorf("%w: scan column: %w", ErrIntrospectionFailed, err)
		}
		col.Type = mapPostgresType(dataType, udtName, maxLength.Int64)
		col.NotNull = isNullable == "NO"
		if defaultValue.Valid {
			col.Default = &defaultValue.String
		}
		col.PrimaryKey = pk[col.Name]
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return cols, len(cols) > 0, nil
}

// primaryKey maps key column names to their 1-based key position.
func (i *PostgresIntrospector) primaryKey(ctx context.Context, table string) (map[string]int, error) {
	var cols []string
	err := i.db.QueryRowContext(ctx, `
		SELECT array_agg(kcu.column_name::text ORDER BY kcu.ordinal_position)
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = current_schema()
		  AND tc.table_name = $1
		GROUP BY tc.constraint_name
	`, table).Scan(pq.Array(&cols))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: primary key of %s: %w", ErrIntrospectionFailed, table, err)
	}
	pos := make(map[string]int, len(cols))
	for n, c := range cols {
		pos[c] = n + 1
	}
	return pos, nil
}

// Tables implements Introspector.
func (i *PostgresIntrospector) Tables(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
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

// Indexes implements Introspector. Indexes backing the primary key are
// skipped.
func (i *PostgresIntrospector) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT
			ic.relname,
			array_agg(a.attname::text ORDER BY array_position(ix.indkey, a.attnum)),
			ix.indisunique
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = current_schema()
		  AND t.relname = $1
		  AND NOT ix.indisprimary
		GROUP BY ic.relname, ix.indisunique
		ORDER BY ic.relname
	`, table)
	if err != nil {
		return nil, fmt.Errorf("%w: indexes of %s: %w", ErrIntrospectionFailed, table, err)
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.Name, pq.Array(&idx.Columns), &idx.Unique); err != nil {
			return nil, fmt.Errorf("%w: scan index: %w", ErrIntrospectionFailed, err)
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// Version implements Introspector.
func (i *PostgresIntrospector) Version(ctx context.Context) (string, error) {
	var v string
	if err := i.db.QueryRowContext(ctx, "SHOW server_version").Scan(&v); err != nil {
		return "", fmt.Errorf("%w: server_version: %w", ErrIntrospectionFailed, err)
	}
	// "16.2 (Debian 16.2-1.pgdg120+2)"
	if n := strings.IndexByte(v, ' '); n > 0 {
		v = v[:n]
	}
	return v, nil
}

func mapPostgresType(dataType, udtName string, maxLength int64) string {
	switch dataType {
	case "integer", "bigint", "smallint":
		return strings.ToUpper(dataType)
	case "boolean":
		return "BOOLEAN"
	case "character varying":
		if maxLength > 0 {
			return fmt.Sprintf("VARCHAR(%d)", maxLength)
		}
		return "VARCHAR"
	case "character":
		if maxLength > 0 {
			return fmt.Sprintf("CHAR(%d)", maxLength)
		}
		return "CHAR"
	case "text":
		return "TEXT"
	case "numeric":
		return "NUMERIC"
	case "real":
		return "REAL"
	case "double precision":
		return "DOUBLE PRECISION"
	case "bytea":
		return "BYTEA"
	case "USER-DEFINED":
		return udtName
	default:
		return strings.ToUpper(dataType)
	}
}
