package diff

import (
	"strings"

	"github.com/satishbabariya/sqlorm/migrate/introspect"
	"github.com/satishbabariya/sqlorm/schema"
)

// ColumnChanges tracks how a live column differs from its declaration.
type ColumnChanges struct {
	TypeChanged       bool
	NotNullChanged    bool
	DefaultChanged    bool
	PrimaryKeyChanged bool
}

// Any reports whether anything changed.
func (c ColumnChanges) Any() bool {
	return c.TypeChanged || c.NotNullChanged || c.DefaultChanged || c.PrimaryKeyChanged
}

func columnChanges(t *schema.Table, declared *schema.Column, live *introspect.ColumnMeta) ColumnChanges {
	return ColumnChanges{
		TypeChanged:       !typesMatch(declared.Type, live.Type),
		NotNullChanged:    effectiveNotNull(t, declared) != live.NotNull,
		DefaultChanged:    !defaultsMatch(declared.Default, live.Default),
		PrimaryKeyChanged: t.IsPrimaryKey(declared.Name) != (live.PrimaryKey > 0),
	}
}

// effectiveNotNull reports whether SQLite will enforce NOT NULL on c. Key
// columns of a WITHOUT ROWID table are always NOT NULL.
func effectiveNotNull(t *schema.Table, c *schema.Column) bool {
	return c.NotNull || (t.WithoutRowID && t.IsPrimaryKey(c.Name))
}

// typesMatch compares declared type names the way SQLite stores them:
// case-insensitively, ignoring surrounding and repeated whitespace.
func typesMatch(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

func defaultsMatch(declared, live *string) bool {
	if declared == nil || live == nil {
		return declared == nil && live == nil
	}
	return normalizeDefault(*declared) == normalizeDefault(*live)
}

// normalizeDefault strips one level of redundant parentheses, which SQLite
// keeps for DEFAULT (expr).
func normalizeDefault(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '(' && v[len(v)-1] == ')' {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}
