package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/migrate/introspect"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

func strp(s string) *string { return &s }

func usersTable(extra ...schema.Definition) *schema.Table {
	defs := []schema.Definition{
		schema.Dynamic("id", schema.TypeInteger, schema.PrimaryKey(), schema.NotNull()),
		schema.Dynamic("name", schema.TypeText),
	}
	return schema.NewTable("users", "users", append(defs, extra...)...)
}

func liveCols(cols ...introspect.ColumnMeta) []introspect.ColumnMeta { return cols }

var (
	liveID   = introspect.ColumnMeta{Name: "id", Type: "INTEGER", NotNull: true, PrimaryKey: 1}
	liveName = introspect.ColumnMeta{Name: "name", Type: "TEXT"}
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "already_in_sync", AlreadyInSync.String())
	assert.Equal(t, "new_columns_added_and_old_columns_removed", NewColumnsAddedAndOldColumnsRemoved.String())
	assert.Equal(t, "dropped_and_recreated", DroppedAndRecreated.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
	assert.True(t, DroppedAndRecreated.Destructive())
	assert.False(t, OldColumnsRemoved.Destructive())
}

func TestClassification(t *testing.T) {
	cases := []struct {
		name     string
		table    *schema.Table
		live     []introspect.ColumnMeta
		exists   bool
		preserve bool
		want     Outcome
	}{
		{"absent", usersTable(), nil, false, true, NewTableCreated},
		{"in sync", usersTable(), liveCols(liveID, liveName), true, true, AlreadyInSync},
		{"type case differs only", usersTable(), liveCols(liveID, introspect.ColumnMeta{Name: "name", Type: "text"}), true, true, AlreadyInSync},
		{"missing nullable", usersTable(), liveCols(liveID), true, true, NewColumnsAdded},
		{"extra preserved", usersTable(), liveCols(liveID, liveName, introspect.ColumnMeta{Name: "extra", Type: "TEXT"}), true, true, OldColumnsRemoved},
		{"extra dropped", usersTable(), liveCols(liveID, liveName, introspect.ColumnMeta{Name: "extra", Type: "TEXT"}), true, false, DroppedAndRecreated},
		{"both", usersTable(), liveCols(liveID, introspect.ColumnMeta{Name: "extra", Type: "TEXT"}), true, true, NewColumnsAddedAndOldColumnsRemoved},
		{"changed type forces removal", usersTable(), liveCols(liveID, introspect.ColumnMeta{Name: "name", Type: "BLOB"}), true, true, OldColumnsRemoved},
		{"missing not null without default, destructive", usersTable(schema.Dynamic("email", schema.TypeText, schema.NotNull())), liveCols(liveID, liveName), true, false, DroppedAndRecreated},
		{"without rowid key reported not null",
			schema.NewTable("kv", "kv", schema.Dynamic("key", schema.TypeText, schema.PrimaryKey()), schema.WithoutRowID()),
			liveCols(introspect.ColumnMeta{Name: "key", Type: "TEXT", NotNull: true, PrimaryKey: 1}), true, false, AlreadyInSync},
		{"rowid key nullability still compared",
			schema.NewTable("kv", "kv", schema.Dynamic("key", schema.TypeText, schema.PrimaryKey())),
			liveCols(introspect.ColumnMeta{Name: "key", Type: "TEXT", NotNull: true, PrimaryKey: 1}), true, false, DroppedAndRecreated},
		{"missing not null with default", usersTable(schema.Dynamic("email", schema.TypeText, schema.NotNull(), schema.Default(""))), liveCols(liveID, liveName), true, true, NewColumnsAdded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compare(tc.table, tc.live, tc.exists).Outcome(tc.preserve)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnsafeMissingColumn(t *testing.T) {
	d := Compare(usersTable(schema.Dynamic("email", schema.TypeText, schema.NotNull())), liveCols(liveID, liveName), true)
	_, err := d.Outcome(true)
	assert.ErrorIs(t, err, sqlerr.ErrUnsafeMigration)
	require.Len(t, d.Unaddable(), 1)
	assert.Equal(t, "email", d.Unaddable()[0].Name)

	unique := Compare(usersTable(schema.Dynamic("slug", schema.TypeText, schema.Unique())), liveCols(liveID, liveName), true)
	_, err = unique.Outcome(true)
	assert.ErrorIs(t, err, sqlerr.ErrUnsafeMigration)
}

func TestCompareSets(t *testing.T) {
	live := liveCols(
		liveID,
		introspect.ColumnMeta{Name: "name", Type: "TEXT", NotNull: true},
		introspect.ColumnMeta{Name: "legacy", Type: "TEXT"},
	)
	d := Compare(usersTable(schema.Dynamic("age", schema.TypeInteger)), live, true)

	assert.Equal(t, []string{"name", "legacy"}, d.Extra)
	assert.Equal(t, []string{"name"}, d.Changed)
	require.Len(t, d.Missing, 1)
	assert.Equal(t, "age", d.Missing[0].Name)
	assert.Equal(t, []string{"id", "name"}, d.Kept())
}

func TestColumnChanges(t *testing.T) {
	tbl := usersTable(schema.Dynamic("flag", schema.TypeInteger, schema.DefaultExpr("0")))
	flag, _ := tbl.Column("flag")
	id, _ := tbl.Column("id")

	assert.False(t, columnChanges(tbl, flag, &introspect.ColumnMeta{Name: "flag", Type: "integer", Default: strp("(0)")}).Any())
	assert.True(t, columnChanges(tbl, flag, &introspect.ColumnMeta{Name: "flag", Type: "INTEGER"}).DefaultChanged)
	assert.True(t, columnChanges(tbl, flag, &introspect.ColumnMeta{Name: "flag", Type: "INTEGER", Default: strp("0"), NotNull: true}).NotNullChanged)
	assert.True(t, columnChanges(tbl, id, &introspect.ColumnMeta{Name: "id", Type: "INTEGER", NotNull: true}).PrimaryKeyChanged)
	assert.True(t, typesMatch("VARCHAR( 20 )", "varchar( 20 )"))
	assert.False(t, typesMatch("INTEGER", "INT"))
}
