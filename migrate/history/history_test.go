package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/migrate/introspect"
	qexec "github.com/satishbabariya/sqlorm/query/executor"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	backend := qexec.NewSQLBackend(db)
	t.Cleanup(func() {
		backend.Close()
		db.Close()
	})
	m := NewManager(backend)
	require.NoError(t, m.InitTable(context.Background()))
	return m
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	first := &Record{
		Table:      "users",
		Outcome:    "new_table_created",
		Statements: []string{`CREATE TABLE 'users' ("id" INTEGER)`},
		Checksum:   CalculateChecksum(`CREATE TABLE 'users' ("id" INTEGER)`),
		AppliedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, m.Record(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &Record{
		Table:      "users",
		Outcome:    "new_columns_added",
		Statements: []string{`ALTER TABLE 'users' ADD COLUMN "name" TEXT`},
		AppliedAt:  first.AppliedAt.Add(time.Minute),
		Snapshot:   `[{"Name":"id"}]`,
	}
	require.NoError(t, m.Record(ctx, second))

	all, err := m.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, first.Statements, all[0].Statements)
	assert.True(t, first.AppliedAt.Equal(all[0].AppliedAt))
	assert.Empty(t, all[0].Snapshot)

	latest, ok, err := m.Latest(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new_columns_added", latest.Outcome)
	assert.Equal(t, second.Snapshot, latest.Snapshot)

	_, ok, err = m.Latest(ctx, "posts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitTableIdempotent(t *testing.T) {
	m := newManager(t)
	assert.NoError(t, m.InitTable(context.Background()))
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, CalculateChecksum("a"), CalculateChecksum("a"))
	assert.NotEqual(t, CalculateChecksum("a"), CalculateChecksum("b"))
	assert.Len(t, CalculateChecksum(""), 64)
}

func TestSnapshot(t *testing.T) {
	dflt := "'x'"
	cols := []introspect.ColumnMeta{
		{Name: "id", Type: "INTEGER", NotNull: true, PrimaryKey: 1},
		{Name: "name", Type: "TEXT", Default: &dflt},
	}
	s, err := SerializeSnapshot(cols)
	require.NoError(t, err)
	back, err := DeserializeSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, cols, back)

	empty, err := SerializeSnapshot(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DeserializeSnapshot("{")
	assert.Error(t, err)
}
