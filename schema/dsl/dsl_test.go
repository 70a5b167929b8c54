package dsl

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/migrate/sqlgen"
	"github.com/satishbabariya/sqlorm/schema"
)

var blogDDL = []string{
	`CREATE TABLE 'users' ("id" INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL, "name" TEXT DEFAULT 'anon' COLLATE NOCASE NOT NULL, "email" TEXT UNIQUE, "score" REAL DEFAULT 0 NOT NULL)`,
	`CREATE TABLE 'posts' ("id" INTEGER PRIMARY KEY NOT NULL, "user_id" INTEGER NOT NULL, "title" VARCHAR(120), FOREIGN KEY ("user_id") REFERENCES 'users' ("id") ON DELETE CASCADE)`,
	`CREATE TABLE 'memberships' ("user_id" INTEGER NOT NULL, "group_id" INTEGER NOT NULL, PRIMARY KEY ("user_id", "group_id")) WITHOUT ROWID`,
	`CREATE UNIQUE INDEX IF NOT EXISTS 'idx_users_email' ON 'users' ("email")`,
}

func ddl(t *testing.T, s *Schema) []string {
	t.Helper()
	reg, err := s.Registry()
	require.NoError(t, err)
	gen := sqlgen.New(reg)
	var out []string
	for _, tbl := range reg.Tables() {
		stmt, err := gen.CreateTable(tbl, tbl.Name)
		require.NoError(t, err)
		out = append(out, stmt)
	}
	for _, idx := range reg.Indexes() {
		stmt, err := gen.CreateIndex(idx)
		require.NoError(t, err)
		out = append(out, stmt)
	}
	return out
}

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range []string{"blog.sqlorm", "blog.yaml"} {
		data, err := os.ReadFile("testdata/" + name)
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fs, "/schemas/"+name, data, 0o644))
	}
	return fs
}

func TestLoadNative(t *testing.T) {
	s, err := Load(testFs(t), "/schemas/blog.sqlorm")
	require.NoError(t, err)
	require.Len(t, s.Tables, 3)
	assert.Equal(t, blogDDL, ddl(t, s))

	users := s.Tables[0]
	assert.Equal(t, schema.TableID("users"), users.ID)
	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.Mapped())
}

func TestLoadYAMLMatchesNative(t *testing.T) {
	fs := testFs(t)
	native, err := Load(fs, "/schemas/blog.sqlorm")
	require.NoError(t, err)
	doc, err := Load(fs, "/schemas/blog.yaml")
	require.NoError(t, err)
	assert.Equal(t, ddl(t, native), ddl(t, doc))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.sqlorm")
	assert.ErrorContains(t, err, "failed to read schema")
}

func TestDefaults(t *testing.T) {
	s, err := ParseString("d.sqlorm", `table d {
		a INTEGER @default(true)
		b TEXT?   @default(null)
		c TEXT    @default(CURRENT_TIMESTAMP)
		e REAL    @default(-1.5)
		f TEXT    @default("it's")
	}`)
	require.NoError(t, err)
	want := map[string]string{"a": "1", "b": "NULL", "c": "CURRENT_TIMESTAMP", "e": "-1.5", "f": "'it''s'"}
	for name, dflt := range want {
		c, ok := s.Tables[0].Column(name)
		require.True(t, ok, name)
		require.NotNil(t, c.Default, name)
		assert.Equal(t, dflt, *c.Default, name)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown attribute", "table t {\n  id INTEGER @bogus\n}", "bad.sqlorm:2:14: unknown column attribute @bogus"},
		{"default arity", "table t { id INTEGER @default }", "@default takes 1 argument(s), got 0"},
		{"collate needs ident", `table t { id TEXT @collate("x") }`, "@collate expects a collation name"},
		{"foreign without references", "table t { id INTEGER @@foreign(id) }", "@@foreign needs columns and a references clause"},
		{"references on id", "table t { id INTEGER @@id(id) references u(id) }", "only @@foreign takes references"},
		{"bad action", `table t { id INTEGER @@foreign(id) references u(id) on delete "explode" }`, `unknown referential action "explode"`},
		{"unknown block attribute", "table t { id INTEGER @@bogus }", "unknown block attribute @@bogus"},
		{"missing type", "table t { id }", "bad.sqlorm:1:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("bad.sqlorm", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistryValidation(t *testing.T) {
	s, err := ParseString("v.sqlorm", "table t { id INTEGER }\nindex idx_t on t(missing)")
	require.NoError(t, err)
	_, err = s.Registry()
	assert.ErrorContains(t, err, `unknown column "missing"`)

	s, err = ParseString("v.sqlorm", "table t { a INTEGER @primary\n b INTEGER @primary }")
	require.NoError(t, err)
	_, err = s.Registry()
	assert.ErrorContains(t, err, "CompositeKey")
}

func TestParseYAMLErrors(t *testing.T) {
	_, err := ParseYAML([]byte("tables: [{columns: [{name: a, type: TEXT}]}]"))
	assert.ErrorContains(t, err, "table without a name")

	_, err = ParseYAML([]byte("tables: [{name: t, columns: [{name: a}]}]"))
	assert.ErrorContains(t, err, "need a name and a type")

	_, err = ParseYAML([]byte("tables: [{name: t, columns: [{name: a, type: TEXT, default: x, default_expr: y}]}]"))
	assert.ErrorContains(t, err, "exclusive")

	_, err = ParseYAML([]byte("tables: ["))
	assert.ErrorContains(t, err, "failed to parse yaml schema")
}
