package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID    int64
	Name  string
	Email *string
	Score float64
	Photo []byte
}

func usersTable() *Table {
	return Make[user]("users", "users",
		Col("id", func(u *user) int64 { return u.ID }, func(u *user, v int64) { u.ID = v }, PrimaryKey()),
		Col("name", func(u *user) string { return u.Name }, func(u *user, v string) { u.Name = v }, Default("anon")),
		Col("email", func(u *user) *string { return u.Email }, func(u *user, v *string) { u.Email = v }, Unique()),
		Col("score", func(u *user) float64 { return u.Score }, func(u *user, v float64) { u.Score = v }),
		Col("photo", func(u *user) []byte { return u.Photo }, func(u *user, v []byte) { u.Photo = v }),
	)
}

func TestColInfersTypeAndNullability(t *testing.T) {
	tbl := usersTable()

	cases := []struct {
		name    string
		typ     string
		notNull bool
	}{
		{"id", TypeInteger, true},
		{"name", TypeText, true},
		{"email", TypeText, false},
		{"score", TypeReal, true},
		{"photo", TypeBlob, true},
	}
	for _, tc := range cases {
		c, ok := tbl.Column(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.typ, c.Type, tc.name)
		assert.Equal(t, tc.notNull, c.NotNull, tc.name)
	}

	name, _ := tbl.Column("name")
	require.True(t, name.HasDefault())
	assert.Equal(t, "'anon'", *name.Default)
}

func TestColumnAccessors(t *testing.T) {
	tbl := usersTable()
	u := &user{ID: 3, Name: "ann"}

	id, _ := tbl.Column("id")
	v, err := id.Value(u)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	name, _ := tbl.Column("name")
	ptr, commit, err := name.ScanDest(u)
	require.NoError(t, err)
	*(ptr.(*string)) = "bob"
	commit()
	assert.Equal(t, "bob", u.Name)

	_, err = id.Value(user{})
	assert.Error(t, err)
}

func TestPrimaryKeyAndRowIDAlias(t *testing.T) {
	tbl := usersTable()
	alias, ok := tbl.RowIDAlias()
	require.True(t, ok)
	assert.Equal(t, "id", alias.Name)
	assert.True(t, tbl.IsPrimaryKey("id"))
	assert.False(t, tbl.IsPrimaryKey("name"))

	composite := NewTable("memberships", "memberships",
		Dynamic("user_id", "integer"),
		Dynamic("group_id", "integer"),
		CompositeKey("user_id", "group_id"),
		WithoutRowID(),
	)
	assert.Len(t, composite.PrimaryKeyColumns(), 2)
	_, ok = composite.RowIDAlias()
	assert.False(t, ok)
	assert.Equal(t, TypeInteger, composite.Columns[0].Type)
}

func TestDefaultLiteral(t *testing.T) {
	assert.Equal(t, "NULL", DefaultLiteral(nil))
	assert.Equal(t, "'it''s'", DefaultLiteral("it's"))
	assert.Equal(t, "1", DefaultLiteral(true))
	assert.Equal(t, "0.5", DefaultLiteral(0.5))
	assert.Equal(t, "42", DefaultLiteral(42))
}

func TestRegistry(t *testing.T) {
	users := usersTable()
	posts := NewTable("posts", "posts",
		Dynamic("id", TypeInteger, PrimaryKey()),
		Dynamic("user_id", TypeInteger, NotNull()),
		Foreign("user_id").References("users", "id").OnDeleteDo(ActionCascade),
	)
	reg, err := NewRegistry(users, posts)
	require.NoError(t, err)

	got, ok := reg.Table("posts")
	require.True(t, ok)
	assert.Same(t, posts, got)
	got, ok = reg.TableByName("users")
	require.True(t, ok)
	assert.Same(t, users, got)
	got, ok = reg.TableFor(users.GoType())
	require.True(t, ok)
	assert.Same(t, users, got)

	tables := reg.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "posts", tables[1].Name)

	require.NoError(t, reg.AddIndex(&Index{Name: "idx_posts_user", Table: "posts", Columns: []string{"user_id"}}))
	assert.Error(t, reg.AddIndex(&Index{Name: "bad", Table: "posts", Columns: []string{"nope"}}))
	assert.Error(t, reg.AddIndex(&Index{Name: "bad", Table: "ghost", Columns: []string{"id"}}))
	assert.Len(t, reg.Indexes(), 1)

	assert.Error(t, reg.Add(usersTable()))
}

func TestRegistryRejectsInvalidTables(t *testing.T) {
	type odd struct{ C complex64 }
	_, err := NewRegistry(Make[odd]("odd", "odd",
		Col("c", func(o *odd) complex64 { return o.C }, func(o *odd, v complex64) { o.C = v }),
	))
	assert.ErrorContains(t, err, "no SQL type")

	_, err = NewRegistry(NewTable("t", "t", Dynamic("a", TypeText), Dynamic("a", TypeText)))
	assert.ErrorContains(t, err, "duplicate column")

	_, err = NewRegistry(NewTable("t", "t", Dynamic("a", TypeText), CompositeKey("b")))
	assert.ErrorContains(t, err, "unknown column")

	_, err = NewRegistry(NewTable("t", "t"))
	assert.ErrorContains(t, err, "no columns")

	_, err = NewRegistry(NewTable("t", "t", Dynamic("a", TypeText, PrimaryKey()), Dynamic("b", TypeText, PrimaryKey())))
	assert.ErrorContains(t, err, "CompositeKey")
}
