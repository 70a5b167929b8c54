package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/satishbabariya/sqlorm/query/builder"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

func TestResolveDeduplicates(t *testing.T) {
	c := newCompiler(t)

	tree := And(Eq(C(users, "id"), 1), Eq(C(users, "name"), "x"))
	set, err := c.ResolveTableNames(tree)
	require.NoError(t, err)
	assert.Equal(t, []TableRef{{Name: "users"}}, set.Sorted())

	again, err := c.ResolveTableNames(tree)
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestResolveAliasesAreDistinct(t *testing.T) {
	c := newCompiler(t)

	set, err := c.ResolveTableNames(&ast.Columns{Items: []ast.Node{
		C(users, "id"), AliasC("u", users, "id"), AliasC("u", users, "name"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []TableRef{{Name: "users"}, {Name: "users", Alias: "u"}}, set.Sorted())
	assert.True(t, set.Contains(TableRef{Name: "users", Alias: "u"}))
}

func TestResolveRecursesIntoEveryContainer(t *testing.T) {
	c := newCompiler(t)

	cases := []struct {
		name string
		node ast.Node
		want []TableRef
	}{
		{"literal", Val(1), []TableRef{}},
		{"bare rowid", RowID(), []TableRef{}},
		{"table rowid", RowIDOf(posts), []TableRef{{Name: "posts"}}},
		{"function args", Func("COALESCE", C(users, "age"), C(posts, "id")), []TableRef{{Name: "posts"}, {Name: "users"}}},
		{"cast", Cast(C(posts, "title"), "BLOB"), []TableRef{{Name: "posts"}}},
		{"case branches",
			Case(C(users, "age")).When(1, C(posts, "title")).Else(C(users, "name")).End(),
			[]TableRef{{Name: "posts"}, {Name: "users"}}},
		{"as", As(C(posts, "title"), "t"), []TableRef{{Name: "posts"}}},
		{"in values", In(Val(1), C(users, "id"), C(posts, "id")), []TableRef{{Name: "posts"}, {Name: "users"}}},
		{"subquery contributes nothing", InQuery(C(users, "id"), Select(C(posts, "user_id")).Build()), []TableRef{{Name: "users"}}},
		{"exists contributes nothing", Exists(Select(C(posts, "id")).Build()), []TableRef{}},
		{"count with table", CountAll(posts), []TableRef{{Name: "posts"}}},
		{"star", Star(users), []TableRef{{Name: "users"}}},
		{"between", Between(C(users, "age"), Val(1), C(posts, "id")), []TableRef{{Name: "posts"}, {Name: "users"}}},
		{"not like", Not(Like(C(users, "name"), "a%")), []TableRef{{Name: "users"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := c.ResolveTableNames(tc.node)
			require.NoError(t, err)
			assert.Equal(t, tc.want, set.Sorted())
		})
	}
}

func TestResolveSelectExcludesJoinedTables(t *testing.T) {
	c := newCompiler(t)

	sel := Select(C(users, "name"), C(posts, "title")).
		LeftJoin(posts, Eq(C(posts, "user_id"), C(users, "id"))).Build()
	set, err := c.ResolveTableNames(sel)
	require.NoError(t, err)
	assert.Equal(t, []TableRef{{Name: "users"}}, set.Sorted())

	aliased := Select(AliasC("p", posts, "title"), C(posts, "id")).
		JoinAs(ast.JoinInner, posts, "p", Eq(AliasC("p", posts, "id"), C(posts, "id"))).Build()
	set, err = c.ResolveTableNames(aliased)
	require.NoError(t, err)
	assert.Equal(t, []TableRef{{Name: "posts"}}, set.Sorted())
}

func TestResolveUnknownTable(t *testing.T) {
	c := newCompiler(t)
	_, err := c.ResolveTableNames(C("ghosts", "id"))
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))
}
