package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/satishbabariya/sqlorm/query/builder"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

const (
	users schema.TableID = "users"
	posts schema.TableID = "posts"
)

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg, err := schema.NewRegistry(
		schema.NewTable(users, "users",
			schema.Dynamic("id", schema.TypeInteger, schema.PrimaryKey()),
			schema.Dynamic("name", schema.TypeText, schema.NotNull()),
			schema.Dynamic("age", schema.TypeInteger),
		),
		schema.NewTable(posts, "posts",
			schema.Dynamic("id", schema.TypeInteger, schema.PrimaryKey()),
			schema.Dynamic("user_id", schema.TypeInteger),
			schema.Dynamic("title", schema.TypeText),
		),
		schema.NewTable("quoted", "o'brien",
			schema.Dynamic(`we"ird`, schema.TypeText),
		),
	)
	require.NoError(t, err)
	return New(reg)
}

func compile(t *testing.T, c *Compiler, n ast.Node) *Query {
	t.Helper()
	q, err := c.Compile(n)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Args), "placeholders vs args in %q", q.SQL)
	return q
}

func TestCompileExpressions(t *testing.T) {
	c := newCompiler(t)

	cases := []struct {
		name string
		node ast.Node
		sql  string
		args []any
	}{
		{"column", C(users, "name"), `'users'."name"`, nil},
		{"literal", Val("x"), `?`, []any{"x"}},
		{"arithmetic", Add(C(users, "age"), 1), `('users'."age" + ?)`, []any{1}},
		{"nested arithmetic", Mul(Add(C(users, "age"), 1), 2), `(('users'."age" + ?) * ?)`, []any{1, 2}},
		{"concat", Concat(C(users, "name"), "!"), `('users'."name" || ?)`, []any{"!"}},
		{"comparison", Ge(C(users, "age"), 18), `'users'."age" >= ?`, []any{18}},
		{"and", And(Eq(C(users, "id"), 1), Ne(C(users, "name"), "bob")),
			`('users'."id" = ?) AND ('users'."name" != ?)`, []any{1, "bob"}},
		{"or folds left", Or(Eq(C(users, "id"), 1), Eq(C(users, "id"), 2), Eq(C(users, "id"), 3)),
			`(('users'."id" = ?) OR ('users'."id" = ?)) OR ('users'."id" = ?)`, []any{1, 2, 3}},
		{"not", Not(Eq(C(users, "id"), 1)), `NOT ('users'."id" = ?)`, []any{1}},
		{"is null", IsNull(C(users, "age")), `'users'."age" IS NULL`, nil},
		{"is not null", IsNotNull(C(users, "age")), `'users'."age" IS NOT NULL`, nil},
		{"in", In(C(users, "id"), 1, 2), `'users'."id" IN ( ?, ? )`, []any{1, 2}},
		{"empty in", In(C(users, "id")), `'users'."id" IN ( )`, nil},
		{"not in", NotIn(C(users, "id"), 7), `'users'."id" NOT IN ( ? )`, []any{7}},
		{"like", Like(C(users, "name"), "a%"), `'users'."name" LIKE ?`, []any{"a%"}},
		{"glob", Glob(C(users, "name"), "a*"), `'users'."name" GLOB ?`, []any{"a*"}},
		{"between", Between(C(users, "age"), 10, 20), `'users'."age" BETWEEN ? AND ?`, []any{10, 20}},
		{"function", Func("SUBSTR", C(users, "name"), 1, 2), `SUBSTR('users'."name", ?, ?)`, []any{1, 2}},
		{"group concat", GroupConcat(C(users, "name"), ";"), `GROUP_CONCAT('users'."name", ?)`, []any{";"}},
		{"distinct", Distinct(C(users, "name")), `DISTINCT('users'."name")`, nil},
		{"count all", CountAll(users), `COUNT(*)`, nil},
		{"cast", Cast(C(users, "age"), "TEXT"), `CAST('users'."age" AS TEXT)`, nil},
		{"collate", Collate(C(users, "name"), "NOCASE"), `'users'."name" COLLATE NOCASE`, nil},
		{"as", As(Length(C(users, "name")), "len"), `LENGTH('users'."name") AS "len"`, nil},
		{"alias ref", Alias("len"), `"len"`, nil},
		{"rowid", RowID(), `rowid`, nil},
		{"table rowid", RowIDOf(users), `'users'.rowid`, nil},
		{"oid", OID(), `oid`, nil},
		{"aliased column", AliasC("u", users, "id"), `'u'."id"`, nil},
		{"simple case",
			Case(C(users, "age")).When(1, "one").When(2, "two").Else("many").End(),
			`CASE 'users'."age" WHEN ? THEN ? WHEN ? THEN ? ELSE ? END`, []any{1, "one", 2, "two", "many"}},
		{"searched case without else",
			SearchedCase().When(Gt(C(users, "age"), 60), "old").End(),
			`CASE WHEN 'users'."age" > ? THEN ? END`, []any{60, "old"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := compile(t, c, tc.node)
			assert.Equal(t, tc.sql, q.SQL)
			assert.Equal(t, tc.args, q.Args)
		})
	}
}

func TestSuppressTableQualifierAndEscape(t *testing.T) {
	c := newCompiler(t)

	q, err := c.CompileWith(Eq(C(users, "id"), 1), Options{SuppressTableQualifier: true})
	require.NoError(t, err)
	assert.Equal(t, `"id" = ?`, q.SQL)

	q, err = c.CompileWith(C("quoted", `we"ird`), Options{EscapeLiterals: true})
	require.NoError(t, err)
	assert.Equal(t, `'o''brien'."we""ird"`, q.SQL)

	q, err = c.CompileWith(C("quoted", `we"ird`), Options{})
	require.NoError(t, err)
	assert.Equal(t, `'o'brien'."we"ird"`, q.SQL)
}

func TestCompileSelect(t *testing.T) {
	c := newCompiler(t)

	cases := []struct {
		name string
		node ast.Node
		sql  string
		args []any
	}{
		{
			"columns where",
			Select(C(users, "id"), C(users, "name")).Where(Eq(C(users, "id"), 1)).Build(),
			`SELECT 'users'."id", 'users'."name" FROM 'users' WHERE ('users'."id" = ?)`,
			[]any{1},
		},
		{
			"star",
			Select(Star(users)).Build(),
			`SELECT * FROM 'users'`,
			nil,
		},
		{
			"distinct ordered",
			Select(C(users, "name")).Distinct().OrderBy(C(users, "name"), ast.SortDesc).Build(),
			`SELECT DISTINCT 'users'."name" FROM 'users' ORDER BY 'users'."name" DESC`,
			nil,
		},
		{
			"order by collate multi",
			Select(C(users, "name")).OrderByTerms(
				ast.OrderTerm{Expr: C(users, "name"), Collate: "NOCASE", Direction: ast.SortAsc},
				ast.OrderTerm{Expr: C(users, "id")},
			).Build(),
			`SELECT 'users'."name" FROM 'users' ORDER BY 'users'."name" COLLATE NOCASE ASC, 'users'."id"`,
			nil,
		},
		{
			"group by having",
			Select(C(users, "age"), CountAll(users)).GroupBy(C(users, "age")).Having(Gt(CountAll(users), 1)).Build(),
			`SELECT 'users'."age", COUNT(*) FROM 'users' GROUP BY 'users'."age" HAVING COUNT(*) > ?`,
			[]any{1},
		},
		{
			"two tables cross product",
			Select(C(users, "name"), C(posts, "title")).Build(),
			`SELECT 'users'."name", 'posts'."title" FROM 'posts', 'users'`,
			nil,
		},
		{
			"inner join removes joined table from FROM",
			Select(C(users, "name"), C(posts, "title")).
				InnerJoin(posts, Eq(C(posts, "user_id"), C(users, "id"))).Build(),
			`SELECT 'users'."name", 'posts'."title" FROM 'users' INNER JOIN 'posts' ON 'posts'."user_id" = 'users'."id"`,
			nil,
		},
		{
			"left join with literal",
			Select(C(users, "name")).
				LeftJoin(posts, And(Eq(C(posts, "user_id"), C(users, "id")), Gt(C(posts, "id"), 10))).Build(),
			`SELECT 'users'."name" FROM 'users' LEFT JOIN 'posts' ON ('posts'."user_id" = 'users'."id") AND ('posts'."id" > ?)`,
			[]any{10},
		},
		{
			"left outer join using",
			Select(C(users, "name")).JoinUsing(ast.JoinLeftOuter, posts, C(posts, "id")).Build(),
			`SELECT 'users'."name" FROM 'users' LEFT OUTER JOIN 'posts' USING ("id")`,
			nil,
		},
		{
			"cross and natural join",
			Select(C(users, "name")).CrossJoin(posts).NaturalJoin(posts).Build(),
			`SELECT 'users'."name" FROM 'users' CROSS JOIN 'posts' NATURAL JOIN 'posts'`,
			nil,
		},
		{
			"aliased tables",
			Select(AliasC("u", users, "name"), AliasC("p", posts, "title")).
				JoinAs(ast.JoinInner, posts, "p", Eq(AliasC("p", posts, "user_id"), AliasC("u", users, "id"))).Build(),
			`SELECT 'u'."name", 'p'."title" FROM 'users' 'u' INNER JOIN 'posts' 'p' ON 'p'."user_id" = 'u'."id"`,
			nil,
		},
		{
			"no FROM for bare count",
			Select(CountAll("")).Build(),
			`SELECT COUNT(*)`,
			nil,
		},
		{
			"in subquery",
			Select(C(users, "name")).Where(InQuery(C(users, "id"), Select(C(posts, "user_id")).Build())).Build(),
			`SELECT 'users'."name" FROM 'users' WHERE ('users'."id" IN (SELECT 'posts'."user_id" FROM 'posts'))`,
			nil,
		},
		{
			"exists correlated",
			Select(C(users, "name")).Where(Exists(
				Select(C(posts, "id")).Where(Eq(C(posts, "user_id"), C(users, "id"))).Build(),
			)).Build(),
			`SELECT 'users'."name" FROM 'users' WHERE (EXISTS (SELECT 'posts'."id" FROM 'posts' WHERE ('posts'."user_id" = 'users'."id")))`,
			nil,
		},
		{
			"union",
			SelectCompound(Union(
				Select(C(users, "name")).Where(Gt(C(users, "age"), 1)).Build(),
				Select(C(posts, "title")).Build(),
			)).Build(),
			`SELECT 'users'."name" FROM 'users' WHERE ('users'."age" > ?) UNION SELECT 'posts'."title" FROM 'posts'`,
			[]any{1},
		},
		{
			"except",
			SelectCompound(Except(Select(C(users, "id")).Build(), Select(C(posts, "user_id")).Build())).Build(),
			`SELECT 'users'."id" FROM 'users' EXCEPT SELECT 'posts'."user_id" FROM 'posts'`,
			nil,
		},
		{
			"in compound",
			Select(C(users, "name")).Where(InQuery(C(users, "id"), SelectCompound(Union(
				Select(C(users, "id")).Where(Gt(C(users, "age"), 1)).Build(),
				Select(C(posts, "user_id")).Build(),
			)).Build())).Build(),
			`SELECT 'users'."name" FROM 'users' WHERE ('users'."id" IN (SELECT 'users'."id" FROM 'users' WHERE ('users'."age" > ?) UNION SELECT 'posts'."user_id" FROM 'posts'))`,
			[]any{1},
		},
		{
			"exists compound",
			Select(C(users, "name")).Where(Exists(SelectCompound(Intersect(
				Select(C(users, "id")).Build(),
				Select(C(posts, "user_id")).Build(),
			)).Build())).Build(),
			`SELECT 'users'."name" FROM 'users' WHERE (EXISTS (SELECT 'users'."id" FROM 'users' INTERSECT SELECT 'posts'."user_id" FROM 'posts'))`,
			nil,
		},
		{
			"subquery select",
			Select(C(users, "id")).Subquery(),
			`(SELECT 'users'."id" FROM 'users')`,
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := compile(t, c, tc.node)
			assert.Equal(t, tc.sql, q.SQL)
			assert.Equal(t, tc.args, q.Args)
		})
	}
}

func TestCompileLimit(t *testing.T) {
	c := newCompiler(t)

	q := compile(t, c, &ast.Limit{Limit: 10, Offset: 5, HasOffset: true, OffsetImplicit: true})
	assert.Equal(t, "LIMIT 5, 10", q.SQL)

	q = compile(t, c, &ast.Limit{Limit: 10, Offset: 5, HasOffset: true})
	assert.Equal(t, "LIMIT 10 OFFSET 5", q.SQL)

	q = compile(t, c, &ast.Limit{Limit: 10})
	assert.Equal(t, "LIMIT 10", q.SQL)

	q = compile(t, c, Select(C(users, "id")).LimitFrom(5, 10).Build())
	assert.Equal(t, `SELECT 'users'."id" FROM 'users' LIMIT 5, 10`, q.SQL)
	assert.Empty(t, q.Args)
}

func TestCompileUpdateAll(t *testing.T) {
	c := newCompiler(t)

	q := compile(t, c, Update().
		Set(C(users, "name"), "ann").
		Set(C(users, "age"), Add(C(users, "age"), 1)).
		Where(Eq(C(users, "id"), 3)).Build())
	assert.Equal(t, `UPDATE 'users' SET "name" = ?, "age" = ('users'."age" + ?) WHERE ('users'."id" = ?)`, q.SQL)
	assert.Equal(t, []any{"ann", 1, 3}, q.Args)

	_, err := c.Compile(Update().Set(C(users, "name"), "x").Set(C(posts, "title"), "y").Build())
	assert.True(t, errors.Is(err, sqlerr.ErrTooManyTablesSpecified))

	_, err = c.Compile(Update().Set(Val(1), 2).Build())
	assert.True(t, errors.Is(err, sqlerr.ErrIncorrectSetFieldsSpecified))

	_, err = c.Compile(Update().Build())
	assert.True(t, errors.Is(err, sqlerr.ErrIncorrectSetFieldsSpecified))
}

func TestCompileDeleteAll(t *testing.T) {
	c := newCompiler(t)

	q := compile(t, c, Delete(posts).Where(Lt(C(posts, "id"), 100)).Build())
	assert.Equal(t, `DELETE FROM 'posts' WHERE ('posts'."id" < ?)`, q.SQL)

	_, err := c.Compile(Delete("ghosts").Build())
	assert.True(t, errors.Is(err, sqlerr.ErrUnknownTable))
}

func TestCompileErrors(t *testing.T) {
	c := newCompiler(t)

	_, err := c.Compile(C(users, "nope"))
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))

	_, err = c.Compile(C("ghosts", "id"))
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))

	_, err = c.Compile(&ast.Select{Projection: &ast.Columns{}, TopLevel: true})
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))

	_, err = c.Compile(&ast.Select{TopLevel: true})
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))

	_, err = c.Compile(Select(C(users, "id")).Where(Eq(C(users, "bogus"), 1)).Build())
	assert.True(t, errors.Is(err, sqlerr.ErrColumnNotFound))

	_, err = c.Compile(&ast.Join{Kind: ast.JoinInner, Table: posts})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = c.Compile(&ast.Case{})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = c.Compile(&ast.Binary{Op: ast.OpEq, Left: C(users, "id")})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestCompilerIsReentrant(t *testing.T) {
	c := newCompiler(t)
	tree := Select(C(users, "name")).Where(In(C(users, "id"), 1, 2, 3)).Build()

	done := make(chan *Query, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			q, err := c.Compile(tree)
			if err != nil {
				done <- nil
				return
			}
			done <- q
		}()
	}
	for i := 0; i < cap(done); i++ {
		q := <-done
		require.NotNil(t, q)
		assert.Equal(t, []any{1, 2, 3}, q.Args)
	}
}
