// Package builder provides constructors for expression trees and fluent
// builders for select, update-all and delete-all statements.
package builder

import (
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
)

// C references column field of table.
func C(table schema.TableID, field string) *ast.Column {
	return &ast.Column{Table: table, Field: field}
}

// AliasC references column field of table through alias.
func AliasC(alias string, table schema.TableID, field string) *ast.AliasedColumn {
	return &ast.AliasedColumn{Alias: alias, Table: table, Field: field}
}

// Val wraps a bound value.
func Val(v any) *ast.Literal {
	return &ast.Literal{Value: v}
}

// Star is * over table.
func Star(table schema.TableID) *ast.Asterisk {
	return &ast.Asterisk{Table: table}
}

func RowID() *ast.RowID           { return &ast.RowID{Name: "rowid"} }
func OID() *ast.RowID             { return &ast.RowID{Name: "oid"} }
func UnderscoreRowID() *ast.RowID { return &ast.RowID{Name: "_rowid_"} }

// RowIDOf is 'table'.rowid.
func RowIDOf(table schema.TableID) *ast.RowID {
	return &ast.RowID{Name: "rowid", Table: table}
}

// node turns x into a node; anything that is not already a node is bound.
func node(x any) ast.Node {
	if n, ok := x.(ast.Node); ok {
		return n
	}
	return Val(x)
}

func nodes(xs []any) []ast.Node {
	out := make([]ast.Node, len(xs))
	for i, x := range xs {
		out[i] = node(x)
	}
	return out
}

func binary(op ast.BinaryOperator, l, r any) *ast.Binary {
	return &ast.Binary{Op: op, Left: node(l), Right: node(r)}
}

func Eq(l, r any) *ast.Binary { return binary(ast.OpEq, l, r) }
func Ne(l, r any) *ast.Binary { return binary(ast.OpNe, l, r) }
func Lt(l, r any) *ast.Binary { return binary(ast.OpLt, l, r) }
func Le(l, r any) *ast.Binary { return binary(ast.OpLe, l, r) }
func Gt(l, r any) *ast.Binary { return binary(ast.OpGt, l, r) }
func Ge(l, r any) *ast.Binary { return binary(ast.OpGe, l, r) }

func Add(l, r any) *ast.Binary    { return binary(ast.OpAdd, l, r) }
func Sub(l, r any) *ast.Binary    { return binary(ast.OpSub, l, r) }
func Mul(l, r any) *ast.Binary    { return binary(ast.OpMul, l, r) }
func Div(l, r any) *ast.Binary    { return binary(ast.OpDiv, l, r) }
func Mod(l, r any) *ast.Binary    { return binary(ast.OpMod, l, r) }
func Concat(l, r any) *ast.Binary { return binary(ast.OpConcat, l, r) }

// And folds conds left to right: ((a AND b) AND c).
func And(conds ...ast.Node) ast.Node { return fold(ast.OpAnd, conds) }

// Or folds conds left to right.
func Or(conds ...ast.Node) ast.Node { return fold(ast.OpOr, conds) }

func fold(op ast.BinaryOperator, conds []ast.Node) ast.Node {
	if len(conds) == 0 {
		return nil
	}
	acc := conds[0]
	for _, c := range conds[1:] {
		acc = &ast.Binary{Op: op, Left: acc, Right: c}
	}
	return acc
}

func Not(cond ast.Node) *ast.Not { return &ast.Not{Expr: cond} }

func IsNull(x any) *ast.IsNull    { return &ast.IsNull{Expr: node(x)} }
func IsNotNull(x any) *ast.IsNull { return &ast.IsNull{Expr: node(x), Negated: true} }

// In is l IN ( values... ).
func In(l any, values ...any) *ast.In {
	return &ast.In{Left: node(l), Values: nodes(values)}
}

// NotIn is l NOT IN ( values... ).
func NotIn(l any, values ...any) *ast.In {
	return &ast.In{Left: node(l), Values: nodes(values), Negated: true}
}

// InQuery is l IN (subquery). A top-level select, compound selects included,
// is turned into a subquery.
func InQuery(l any, sub *ast.Select) *ast.In {
	return &ast.In{Left: node(l), Query: ast.Some(asSubquery(sub))}
}

func Like(x, pattern any) *ast.Like { return &ast.Like{Expr: node(x), Pattern: node(pattern)} }
func Glob(x, pattern any) *ast.Like {
	return &ast.Like{Expr: node(x), Pattern: node(pattern), Glob: true}
}

func Between(x, low, high any) *ast.Between {
	return &ast.Between{Expr: node(x), Low: node(low), High: node(high)}
}

// Exists is EXISTS (subquery).
func Exists(sub *ast.Select) *ast.Exists {
	return &ast.Exists{Query: asSubquery(sub)}
}

func asSubquery(sel *ast.Select) *ast.Select {
	cp := *sel
	cp.TopLevel = false
	return &cp
}

// Func is name(args...).
func Func(name string, args ...any) *ast.Function {
	return &ast.Function{Name: name, Args: nodes(args)}
}

func Count(x any) *ast.Function    { return Func("COUNT", x) }
func Sum(x any) *ast.Function      { return Func("SUM", x) }
func Total(x any) *ast.Function    { return Func("TOTAL", x) }
func Avg(x any) *ast.Function      { return Func("AVG", x) }
func Min(x any) *ast.Function      { return Func("MIN", x) }
func Max(x any) *ast.Function      { return Func("MAX", x) }
func Length(x any) *ast.Function   { return Func("LENGTH", x) }
func Lower(x any) *ast.Function    { return Func("LOWER", x) }
func Upper(x any) *ast.Function    { return Func("UPPER", x) }
func Abs(x any) *ast.Function      { return Func("ABS", x) }
func Distinct(x any) *ast.Function { return Func("DISTINCT", x) }
func All(x any) *ast.Function      { return Func("ALL", x) }

// GroupConcat is GROUP_CONCAT(x) or GROUP_CONCAT(x, sep).
func GroupConcat(x any, sep ...string) *ast.Function {
	if len(sep) > 0 {
		return Func("GROUP_CONCAT", x, sep[0])
	}
	return Func("GROUP_CONCAT", x)
}

// CountAll is COUNT(*) over table; pass "" for a bare COUNT(*).
func CountAll(table schema.TableID) *ast.CountAll {
	return &ast.CountAll{Table: table}
}

// Cast is CAST(x AS sqlType).
func Cast(x any, sqlType string) *ast.Cast {
	return &ast.Cast{Expr: node(x), SQLType: sqlType}
}

func Collate(x any, name string) *ast.Collate { return &ast.Collate{Expr: node(x), Name: name} }

// As aliases a projection.
func As(x any, alias string) *ast.As { return &ast.As{Expr: node(x), Alias: alias} }

// Alias references a projection alias.
func Alias(alias string) *ast.AliasRef { return &ast.AliasRef{Alias: alias} }

// Compound operators.
func Union(l, r *ast.Select) *ast.Compound     { return compound(ast.Union, l, r) }
func UnionAll(l, r *ast.Select) *ast.Compound  { return compound(ast.UnionAll, l, r) }
func Intersect(l, r *ast.Select) *ast.Compound { return compound(ast.Intersect, l, r) }
func Except(l, r *ast.Select) *ast.Compound    { return compound(ast.Except, l, r) }

func compound(op ast.CompoundOperator, l, r *ast.Select) *ast.Compound {
	return &ast.Compound{Op: op, Left: l, Right: r}
}

// CaseBuilder builds a CASE expression.
type CaseBuilder struct {
	c *ast.Case
}

// Case starts CASE operand ...
func Case(operand any) *CaseBuilder {
	return &CaseBuilder{c: &ast.Case{Operand: ast.Some(node(operand))}}
}

// SearchedCase starts a CASE with no operand.
func SearchedCase() *CaseBuilder {
	return &CaseBuilder{c: &ast.Case{}}
}

func (b *CaseBuilder) When(cond, result any) *CaseBuilder {
	b.c.Whens = append(b.c.Whens, ast.When{Cond: node(cond), Result: node(result)})
	return b
}

func (b *CaseBuilder) Else(result any) *CaseBuilder {
	b.c.Else = ast.Some(node(result))
	return b
}

func (b *CaseBuilder) End() *ast.Case {
	return b.c
}
