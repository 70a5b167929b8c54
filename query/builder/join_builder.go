package builder

import (
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
)

// InnerJoin adds INNER JOIN table ON cond
func (s *SelectBuilder) InnerJoin(table schema.TableID, on ast.Node) *SelectBuilder {
	return s.JoinAs(ast.JoinInner, table, "", on)
}

// LeftJoin adds LEFT JOIN table ON cond
func (s *SelectBuilder) LeftJoin(table schema.TableID, on ast.Node) *SelectBuilder {
	return s.JoinAs(ast.JoinLeft, table, "", on)
}

// LeftOuterJoin adds LEFT OUTER JOIN table ON cond
func (s *SelectBuilder) LeftOuterJoin(table schema.TableID, on ast.Node) *SelectBuilder {
	return s.JoinAs(ast.JoinLeftOuter, table, "", on)
}

// Join adds JOIN table ON cond
func (s *SelectBuilder) Join(table schema.TableID, on ast.Node) *SelectBuilder {
	return s.JoinAs(ast.JoinPlain, table, "", on)
}

// CrossJoin adds CROSS JOIN table
func (s *SelectBuilder) CrossJoin(table schema.TableID) *SelectBuilder {
	return s.clause(&ast.Join{Kind: ast.JoinCross, Table: table})
}

// NaturalJoin adds NATURAL JOIN table
func (s *SelectBuilder) NaturalJoin(table schema.TableID) *SelectBuilder {
	return s.clause(&ast.Join{Kind: ast.JoinNatural, Table: table})
}

// JoinAs adds kind table alias ON cond. An empty alias joins the bare table.
func (s *SelectBuilder) JoinAs(kind ast.JoinKind, table schema.TableID, alias string, on ast.Node) *SelectBuilder {
	return s.clause(&ast.Join{Kind: kind, Table: table, Alias: alias, On: ast.Some(on)})
}

// JoinUsing adds kind table USING (col)
func (s *SelectBuilder) JoinUsing(kind ast.JoinKind, table schema.TableID, col *ast.Column) *SelectBuilder {
	return s.clause(&ast.Join{Kind: kind, Table: table, Using: ast.Some(col)})
}
