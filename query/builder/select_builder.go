package builder

import "github.com/satishbabariya/sqlorm/query/ast"

// SelectBuilder builds a SELECT statement
type SelectBuilder struct {
	sel *ast.Select
}

// Select starts a top-level SELECT. One argument becomes the projection
// itself; several become a column list.
func Select(cols ...ast.Node) *SelectBuilder {
	var proj ast.Node
	switch len(cols) {
	case 0:
	case 1:
		proj = cols[0]
	default:
		proj = &ast.Columns{Items: cols}
	}
	return &SelectBuilder{sel: &ast.Select{Projection: proj, TopLevel: true}}
}

// SelectCompound selects a compound of two selects.
func SelectCompound(c *ast.Compound) *SelectBuilder {
	return &SelectBuilder{sel: &ast.Select{Projection: c, TopLevel: true}}
}

// Distinct adds DISTINCT after SELECT
func (s *SelectBuilder) Distinct() *SelectBuilder {
	s.sel.Distinct = true
	return s
}

func (s *SelectBuilder) clause(c ast.Clause) *SelectBuilder {
	s.sel.Clauses = append(s.sel.Clauses, c)
	return s
}

// Where adds WHERE (cond)
func (s *SelectBuilder) Where(cond ast.Node) *SelectBuilder {
	return s.clause(&ast.Where{Cond: cond})
}

// Having adds HAVING cond
func (s *SelectBuilder) Having(cond ast.Node) *SelectBuilder {
	return s.clause(&ast.Having{Cond: cond})
}

// GroupBy adds GROUP BY items
func (s *SelectBuilder) GroupBy(items ...ast.Node) *SelectBuilder {
	return s.clause(&ast.GroupBy{Items: items})
}

// OrderBy adds ORDER BY expr [dir]
func (s *SelectBuilder) OrderBy(expr ast.Node, dir ast.SortDirection) *SelectBuilder {
	return s.clause(&ast.OrderBy{Terms: []ast.OrderTerm{{Expr: expr, Direction: dir}}})
}

// OrderByTerms adds a multi-term ORDER BY
func (s *SelectBuilder) OrderByTerms(terms ...ast.OrderTerm) *SelectBuilder {
	return s.clause(&ast.OrderBy{Terms: terms})
}

// Limit adds LIMIT n
func (s *SelectBuilder) Limit(n int64) *SelectBuilder {
	return s.clause(&ast.Limit{Limit: n})
}

// LimitOffset adds LIMIT n OFFSET off
func (s *SelectBuilder) LimitOffset(n, off int64) *SelectBuilder {
	return s.clause(&ast.Limit{Limit: n, Offset: off, HasOffset: true})
}

// LimitFrom adds LIMIT off, n
func (s *SelectBuilder) LimitFrom(off, n int64) *SelectBuilder {
	return s.clause(&ast.Limit{Limit: n, Offset: off, HasOffset: true, OffsetImplicit: true})
}

// Build returns the top-level statement.
func (s *SelectBuilder) Build() *ast.Select {
	return s.sel
}

// Subquery returns the statement as a parenthesized subexpression.
func (s *SelectBuilder) Subquery() *ast.Select {
	return asSubquery(s.sel)
}
