package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

// renderer writes SQL into buf and appends bound values to args in the
// order their placeholders are written.
type renderer struct {
	c       *Compiler
	buf     strings.Builder
	args    []any
	noTable bool
	escape  bool
}

func (r *renderer) render(n ast.Node) error {
	if n == nil {
		return fmt.Errorf("%w: missing expression", ErrInvalidQuery)
	}
	return n.Accept(r)
}

// renderQualified renders n with the table qualifier forced on or off.
func (r *renderer) renderQualified(n ast.Node, noTable bool) error {
	saved := r.noTable
	r.noTable = noTable
	defer func() { r.noTable = saved }()
	return r.render(n)
}

func (r *renderer) renderList(nodes []ast.Node, sep string) error {
	for i, n := range nodes {
		if i > 0 {
			r.buf.WriteString(sep)
		}
		if err := r.render(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) write(parts ...string) {
	for _, p := range parts {
		r.buf.WriteString(p)
	}
}

func (r *renderer) tableName(name string) string {
	if r.escape {
		name = strings.ReplaceAll(name, "'", "''")
	}
	return "'" + name + "'"
}

func (r *renderer) columnName(name string) string {
	if r.escape {
		name = strings.ReplaceAll(name, `"`, `""`)
	}
	return `"` + name + `"`
}

func (r *renderer) column(id schema.TableID, field string) (*schema.Table, error) {
	t, err := lookupTable(r.c.reg, id)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Column(field); !ok {
		return nil, columnNotFound("%s.%s", t.Name, field)
	}
	return t, nil
}

func (r *renderer) VisitColumn(n *ast.Column) error {
	t, err := r.column(n.Table, n.Field)
	if err != nil {
		return err
	}
	if !r.noTable {
		r.write(r.tableName(t.Name), ".")
	}
	r.write(r.columnName(n.Field))
	return nil
}

func (r *renderer) VisitAliasedColumn(n *ast.AliasedColumn) error {
	if _, err := r.column(n.Table, n.Field); err != nil {
		return err
	}
	if !r.noTable {
		r.write(r.tableName(n.Alias), ".")
	}
	r.write(r.columnName(n.Field))
	return nil
}

func (r *renderer) VisitRowID(n *ast.RowID) error {
	name := n.Name
	if name == "" {
		name = "rowid"
	}
	if n.Table != "" && !r.noTable {
		t, err := lookupTable(r.c.reg, n.Table)
		if err != nil {
			return err
		}
		r.write(r.tableName(t.Name), ".")
	}
	r.write(name)
	return nil
}

func (r *renderer) VisitLiteral(n *ast.Literal) error {
	r.write("?")
	r.args = append(r.args, n.Value)
	return nil
}

func (r *renderer) VisitAsterisk(n *ast.Asterisk) error {
	if n.Table != "" {
		if _, err := lookupTable(r.c.reg, n.Table); err != nil {
			return err
		}
	}
	r.write("*")
	return nil
}

func (r *renderer) VisitAliasRef(n *ast.AliasRef) error {
	r.write(r.columnName(n.Alias))
	return nil
}

func (r *renderer) VisitBinary(n *ast.Binary) error {
	switch {
	case n.Op.IsArithmetic():
		r.write("(")
		if err := r.render(n.Left); err != nil {
			return err
		}
		r.write(" ", string(n.Op), " ")
		if err := r.render(n.Right); err != nil {
			return err
		}
		r.write(")")
	case n.Op.IsLogical():
		r.write("(")
		if err := r.render(n.Left); err != nil {
			return err
		}
		r.write(") ", string(n.Op), " (")
		if err := r.render(n.Right); err != nil {
			return err
		}
		r.write(")")
	default:
		if err := r.render(n.Left); err != nil {
			return err
		}
		r.write(" ", string(n.Op), " ")
		return r.render(n.Right)
	}
	return nil
}

func (r *renderer) VisitNot(n *ast.Not) error {
	r.write("NOT (")
	if err := r.render(n.Expr); err != nil {
		return err
	}
	r.write(")")
	return nil
}

func (r *renderer) VisitIsNull(n *ast.IsNull) error {
	if err := r.render(n.Expr); err != nil {
		return err
	}
	if n.Negated {
		r.write(" IS NOT NULL")
	} else {
		r.write(" IS NULL")
	}
	return nil
}

func (r *renderer) VisitIn(n *ast.In) error {
	if err := r.render(n.Left); err != nil {
		return err
	}
	if n.Negated {
		r.write(" NOT IN ")
	} else {
		r.write(" IN ")
	}
	if q, ok := n.Query.Get(); ok {
		return r.render(q)
	}
	r.write("(")
	if len(n.Values) > 0 {
		r.write(" ")
		if err := r.renderList(n.Values, ", "); err != nil {
			return err
		}
	}
	r.write(" )")
	return nil
}

func (r *renderer) VisitLike(n *ast.Like) error {
	if err := r.render(n.Expr); err != nil {
		return err
	}
	if n.Glob {
		r.write(" GLOB ")
	} else {
		r.write(" LIKE ")
	}
	return r.render(n.Pattern)
}

func (r *renderer) VisitBetween(n *ast.Between) error {
	if err := r.render(n.Expr); err != nil {
		return err
	}
	r.write(" BETWEEN ")
	if err := r.render(n.Low); err != nil {
		return err
	}
	r.write(" AND ")
	return r.render(n.High)
}

func (r *renderer) VisitExists(n *ast.Exists) error {
	r.write("EXISTS ")
	return r.render(n.Query)
}

func (r *renderer) VisitFunction(n *ast.Function) error {
	if n.Name == "" {
		return fmt.Errorf("%w: function without a name", ErrInvalidQuery)
	}
	r.write(n.Name, "(")
	if err := r.renderList(n.Args, ", "); err != nil {
		return err
	}
	r.write(")")
	return nil
}

func (r *renderer) VisitCountAll(n *ast.CountAll) error {
	if n.Table != "" {
		if _, err := lookupTable(r.c.reg, n.Table); err != nil {
			return err
		}
	}
	r.write("COUNT(*)")
	return nil
}

func (r *renderer) VisitCast(n *ast.Cast) error {
	r.write("CAST(")
	if err := r.render(n.Expr); err != nil {
		return err
	}
	r.write(" AS ", n.SQLType, ")")
	return nil
}

func (r *renderer) VisitCase(n *ast.Case) error {
	if len(n.Whens) == 0 {
		return fmt.Errorf("%w: CASE without WHEN", ErrInvalidQuery)
	}
	r.write("CASE ")
	if op, ok := n.Operand.Get(); ok {
		if err := r.render(op); err != nil {
			return err
		}
		r.write(" ")
	}
	for _, w := range n.Whens {
		r.write("WHEN ")
		if err := r.render(w.Cond); err != nil {
			return err
		}
		r.write(" THEN ")
		if err := r.render(w.Result); err != nil {
			return err
		}
		r.write(" ")
	}
	if el, ok := n.Else.Get(); ok {
		r.write("ELSE ")
		if err := r.render(el); err != nil {
			return err
		}
		r.write(" ")
	}
	r.write("END")
	return nil
}

func (r *renderer) VisitCollate(n *ast.Collate) error {
	if err := r.render(n.Expr); err != nil {
		return err
	}
	r.write(" COLLATE ", n.Name)
	return nil
}

func (r *renderer) VisitAs(n *ast.As) error {
	if err := r.render(n.Expr); err != nil {
		return err
	}
	r.write(" AS ", r.columnName(n.Alias))
	return nil
}

func (r *renderer) VisitColumns(n *ast.Columns) error {
	if len(n.Items) == 0 {
		return columnNotFound("empty column list")
	}
	return r.renderList(n.Items, ", ")
}

func (r *renderer) VisitSelect(n *ast.Select) error {
	return r.selectStatement(n, n.TopLevel)
}

func (r *renderer) selectStatement(n *ast.Select, topLevel bool) error {
	if n.Projection == nil {
		return columnNotFound("select without projection")
	}
	if !topLevel {
		r.write("(")
	}
	// Distinct does not apply to a compound; its operator decides.
	if cmp, ok := n.Projection.(*ast.Compound); ok {
		if err := r.render(cmp); err != nil {
			return err
		}
		if err := r.clauses(n.Clauses); err != nil {
			return err
		}
		if !topLevel {
			r.write(")")
		}
		return nil
	}

	r.write("SELECT ")
	if n.Distinct {
		r.write("DISTINCT ")
	}
	if err := r.renderQualified(n.Projection, false); err != nil {
		return err
	}
	tables, err := r.c.fromTables(n)
	if err != nil {
		return err
	}
	if len(tables) > 0 {
		r.write(" FROM ")
		for i, ref := range tables.Sorted() {
			if i > 0 {
				r.write(", ")
			}
			r.write(r.tableName(ref.Name))
			if ref.Alias != "" {
				r.write(" ", r.tableName(ref.Alias))
			}
		}
	}
	if err := r.clauses(n.Clauses); err != nil {
		return err
	}
	if !topLevel {
		r.write(")")
	}
	return nil
}

func (r *renderer) clauses(clauses []ast.Clause) error {
	for _, cl := range clauses {
		r.write(" ")
		if err := r.renderQualified(cl, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) VisitCompound(n *ast.Compound) error {
	if err := r.branch(n.Left); err != nil {
		return err
	}
	r.write(" ", string(n.Op), " ")
	return r.branch(n.Right)
}

// branch renders a compound operand; a select operand is never wrapped.
func (r *renderer) branch(n ast.Node) error {
	if sel, ok := n.(*ast.Select); ok {
		return r.selectStatement(sel, true)
	}
	return r.render(n)
}

func (r *renderer) VisitWhere(n *ast.Where) error {
	r.write("WHERE (")
	if err := r.render(n.Cond); err != nil {
		return err
	}
	r.write(")")
	return nil
}

func (r *renderer) VisitHaving(n *ast.Having) error {
	r.write("HAVING ")
	return r.render(n.Cond)
}

func (r *renderer) VisitOrderBy(n *ast.OrderBy) error {
	if len(n.Terms) == 0 {
		return fmt.Errorf("%w: empty ORDER BY", ErrInvalidQuery)
	}
	r.write("ORDER BY ")
	for i, term := range n.Terms {
		if i > 0 {
			r.write(", ")
		}
		if err := r.render(term.Expr); err != nil {
			return err
		}
		if term.Collate != "" {
			r.write(" COLLATE ", term.Collate)
		}
		if term.Direction != ast.SortDefault {
			r.write(" ", string(term.Direction))
		}
	}
	return nil
}

func (r *renderer) VisitGroupBy(n *ast.GroupBy) error {
	if len(n.Items) == 0 {
		return fmt.Errorf("%w: empty GROUP BY", ErrInvalidQuery)
	}
	r.write("GROUP BY ")
	return r.renderList(n.Items, ", ")
}

func (r *renderer) VisitLimit(n *ast.Limit) error {
	lim := strconv.FormatInt(n.Limit, 10)
	off := strconv.FormatInt(n.Offset, 10)
	switch {
	case !n.HasOffset:
		r.write("LIMIT ", lim)
	case n.OffsetImplicit:
		r.write("LIMIT ", off, ", ", lim)
	default:
		r.write("LIMIT ", lim, " OFFSET ", off)
	}
	return nil
}

func (r *renderer) VisitJoin(n *ast.Join) error {
	t, err := lookupTable(r.c.reg, n.Table)
	if err != nil {
		return err
	}
	r.write(string(n.Kind), " ", r.tableName(t.Name))
	if n.Alias != "" {
		r.write(" ", r.tableName(n.Alias))
	}
	if !n.Kind.TakesConstraint() {
		return nil
	}
	if on, ok := n.On.Get(); ok {
		r.write(" ON ")
		return r.render(on)
	}
	if col, ok := n.Using.Get(); ok {
		r.write(" USING (")
		if err := r.renderQualified(col, true); err != nil {
			return err
		}
		r.write(")")
		return nil
	}
	return fmt.Errorf("%w: %s %s needs ON or USING", ErrInvalidQuery, n.Kind, t.Name)
}

func (r *renderer) VisitUpdateAll(n *ast.UpdateAll) error {
	if len(n.Set) == 0 {
		return sqlerr.New(sqlerr.CodeIncorrectSetFieldsSpecified, "empty SET list")
	}
	tables, err := r.c.ResolveTableNames(n)
	if err != nil {
		return err
	}
	switch len(tables) {
	case 0:
		return sqlerr.New(sqlerr.CodeIncorrectSetFieldsSpecified, "SET list names no table column")
	case 1:
	default:
		return sqlerr.New(sqlerr.CodeTooManyTablesSpecified, "SET list spans %d tables", len(tables))
	}
	target := tables.Sorted()[0]

	r.write("UPDATE ", r.tableName(target.Name), " SET ")
	for i, a := range n.Set {
		if i > 0 {
			r.write(", ")
		}
		if err := r.renderQualified(a.Column, true); err != nil {
			return err
		}
		r.write(" = ")
		if err := r.renderQualified(a.Value, false); err != nil {
			return err
		}
	}
	return r.clauses(n.Clauses)
}

func (r *renderer) VisitDeleteAll(n *ast.DeleteAll) error {
	t, ok := r.c.reg.Table(n.Table)
	if !ok {
		return sqlerr.New(sqlerr.CodeUnknownTable, "%q", n.Table)
	}
	r.write("DELETE FROM ", r.tableName(t.Name))
	return r.clauses(n.Clauses)
}
