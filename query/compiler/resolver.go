package compiler

import (
	"sort"

	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
)

// TableRef is a table name with an optional alias.
type TableRef struct {
	Name  string
	Alias string
}

// TableSet is a set of table references.
type TableSet map[TableRef]struct{}

func (s TableSet) add(ref TableRef) { s[ref] = struct{}{} }

// Contains reports whether ref is in the set.
func (s TableSet) Contains(ref TableRef) bool {
	_, ok := s[ref]
	return ok
}

// Sorted returns the references ordered by name, then alias.
func (s TableSet) Sorted() []TableRef {
	out := make([]TableRef, 0, len(s))
	for ref := range s {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Alias < out[j].Alias
	})
	return out
}

// ResolveTableNames returns the tables node refers to. For a Select it is
// the set its FROM clause would list. Subqueries contribute nothing to the
// enclosing expression.
func (c *Compiler) ResolveTableNames(node ast.Node) (TableSet, error) {
	if sel, ok := node.(*ast.Select); ok {
		return c.fromTables(sel)
	}
	r := &resolver{reg: c.reg, set: make(TableSet)}
	if err := r.visit(node); err != nil {
		return nil, err
	}
	return r.set, nil
}

// fromTables resolves the projection of sel and drops every table an
// explicit join introduces. Tables named only in clauses are not listed.
func (c *Compiler) fromTables(sel *ast.Select) (TableSet, error) {
	r := &resolver{reg: c.reg, set: make(TableSet)}
	if err := r.visit(sel.Projection); err != nil {
		return nil, err
	}
	for _, cl := range sel.Clauses {
		j, ok := cl.(*ast.Join)
		if !ok {
			continue
		}
		t, err := lookupTable(c.reg, j.Table)
		if err != nil {
			return nil, err
		}
		delete(r.set, TableRef{Name: t.Name, Alias: j.Alias})
	}
	return r.set, nil
}

func lookupTable(reg *schema.Registry, id schema.TableID) (*schema.Table, error) {
	t, ok := reg.Table(id)
	if !ok {
		return nil, columnNotFound("table %q is not registered", id)
	}
	return t, nil
}

type resolver struct {
	reg *schema.Registry
	set TableSet
}

func (r *resolver) visit(n ast.Node) error {
	if n == nil {
		return nil
	}
	return n.Accept(r)
}

func (r *resolver) visitAll(nodes ...ast.Node) error {
	for _, n := range nodes {
		if err := r.visit(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) visitMaybe(m ast.Maybe) error {
	if n, ok := m.Get(); ok {
		return r.visit(n)
	}
	return nil
}

func (r *resolver) table(id schema.TableID, alias string) error {
	t, err := lookupTable(r.reg, id)
	if err != nil {
		return err
	}
	r.set.add(TableRef{Name: t.Name, Alias: alias})
	return nil
}

func (r *resolver) VisitColumn(n *ast.Column) error { return r.table(n.Table, "") }

func (r *resolver) VisitAliasedColumn(n *ast.AliasedColumn) error { return r.table(n.Table, n.Alias) }

func (r *resolver) VisitRowID(n *ast.RowID) error {
	if n.Table == "" {
		return nil
	}
	return r.table(n.Table, "")
}

func (r *resolver) VisitLiteral(*ast.Literal) error   { return nil }
func (r *resolver) VisitAliasRef(*ast.AliasRef) error { return nil }
func (r *resolver) VisitExists(*ast.Exists) error     { return nil }
func (r *resolver) VisitSelect(*ast.Select) error     { return nil }
func (r *resolver) VisitCompound(*ast.Compound) error { return nil }
func (r *resolver) VisitLimit(*ast.Limit) error       { return nil }

func (r *resolver) VisitAsterisk(n *ast.Asterisk) error { return r.table(n.Table, "") }

func (r *resolver) VisitBinary(n *ast.Binary) error { return r.visitAll(n.Left, n.Right) }

func (r *resolver) VisitNot(n *ast.Not) error { return r.visit(n.Expr) }

func (r *resolver) VisitIsNull(n *ast.IsNull) error { return r.visit(n.Expr) }

func (r *resolver) VisitIn(n *ast.In) error {
	if err := r.visit(n.Left); err != nil {
		return err
	}
	return r.visitAll(n.Values...)
}

func (r *resolver) VisitLike(n *ast.Like) error { return r.visitAll(n.Expr, n.Pattern) }

func (r *resolver) VisitBetween(n *ast.Between) error { return r.visitAll(n.Expr, n.Low, n.High) }

func (r *resolver) VisitFunction(n *ast.Function) error { return r.visitAll(n.Args...) }

func (r *resolver) VisitCountAll(n *ast.CountAll) error {
	if n.Table == "" {
		return nil
	}
	return r.table(n.Table, "")
}

func (r *resolver) VisitCast(n *ast.Cast) error { return r.visit(n.Expr) }

func (r *resolver) VisitCase(n *ast.Case) error {
	if err := r.visitMaybe(n.Operand); err != nil {
		return err
	}
	for _, w := range n.Whens {
		if err := r.visitAll(w.Cond, w.Result); err != nil {
			return err
		}
	}
	return r.visitMaybe(n.Else)
}

func (r *resolver) VisitCollate(n *ast.Collate) error { return r.visit(n.Expr) }

func (r *resolver) VisitAs(n *ast.As) error { return r.visit(n.Expr) }

func (r *resolver) VisitColumns(n *ast.Columns) error { return r.visitAll(n.Items...) }

func (r *resolver) VisitWhere(n *ast.Where) error { return r.visit(n.Cond) }

func (r *resolver) VisitHaving(n *ast.Having) error { return r.visit(n.Cond) }

func (r *resolver) VisitOrderBy(n *ast.OrderBy) error {
	for _, term := range n.Terms {
		if err := r.visit(term.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) VisitGroupBy(n *ast.GroupBy) error { return r.visitAll(n.Items...) }

func (r *resolver) VisitJoin(n *ast.Join) error { return r.table(n.Table, n.Alias) }

func (r *resolver) VisitUpdateAll(n *ast.UpdateAll) error {
	for _, a := range n.Set {
		if err := r.visit(a.Column); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) VisitDeleteAll(n *ast.DeleteAll) error { return r.table(n.Table, "") }
