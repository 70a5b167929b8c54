package ast

import "github.com/satishbabariya/sqlorm/schema"

// Columns is an ordered projection list.
type Columns struct {
	Items []Node
}

// Select is a SELECT statement. A Select that is not TopLevel renders in
// parentheses so it can be used as a subexpression.
type Select struct {
	Projection Node
	Clauses    []Clause
	Distinct   bool
	TopLevel   bool
}

// CompoundOperator joins two selects.
type CompoundOperator string

const (
	Union     CompoundOperator = "UNION"
	UnionAll  CompoundOperator = "UNION ALL"
	Intersect CompoundOperator = "INTERSECT"
	Except    CompoundOperator = "EXCEPT"
)

// Compound is left UNION right and friends. Used as the projection of a
// Select, the branches are rendered joined by the operator.
type Compound struct {
	Op    CompoundOperator
	Left  Node
	Right Node
}

// Where is WHERE (cond).
type Where struct {
	Cond Node
}

// Having is HAVING cond.
type Having struct {
	Cond Node
}

// SortDirection of an ORDER BY term. The zero value emits no keyword.
type SortDirection string

const (
	SortDefault SortDirection = ""
	SortAsc     SortDirection = "ASC"
	SortDesc    SortDirection = "DESC"
)

// OrderTerm is one ORDER BY expression.
type OrderTerm struct {
	Expr      Node
	Collate   string
	Direction SortDirection
}

// OrderBy lists ordering terms.
type OrderBy struct {
	Terms []OrderTerm
}

// GroupBy lists grouping expressions.
type GroupBy struct {
	Items []Node
}

// Limit is LIMIT n, LIMIT n OFFSET m, or LIMIT m, n when OffsetImplicit.
type Limit struct {
	Limit          int64
	Offset         int64
	HasOffset      bool
	OffsetImplicit bool
}

// JoinKind is the join keyword.
type JoinKind string

const (
	JoinInner     JoinKind = "INNER JOIN"
	JoinLeft      JoinKind = "LEFT JOIN"
	JoinLeftOuter JoinKind = "LEFT OUTER JOIN"
	JoinCross     JoinKind = "CROSS JOIN"
	JoinNatural   JoinKind = "NATURAL JOIN"
	JoinPlain     JoinKind = "JOIN"
)

// TakesConstraint reports whether the join kind expects ON or USING.
func (k JoinKind) TakesConstraint() bool {
	return k != JoinCross && k != JoinNatural
}

// Join joins Table (optionally aliased) with an ON condition or a USING
// column.
type Join struct {
	Kind  JoinKind
	Table schema.TableID
	Alias string
	On    Maybe
	Using Maybe
}

// Assignment is one column = value pair of a SET list.
type Assignment struct {
	Column Node
	Value  Node
}

// UpdateAll is UPDATE table SET ... [WHERE ...]. The target table is the
// single table the assigned columns resolve to.
type UpdateAll struct {
	Set     []Assignment
	Clauses []Clause
}

// DeleteAll is DELETE FROM table [WHERE ...].
type DeleteAll struct {
	Table   schema.TableID
	Clauses []Clause
}

func (*Columns) Type() NodeType   { return NodeTypeColumns }
func (*Select) Type() NodeType    { return NodeTypeSelect }
func (*Compound) Type() NodeType  { return NodeTypeCompound }
func (*Where) Type() NodeType     { return NodeTypeWhere }
func (*Having) Type() NodeType    { return NodeTypeHaving }
func (*OrderBy) Type() NodeType   { return NodeTypeOrderBy }
func (*GroupBy) Type() NodeType   { return NodeTypeGroupBy }
func (*Limit) Type() NodeType     { return NodeTypeLimit }
func (*Join) Type() NodeType      { return NodeTypeJoin }
func (*UpdateAll) Type() NodeType { return NodeTypeUpdateAll }
func (*DeleteAll) Type() NodeType { return NodeTypeDeleteAll }

func (n *Columns) Accept(v Visitor) error   { return v.VisitColumns(n) }
func (n *Select) Accept(v Visitor) error    { return v.VisitSelect(n) }
func (n *Compound) Accept(v Visitor) error  { return v.VisitCompound(n) }
func (n *Where) Accept(v Visitor) error     { return v.VisitWhere(n) }
func (n *Having) Accept(v Visitor) error    { return v.VisitHaving(n) }
func (n *OrderBy) Accept(v Visitor) error   { return v.VisitOrderBy(n) }
func (n *GroupBy) Accept(v Visitor) error   { return v.VisitGroupBy(n) }
func (n *Limit) Accept(v Visitor) error     { return v.VisitLimit(n) }
func (n *Join) Accept(v Visitor) error      { return v.VisitJoin(n) }
func (n *UpdateAll) Accept(v Visitor) error { return v.VisitUpdateAll(n) }
func (n *DeleteAll) Accept(v Visitor) error { return v.VisitDeleteAll(n) }

func (*Columns) sealed()   {}
func (*Select) sealed()    {}
func (*Compound) sealed()  {}
func (*Where) sealed()     {}
func (*Having) sealed()    {}
func (*OrderBy) sealed()   {}
func (*GroupBy) sealed()   {}
func (*Limit) sealed()     {}
func (*Join) sealed()      {}
func (*UpdateAll) sealed() {}
func (*DeleteAll) sealed() {}

func (*Where) clause()   {}
func (*Having) clause()  {}
func (*OrderBy) clause() {}
func (*GroupBy) clause() {}
func (*Limit) clause()   {}
func (*Join) clause()    {}
