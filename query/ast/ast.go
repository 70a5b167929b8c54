// Package ast defines the expression tree compiled into SQL: column
// references, bound literals, operators, functions, conditions, joins and
// query clauses.
//
// The set of node kinds is closed. Every kind has a method on Visitor, so a
// new kind cannot be added without updating every consumer.
package ast

import "github.com/satishbabariya/sqlorm/schema"

// Node is an expression tree node.
type Node interface {
	Type() NodeType
	Accept(v Visitor) error
	sealed()
}

// Clause is a node that may follow the projection of a SELECT.
type Clause interface {
	Node
	clause()
}

// NodeType names a node kind.
type NodeType string

const (
	NodeTypeColumn        NodeType = "Column"
	NodeTypeAliasedColumn NodeType = "AliasedColumn"
	NodeTypeRowID         NodeType = "RowID"
	NodeTypeLiteral       NodeType = "Literal"
	NodeTypeAsterisk      NodeType = "Asterisk"
	NodeTypeAliasRef      NodeType = "AliasRef"
	NodeTypeBinary        NodeType = "Binary"
	NodeTypeNot           NodeType = "Not"
	NodeTypeIsNull        NodeType = "IsNull"
	NodeTypeIn            NodeType = "In"
	NodeTypeLike          NodeType = "Like"
	NodeTypeBetween       NodeType = "Between"
	NodeTypeExists        NodeType = "Exists"
	NodeTypeFunction      NodeType = "Function"
	NodeTypeCountAll      NodeType = "CountAll"
	NodeTypeCast          NodeType = "Cast"
	NodeTypeCase          NodeType = "Case"
	NodeTypeCollate       NodeType = "Collate"
	NodeTypeAs            NodeType = "As"
	NodeTypeColumns       NodeType = "Columns"
	NodeTypeSelect        NodeType = "Select"
	NodeTypeCompound      NodeType = "Compound"
	NodeTypeWhere         NodeType = "Where"
	NodeTypeHaving        NodeType = "Having"
	NodeTypeOrderBy       NodeType = "OrderBy"
	NodeTypeGroupBy       NodeType = "GroupBy"
	NodeTypeLimit         NodeType = "Limit"
	NodeTypeJoin          NodeType = "Join"
	NodeTypeUpdateAll     NodeType = "UpdateAll"
	NodeTypeDeleteAll     NodeType = "DeleteAll"
)

// Visitor has one method per node kind.
type Visitor interface {
	VisitColumn(*Column) error
	VisitAliasedColumn(*AliasedColumn) error
	VisitRowID(*RowID) error
	VisitLiteral(*Literal) error
	VisitAsterisk(*Asterisk) error
	VisitAliasRef(*AliasRef) error
	VisitBinary(*Binary) error
	VisitNot(*Not) error
	VisitIsNull(*IsNull) error
	VisitIn(*In) error
	VisitLike(*Like) error
	VisitBetween(*Between) error
	VisitExists(*Exists) error
	VisitFunction(*Function) error
	VisitCountAll(*CountAll) error
	VisitCast(*Cast) error
	VisitCase(*Case) error
	VisitCollate(*Collate) error
	VisitAs(*As) error
	VisitColumns(*Columns) error
	VisitSelect(*Select) error
	VisitCompound(*Compound) error
	VisitWhere(*Where) error
	VisitHaving(*Having) error
	VisitOrderBy(*OrderBy) error
	VisitGroupBy(*GroupBy) error
	VisitLimit(*Limit) error
	VisitJoin(*Join) error
	VisitUpdateAll(*UpdateAll) error
	VisitDeleteAll(*DeleteAll) error
}

// Maybe is an optional sub-expression.
type Maybe struct {
	node Node
}

// Some wraps n. Some(nil) is equivalent to None().
func Some(n Node) Maybe { return Maybe{node: n} }

// None is the absent sub-expression.
func None() Maybe { return Maybe{} }

// Get returns the wrapped node and whether it is present.
func (m Maybe) Get() (Node, bool) { return m.node, m.node != nil }

// Present reports whether a node is wrapped.
func (m Maybe) Present() bool { return m.node != nil }

// Column references a declared column by table id and column name.
type Column struct {
	Table schema.TableID
	Field string
}

// AliasedColumn references a column through a table alias.
type AliasedColumn struct {
	Alias string
	Table schema.TableID
	Field string
}

// RowID is rowid, oid or _rowid_, optionally qualified by a table.
type RowID struct {
	Name  string // rowid, oid, _rowid_
	Table schema.TableID
}

// Literal is a bound value. It always renders as a placeholder.
type Literal struct {
	Value any
}

// Asterisk is * over a table.
type Asterisk struct {
	Table schema.TableID
}

// AliasRef references a projection alias introduced by As.
type AliasRef struct {
	Alias string
}

func (*Column) Type() NodeType        { return NodeTypeColumn }
func (*AliasedColumn) Type() NodeType { return NodeTypeAliasedColumn }
func (*RowID) Type() NodeType         { return NodeTypeRowID }
func (*Literal) Type() NodeType       { return NodeTypeLiteral }
func (*Asterisk) Type() NodeType      { return NodeTypeAsterisk }
func (*AliasRef) Type() NodeType      { return NodeTypeAliasRef }

func (n *Column) Accept(v Visitor) error        { return v.VisitColumn(n) }
func (n *AliasedColumn) Accept(v Visitor) error { return v.VisitAliasedColumn(n) }
func (n *RowID) Accept(v Visitor) error         { return v.VisitRowID(n) }
func (n *Literal) Accept(v Visitor) error       { return v.VisitLiteral(n) }
func (n *Asterisk) Accept(v Visitor) error      { return v.VisitAsterisk(n) }
func (n *AliasRef) Accept(v Visitor) error      { return v.VisitAliasRef(n) }

func (*Column) sealed()        {}
func (*AliasedColumn) sealed() {}
func (*RowID) sealed()         {}
func (*Literal) sealed()       {}
func (*Asterisk) sealed()      {}
func (*AliasRef) sealed()      {}
