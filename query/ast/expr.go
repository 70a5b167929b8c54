package ast

import "github.com/satishbabariya/sqlorm/schema"

// BinaryOperator is the token of a binary node.
type BinaryOperator string

const (
	OpAdd    BinaryOperator = "+"
	OpSub    BinaryOperator = "-"
	OpMul    BinaryOperator = "*"
	OpDiv    BinaryOperator = "/"
	OpMod    BinaryOperator = "%"
	OpConcat BinaryOperator = "||"

	OpEq BinaryOperator = "="
	OpNe BinaryOperator = "!="
	OpLt BinaryOperator = "<"
	OpLe BinaryOperator = "<="
	OpGt BinaryOperator = ">"
	OpGe BinaryOperator = ">="

	OpAnd BinaryOperator = "AND"
	OpOr  BinaryOperator = "OR"
)

// IsArithmetic reports whether op is arithmetic or concatenation.
func (op BinaryOperator) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpConcat:
		return true
	}
	return false
}

// IsLogical reports whether op is AND or OR.
func (op BinaryOperator) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// Binary is an arithmetic, concatenation, comparison or boolean operator.
type Binary struct {
	Op    BinaryOperator
	Left  Node
	Right Node
}

// Not negates a condition.
type Not struct {
	Expr Node
}

// IsNull is x IS NULL or x IS NOT NULL.
type IsNull struct {
	Expr    Node
	Negated bool
}

// In tests membership in a value list or, when Query is present, a subquery.
type In struct {
	Left    Node
	Values  []Node
	Query   Maybe
	Negated bool
}

// Like is LIKE or, with Glob set, GLOB.
type Like struct {
	Expr    Node
	Pattern Node
	Glob    bool
}

// Between is x BETWEEN low AND high.
type Between struct {
	Expr Node
	Low  Node
	High Node
}

// Exists wraps a subquery.
type Exists struct {
	Query Node
}

// Function is a scalar or aggregate call, e.g. LENGTH(x), SUM(x),
// GROUP_CONCAT(x, sep), DISTINCT(x).
type Function struct {
	Name string
	Args []Node
}

// CountAll is COUNT(*). A non-empty Table adds that table to FROM.
type CountAll struct {
	Table schema.TableID
}

// Cast is CAST(x AS type).
type Cast struct {
	Expr    Node
	SQLType string
}

// When is one WHEN/THEN arm of a Case.
type When struct {
	Cond   Node
	Result Node
}

// Case is CASE [operand] WHEN .. THEN .. [ELSE ..] END.
type Case struct {
	Operand Maybe
	Whens   []When
	Else    Maybe
}

// Collate is x COLLATE name.
type Collate struct {
	Expr Node
	Name string
}

// As introduces a projection alias: x AS alias.
type As struct {
	Expr  Node
	Alias string
}

func (*Binary) Type() NodeType   { return NodeTypeBinary }
func (*Not) Type() NodeType      { return NodeTypeNot }
func (*IsNull) Type() NodeType   { return NodeTypeIsNull }
func (*In) Type() NodeType       { return NodeTypeIn }
func (*Like) Type() NodeType     { return NodeTypeLike }
func (*Between) Type() NodeType  { return NodeTypeBetween }
func (*Exists) Type() NodeType   { return NodeTypeExists }
func (*Function) Type() NodeType { return NodeTypeFunction }
func (*CountAll) Type() NodeType { return NodeTypeCountAll }
func (*Cast) Type() NodeType     { return NodeTypeCast }
func (*Case) Type() NodeType     { return NodeTypeCase }
func (*Collate) Type() NodeType  { return NodeTypeCollate }
func (*As) Type() NodeType       { return NodeTypeAs }

func (n *Binary) Accept(v Visitor) error   { return v.VisitBinary(n) }
func (n *Not) Accept(v Visitor) error      { return v.VisitNot(n) }
func (n *IsNull) Accept(v Visitor) error   { return v.VisitIsNull(n) }
func (n *In) Accept(v Visitor) error       { return v.VisitIn(n) }
func (n *Like) Accept(v Visitor) error     { return v.VisitLike(n) }
func (n *Between) Accept(v Visitor) error  { return v.VisitBetween(n) }
func (n *Exists) Accept(v Visitor) error   { return v.VisitExists(n) }
func (n *Function) Accept(v Visitor) error { return v.VisitFunction(n) }
func (n *CountAll) Accept(v Visitor) error { return v.VisitCountAll(n) }
func (n *Cast) Accept(v Visitor) error     { return v.VisitCast(n) }
func (n *Case) Accept(v Visitor) error     { return v.VisitCase(n) }
func (n *Collate) Accept(v Visitor) error  { return v.VisitCollate(n) }
func (n *As) Accept(v Visitor) error       { return v.VisitAs(n) }

func (*Binary) sealed()   {}
func (*Not) sealed()      {}
func (*IsNull) sealed()   {}
func (*In) sealed()       {}
func (*Like) sealed()     {}
func (*Between) sealed()  {}
func (*Exists) sealed()   {}
func (*Function) sealed() {}
func (*CountAll) sealed() {}
func (*Cast) sealed()     {}
func (*Case) sealed()     {}
func (*Collate) sealed()  {}
func (*As) sealed()       {}
