package query

import (
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/operators"
)

type Associativity string

const (
	LeftAssociative  Associativity = "LEFT"
	RightAssociative Associativity = "RIGHT"
	NonAssociative   Associativity = "NON"
)

type Operable interface {
	Associativity() Associativity
	Operator() operators.Operator
}

type Visitable interface {
	Accept(Visitor) error
}

// Predicate is a boolean-valued node.
type Predicate interface {
	Visitable
	predicate()
}

type Visitor interface {
	VisitField(Field) error
	VisitValue(ValueNode) error
	VisitInfix(InfixNode) error
	VisitPostfix(PostfixNode) error
	VisitBetween(BetweenNode) error
	VisitIn(InNode) error
	VisitLike(LikeNode) error
}

// Field is a handle to a scalar attribute of one graph node.
type Field struct {
	node      *Node
	attribute metadata.Attribute
}

func NewField(node *Node, attribute metadata.Attribute) Field {
	return Field{
		node:      node,
		attribute: attribute,
	}
}

func (f Field) Node() *Node {
	return f.node
}

func (f Field) Attribute() metadata.Attribute {
	return f.attribute
}

// Path returns the dotted path of the field relative to the root.
func (f Field) Path() string {
	if p := f.node.Path(); p != "" {
		return p + "." + f.attribute.Name
	}
	return f.attribute.Name
}

func (f Field) Accept(v Visitor) error {
	return v.VisitField(f)
}

func Value(value any) ValueNode {
	return ValueNode{
		value: value,
	}
}

type ValueNode struct {
	value any
}

func (n ValueNode) Value() any {
	return n.value
}

func (n ValueNode) Accept(v Visitor) error {
	return v.VisitValue(n)
}

func Compare(left Visitable, operator operators.Operator, right Visitable) InfixNode {
	return InfixNode{
		left:          left,
		operator:      operator,
		right:         right,
		associativity: NonAssociative,
	}
}

func Equal(left, right Visitable) InfixNode {
	return Compare(left, operators.OperatorEq, right)
}

func NotEqual(left, right Visitable) InfixNode {
	return Compare(left, operators.OperatorNe, right)
}

// And combines predicates conjunctively, keeping their order.
func And(left Predicate, rights ...Predicate) Predicate {
	return fold(operators.OperatorAnd, left, rights)
}

// Or combines predicates disjunctively, keeping their order.
func Or(left Predicate, rights ...Predicate) Predicate {
	return fold(operators.OperatorOr, left, rights)
}

func fold(operator operators.Operator, left Predicate, rights []Predicate) Predicate {
	for _, right := range rights {
		left = InfixNode{
			left:          left,
			operator:      operator,
			right:         right,
			associativity: LeftAssociative,
		}
	}
	return left
}

type InfixNode struct {
	left          Visitable
	operator      operators.Operator
	right         Visitable
	associativity Associativity
}

func (n InfixNode) Left() Visitable {
	return n.left
}

func (n InfixNode) Operator() operators.Operator {
	return n.operator
}

func (n InfixNode) Right() Visitable {
	return n.right
}

func (n InfixNode) Associativity() Associativity {
	return n.associativity
}

func (n InfixNode) Accept(v Visitor) error {
	return v.VisitInfix(n)
}

func (n InfixNode) predicate() {}

func IsNull(operand Visitable) PostfixNode {
	return PostfixNode{
		operand:       operand,
		operator:      operators.OperatorIsNull,
		associativity: NonAssociative,
	}
}

func IsNotNull(operand Visitable) PostfixNode {
	return PostfixNode{
		operand:       operand,
		operator:      operators.OperatorIsNotNull,
		associativity: NonAssociative,
	}
}

type PostfixNode struct {
	operand       Visitable
	operator      operators.Operator
	associativity Associativity
}

func (n PostfixNode) Operand() Visitable {
	return n.operand
}

func (n PostfixNode) Operator() operators.Operator {
	return n.operator
}

func (n PostfixNode) Associativity() Associativity {
	return n.associativity
}

func (n PostfixNode) Accept(v Visitor) error {
	return v.VisitPostfix(n)
}

func (n PostfixNode) predicate() {}

// Between is inclusive on both ends. Low > high never matches.
func Between(operand Visitable, low, high ValueNode) BetweenNode {
	return BetweenNode{
		operand: operand,
		low:     low,
		high:    high,
	}
}

type BetweenNode struct {
	operand Visitable
	low     ValueNode
	high    ValueNode
}

func (n BetweenNode) Operand() Visitable {
	return n.operand
}

func (n BetweenNode) Low() ValueNode {
	return n.low
}

func (n BetweenNode) High() ValueNode {
	return n.high
}

func (n BetweenNode) Operator() operators.Operator {
	return operators.OperatorBetween
}

func (n BetweenNode) Associativity() Associativity {
	return NonAssociative
}

func (n BetweenNode) Accept(v Visitor) error {
	return v.VisitBetween(n)
}

func (n BetweenNode) predicate() {}

func In(operand Visitable, values ...ValueNode) InNode {
	return InNode{
		operand:  operand,
		operator: operators.OperatorIn,
		values:   values,
	}
}

func NotIn(operand Visitable, values ...ValueNode) InNode {
	return InNode{
		operand:  operand,
		operator: operators.OperatorNotIn,
		values:   values,
	}
}

type InNode struct {
	operand  Visitable
	operator operators.Operator
	values   []ValueNode
}

func (n InNode) Operand() Visitable {
	return n.operand
}

func (n InNode) Values() []ValueNode {
	return n.values
}

func (n InNode) Operator() operators.Operator {
	return n.operator
}

func (n InNode) Associativity() Associativity {
	return NonAssociative
}

func (n InNode) Accept(v Visitor) error {
	return v.VisitIn(n)
}

func (n InNode) predicate() {}

func Like(operand Visitable, pattern ValueNode, caseInsensitive bool) LikeNode {
	return LikeNode{
		operand:         operand,
		operator:        operators.OperatorLike,
		pattern:         pattern,
		caseInsensitive: caseInsensitive,
	}
}

func NotLike(operand Visitable, pattern ValueNode, caseInsensitive bool) LikeNode {
	return LikeNode{
		operand:         operand,
		operator:        operators.OperatorNotLike,
		pattern:         pattern,
		caseInsensitive: caseInsensitive,
	}
}

type LikeNode struct {
	operand         Visitable
	operator        operators.Operator
	pattern         ValueNode
	caseInsensitive bool
}

func (n LikeNode) Operand() Visitable {
	return n.operand
}

func (n LikeNode) Pattern() ValueNode {
	return n.pattern
}

func (n LikeNode) CaseInsensitive() bool {
	return n.caseInsensitive
}

func (n LikeNode) Operator() operators.Operator {
	return n.operator
}

func (n LikeNode) Associativity() Associativity {
	return NonAssociative
}

func (n LikeNode) Accept(v Visitor) error {
	return v.VisitLike(n)
}

func (n LikeNode) predicate() {}

// Order is a sort directive over a resolved field.
type Order struct {
	Field      Field
	Descending bool
}
