package criteria

type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Node is a condition tree node: either a Group or a Leaf.
type Node interface {
	Accept(Visitor) error
}

type Visitor interface {
	VisitGroup(GroupNode) error
	VisitLeaf(LeafNode) error
}

func And(children ...Node) GroupNode {
	return Group(LogicalAnd, children...)
}

func Or(children ...Node) GroupNode {
	return Group(LogicalOr, children...)
}

func Group(operator LogicalOperator, children ...Node) GroupNode {
	return GroupNode{
		operator: operator,
		children: append([]Node(nil), children...),
	}
}

type GroupNode struct {
	operator LogicalOperator
	children []Node
}

func (n GroupNode) Operator() LogicalOperator {
	return n.operator
}

// Children returns a copy; the tree itself is never mutated.
func (n GroupNode) Children() []Node {
	return append([]Node(nil), n.children...)
}

func (n GroupNode) Accept(v Visitor) error {
	return v.VisitGroup(n)
}

func Leaf(path string, operator Operator, operands ...any) LeafNode {
	return LeafNode{
		path:     path,
		operator: operator,
		operands: append([]any(nil), operands...),
	}
}

type LeafNode struct {
	path     string
	operator Operator
	operands []any
}

func (n LeafNode) Path() string {
	return n.path
}

func (n LeafNode) Operator() Operator {
	return n.operator
}

func (n LeafNode) Operands() []any {
	return append([]any(nil), n.operands...)
}

func (n LeafNode) Accept(v Visitor) error {
	return v.VisitLeaf(n)
}

// Shorthands for the common leaves.

func Equals(path string, value any) LeafNode {
	return Leaf(path, OperatorEquals, value)
}

func NotEquals(path string, value any) LeafNode {
	return Leaf(path, OperatorNotEquals, value)
}

func GreaterThan(path string, value any) LeafNode {
	return Leaf(path, OperatorGreaterThan, value)
}

func LessThan(path string, value any) LeafNode {
	return Leaf(path, OperatorLessThan, value)
}

func GreaterOrEqual(path string, value any) LeafNode {
	return Leaf(path, OperatorGreaterOrEqual, value)
}

func LessOrEqual(path string, value any) LeafNode {
	return Leaf(path, OperatorLessOrEqual, value)
}

func Contains(path string, value string) LeafNode {
	return Leaf(path, OperatorContains, value)
}

func StartsWith(path string, value string) LeafNode {
	return Leaf(path, OperatorStartsWith, value)
}

func EndsWith(path string, value string) LeafNode {
	return Leaf(path, OperatorEndsWith, value)
}

func In(path string, values ...any) LeafNode {
	return Leaf(path, OperatorIn, values...)
}

func NotIn(path string, values ...any) LeafNode {
	return Leaf(path, OperatorNotIn, values...)
}

func Between(path string, low, high any) LeafNode {
	return Leaf(path, OperatorBetween, low, high)
}

func IsNull(path string) LeafNode {
	return Leaf(path, OperatorIsNull)
}

func IsNotNull(path string) LeafNode {
	return Leaf(path, OperatorIsNotNull)
}
