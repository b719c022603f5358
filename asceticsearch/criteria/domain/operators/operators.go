package operators

// Operator is a SQL-level token of the predicate AST. Renderers use it together with
// the node associativity as the precedence key.
type Operator string

const (
	// Comparison

	OperatorEq  Operator = "="
	OperatorGt  Operator = ">"
	OperatorLt  Operator = "<"
	OperatorGte Operator = ">="
	OperatorLte Operator = "<="
	OperatorNe  Operator = "!="

	// Logical operators

	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"

	// Pattern, membership and range

	OperatorLike    Operator = "LIKE"
	OperatorNotLike Operator = "NOT LIKE"
	OperatorIn      Operator = "IN"
	OperatorNotIn   Operator = "NOT IN"
	OperatorBetween Operator = "BETWEEN"

	// Postfix

	OperatorIsNull    Operator = "IS NULL"
	OperatorIsNotNull Operator = "IS NOT NULL"
)
