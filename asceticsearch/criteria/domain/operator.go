package criteria

import "fmt"

// Operator is a condition operator of a Leaf.
type Operator string

const (
	OperatorEquals         Operator = "EQUALS"
	OperatorNotEquals      Operator = "NOT_EQUALS"
	OperatorGreaterThan    Operator = "GREATER_THAN"
	OperatorLessThan       Operator = "LESS_THAN"
	OperatorGreaterOrEqual Operator = "GREATER_OR_EQUAL"
	OperatorLessOrEqual    Operator = "LESS_OR_EQUAL"
	OperatorLike           Operator = "LIKE"
	OperatorNotLike        Operator = "NOT_LIKE"
	OperatorContains       Operator = "CONTAINS"
	OperatorStartsWith     Operator = "STARTS_WITH"
	OperatorEndsWith       Operator = "ENDS_WITH"
	OperatorIn             Operator = "IN"
	OperatorNotIn          Operator = "NOT_IN"
	OperatorBetween        Operator = "BETWEEN"
	OperatorIsNull         Operator = "IS_NULL"
	OperatorIsNotNull      Operator = "IS_NOT_NULL"
)

// Arity classifies operators by the operand count they take.
type Arity int

const (
	Nullary  Arity = iota // no operands
	Unary                 // exactly one operand
	Binary                // exactly two operands
	Variadic              // one or more operands
)

func (a Arity) String() string {
	switch a {
	case Nullary:
		return "no operands"
	case Unary:
		return "exactly 1 operand"
	case Binary:
		return "exactly 2 operands"
	case Variadic:
		return "at least 1 operand"
	}
	return fmt.Sprintf("Arity(%d)", int(a))
}

// Accepts reports whether n operands satisfy the arity.
// Nullary operators ignore whatever operands they are given.
func (a Arity) Accepts(n int) bool {
	switch a {
	case Nullary:
		return true
	case Unary:
		return n == 1
	case Binary:
		return n == 2
	case Variadic:
		return n >= 1
	}
	return false
}

// ValueClass is the operand type class an operator requires.
type ValueClass int

const (
	ClassNone       ValueClass = iota
	ClassComparable            // any scalar kind
	ClassOrdered               // kinds with a total order
	ClassString                // string kind only
)

type signature struct {
	arity Arity
	class ValueClass
}

var signatures = map[Operator]signature{
	OperatorEquals:         {Unary, ClassComparable},
	OperatorNotEquals:      {Unary, ClassComparable},
	OperatorGreaterThan:    {Unary, ClassOrdered},
	OperatorLessThan:       {Unary, ClassOrdered},
	OperatorGreaterOrEqual: {Unary, ClassOrdered},
	OperatorLessOrEqual:    {Unary, ClassOrdered},
	OperatorLike:           {Unary, ClassString},
	OperatorNotLike:        {Unary, ClassString},
	OperatorContains:       {Unary, ClassString},
	OperatorStartsWith:     {Unary, ClassString},
	OperatorEndsWith:       {Unary, ClassString},
	OperatorIn:             {Variadic, ClassComparable},
	OperatorNotIn:          {Variadic, ClassComparable},
	OperatorBetween:        {Binary, ClassOrdered},
	OperatorIsNull:         {Nullary, ClassNone},
	OperatorIsNotNull:      {Nullary, ClassNone},
}

// ParseOperator returns the operator with the given wire name.
func ParseOperator(name string) (Operator, error) {
	op := Operator(name)
	if !op.Valid() {
		return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, name)
	}
	return op, nil
}

func (o Operator) Valid() bool {
	_, ok := signatures[o]
	return ok
}

func (o Operator) Arity() Arity {
	return signatures[o].arity
}

func (o Operator) ValueClass() ValueClass {
	return signatures[o].class
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	return []Operator{
		OperatorEquals, OperatorNotEquals,
		OperatorGreaterThan, OperatorLessThan, OperatorGreaterOrEqual, OperatorLessOrEqual,
		OperatorLike, OperatorNotLike, OperatorContains, OperatorStartsWith, OperatorEndsWith,
		OperatorIn, OperatorNotIn,
		OperatorBetween,
		OperatorIsNull, OperatorIsNotNull,
	}
}
