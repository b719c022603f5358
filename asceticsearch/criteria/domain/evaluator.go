package criteria

import (
	"fmt"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/operators"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

type EvaluatorOption func(*Evaluator)

// CaseSensitive controls pattern operators (LIKE, CONTAINS, STARTS_WITH, ENDS_WITH).
func CaseSensitive(enabled bool) EvaluatorOption {
	return func(e *Evaluator) {
		e.caseSensitive = enabled
	}
}

// Evaluator turns one leaf into one predicate. It is stateless and may be shared.
type Evaluator struct {
	caseSensitive bool
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for i := range opts {
		opts[i](e)
	}
	return e
}

// Build validates arity and operand types and returns the predicate.
func (e *Evaluator) Build(field query.Field, operator Operator, operands []any) (query.Predicate, error) {
	if !operator.Valid() {
		return nil, &ConditionError{Path: field.Path(), Operator: operator, Err: ErrInvalidCondition, Reason: "unknown operator"}
	}
	arity := operator.Arity()
	if !arity.Accepts(len(operands)) {
		return nil, &ConditionError{
			Path:     field.Path(),
			Operator: operator,
			Err:      ErrArityMismatch,
			Reason:   fmt.Sprintf("expects %s, got %d", arity, len(operands)),
		}
	}

	switch arity {
	case Nullary:
		return e.buildNullary(field, operator), nil
	case Unary:
		values, err := e.coerce(field, operator, operands)
		if err != nil {
			return nil, err
		}
		return e.buildUnary(field, operator, values[0]), nil
	case Binary:
		values, err := e.coerce(field, operator, operands)
		if err != nil {
			return nil, err
		}
		return e.buildBinary(field, values[0], values[1]), nil
	case Variadic:
		values, err := e.coerce(field, operator, operands)
		if err != nil {
			return nil, err
		}
		return e.buildVariadic(field, operator, values), nil
	}
	panic(fmt.Sprintf("criteria: unhandled arity %v of %s", arity, operator))
}

// coerce checks the field kind against the operator value class and converts
// every operand into the field representation.
func (e *Evaluator) coerce(field query.Field, operator Operator, operands []any) ([]query.ValueNode, error) {
	kind := field.Attribute().Kind
	mismatch := func(reason string) error {
		return &ConditionError{Path: field.Path(), Operator: operator, Err: ErrTypeMismatch, Reason: reason}
	}
	switch operator.ValueClass() {
	case ClassOrdered:
		if !kind.Ordered() {
			return nil, mismatch(fmt.Sprintf("%s field is not ordered", kind))
		}
	case ClassString:
		if kind != metadata.KindString {
			return nil, mismatch(fmt.Sprintf("%s field is not a string", kind))
		}
	}
	values := make([]query.ValueNode, 0, len(operands))
	for i, operand := range operands {
		if operand == nil {
			return nil, mismatch(fmt.Sprintf("operand %d is null, use %s", i, OperatorIsNull))
		}
		v, err := kind.Coerce(operand)
		if err != nil {
			return nil, mismatch(fmt.Sprintf("operand %d: %v", i, err))
		}
		values = append(values, query.Value(v))
	}
	return values, nil
}

func (e *Evaluator) buildNullary(field query.Field, operator Operator) query.Predicate {
	switch operator {
	case OperatorIsNull:
		return query.IsNull(field)
	case OperatorIsNotNull:
		return query.IsNotNull(field)
	}
	panic(fmt.Sprintf("criteria: %s is not nullary", operator))
}

func (e *Evaluator) buildUnary(field query.Field, operator Operator, value query.ValueNode) query.Predicate {
	switch operator {
	case OperatorEquals:
		return query.Compare(field, operators.OperatorEq, value)
	case OperatorNotEquals:
		return query.Compare(field, operators.OperatorNe, value)
	case OperatorGreaterThan:
		return query.Compare(field, operators.OperatorGt, value)
	case OperatorLessThan:
		return query.Compare(field, operators.OperatorLt, value)
	case OperatorGreaterOrEqual:
		return query.Compare(field, operators.OperatorGte, value)
	case OperatorLessOrEqual:
		return query.Compare(field, operators.OperatorLte, value)
	case OperatorLike:
		return query.Like(field, value, !e.caseSensitive)
	case OperatorNotLike:
		return query.NotLike(field, value, !e.caseSensitive)
	case OperatorContains:
		return query.Like(field, query.Value(Pattern(operator, value.Value().(string))), !e.caseSensitive)
	case OperatorStartsWith:
		return query.Like(field, query.Value(Pattern(operator, value.Value().(string))), !e.caseSensitive)
	case OperatorEndsWith:
		return query.Like(field, query.Value(Pattern(operator, value.Value().(string))), !e.caseSensitive)
	}
	panic(fmt.Sprintf("criteria: %s is not unary", operator))
}

func (e *Evaluator) buildBinary(field query.Field, low, high query.ValueNode) query.Predicate {
	return query.Between(field, low, high)
}

func (e *Evaluator) buildVariadic(field query.Field, operator Operator, values []query.ValueNode) query.Predicate {
	switch operator {
	case OperatorIn:
		return query.In(field, values...)
	case OperatorNotIn:
		return query.NotIn(field, values...)
	}
	panic(fmt.Sprintf("criteria: %s is not variadic", operator))
}

// Pattern anchors a literal operand for the pattern operators. Wildcard
// characters inside value are kept and stay significant.
func Pattern(operator Operator, value string) string {
	switch operator {
	case OperatorContains:
		return "%" + value + "%"
	case OperatorStartsWith:
		return value + "%"
	case OperatorEndsWith:
		return "%" + value
	}
	return value
}
