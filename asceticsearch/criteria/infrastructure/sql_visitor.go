package criteria

import (
	"fmt"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/operators"
	q "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

// CompilePredicate renders a predicate alone, numbering placeholders from 1.
func CompilePredicate(dialect Dialect, exp q.Predicate) (sql string, params []any, err error) {
	v := NewSqlVisitor(dialect, newArguments(dialect))
	err = exp.Accept(v)
	if err != nil {
		return "", nil, err
	}
	return v.Result()
}

func NewSqlVisitor(dialect Dialect, args *arguments) *SqlVisitor {
	v := &SqlVisitor{
		dialect:           dialect,
		args:              args,
		precedenceMapping: make(map[string]int),
	}
	// https://www.postgresql.org/docs/14/sql-syntax-lexical.html#SQL-PRECEDENCE-TABLE
	v.setPrecedence(160, ". LEFT")
	v.setPrecedence(160, ":: LEFT")
	v.setPrecedence(150, "[ LEFT")
	v.setPrecedence(140, "+ RIGHT", "- RIGHT")
	v.setPrecedence(130, "^ LEFT")
	v.setPrecedence(120, "* LEFT", "/ LEFT", "% LEFT")
	v.setPrecedence(110, "+ LEFT", "- LEFT")
	// all other native and user-defined operators 👇️
	v.setPrecedence(100, "(any other operator) LEFT")
	v.setPrecedence(90, "BETWEEN NON", "IN NON", "NOT IN NON", "LIKE NON", "NOT LIKE NON")
	v.setPrecedence(80, "< NON", "> NON", "= NON", "<= NON", ">= NON", "!= NON")
	v.setPrecedence(70, "IS NON", "IS NULL NON", "IS NOT NULL NON")
	v.setPrecedence(60, "NOT RIGHT")
	v.setPrecedence(50, "AND LEFT")
	v.setPrecedence(40, "OR LEFT")
	return v
}

// SqlVisitor renders the predicate AST into a SQL boolean expression.
// Parentheses are emitted only where operator precedence requires them.
type SqlVisitor struct {
	sql               string
	dialect           Dialect
	args              *arguments
	precedence        int
	precedenceMapping map[string]int
}

func (v SqlVisitor) getNodePrecedenceKey(n q.Operable) string {
	return fmt.Sprintf("%s %s", n.Operator(), n.Associativity())
}

func (v SqlVisitor) setPrecedence(precedence int, operators ...string) {
	for _, op := range operators {
		v.precedenceMapping[op] = precedence
	}
}

func (v *SqlVisitor) visit(precedenceKey string, callable func() error) error {
	outerPrecedence := v.precedence
	innerPrecedence, ok := v.precedenceMapping[precedenceKey]
	if !ok {
		innerPrecedence, ok = v.precedenceMapping["(any other operator) LEFT"]
		if !ok {
			innerPrecedence = outerPrecedence
		}
	}
	v.precedence = innerPrecedence
	if innerPrecedence < outerPrecedence {
		v.sql += "("
	}
	err := callable()
	if err != nil {
		return err
	}
	if innerPrecedence < outerPrecedence {
		v.sql += ")"
	}
	v.precedence = outerPrecedence
	return nil
}

func (v *SqlVisitor) VisitField(n q.Field) error {
	v.sql += column(v.dialect, n)
	return nil
}

func (v *SqlVisitor) VisitValue(n q.ValueNode) error {
	v.sql += v.args.add(n.Value())
	return nil
}

func (v *SqlVisitor) VisitInfix(n q.InfixNode) error {
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Left().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s ", n.Operator())
		return n.Right().Accept(v)
	})
}

func (v *SqlVisitor) VisitPostfix(n q.PostfixNode) error {
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Operand().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s", n.Operator())
		return nil
	})
}

func (v *SqlVisitor) VisitBetween(n q.BetweenNode) error {
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Operand().Accept(v)
		if err != nil {
			return err
		}
		v.sql += " BETWEEN "
		if err = n.Low().Accept(v); err != nil {
			return err
		}
		v.sql += " AND "
		return n.High().Accept(v)
	})
}

func (v *SqlVisitor) VisitIn(n q.InNode) error {
	if len(n.Values()) == 0 {
		return fmt.Errorf("%s requires at least one value", n.Operator())
	}
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Operand().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s (", n.Operator())
		for i, value := range n.Values() {
			if i > 0 {
				v.sql += ", "
			}
			if err = value.Accept(v); err != nil {
				return err
			}
		}
		v.sql += ")"
		return nil
	})
}

func (v *SqlVisitor) VisitLike(n q.LikeNode) error {
	precedenceKey := v.getNodePrecedenceKey(n)
	negated := n.Operator() == operators.OperatorNotLike
	return v.visit(precedenceKey, func() error {
		switch {
		case !n.CaseInsensitive():
			return v.exactLike(n, negated)
		case v.dialect.nativeILike && !negated:
			return v.like(n, n.Pattern(), "ILIKE", "", "")
		case v.dialect.nativeILike:
			return v.like(n, n.Pattern(), "NOT ILIKE", "", "")
		default:
			return v.like(n, n.Pattern(), string(n.Operator()), "LOWER(", ")")
		}
	})
}

func (v *SqlVisitor) exactLike(n q.LikeNode, negated bool) error {
	not := ""
	if negated {
		not = "NOT "
	}
	switch v.dialect.exactLike {
	case LikeGlob:
		pattern, ok := n.Pattern().Value().(string)
		if !ok {
			return fmt.Errorf("GLOB pattern must be a string, got %T", n.Pattern().Value())
		}
		return v.like(n, q.Value(globPattern(pattern)), not+"GLOB", "", "")
	case LikeBinary:
		return v.like(n, n.Pattern(), not+"LIKE BINARY", "", "")
	default:
		return v.like(n, n.Pattern(), string(n.Operator()), "", "")
	}
}

func (v *SqlVisitor) like(n q.LikeNode, pattern q.ValueNode, operator, open, close string) error {
	v.sql += open
	if err := n.Operand().Accept(v); err != nil {
		return err
	}
	v.sql += close + " " + operator + " " + open
	if err := pattern.Accept(v); err != nil {
		return err
	}
	v.sql += close
	return nil
}

func (v SqlVisitor) Result() (sql string, params []any, err error) {
	return v.sql, v.args.values, nil
}

func column(d Dialect, f q.Field) string {
	return f.Node().Alias() + "." + d.Quote(f.Attribute().Column)
}
