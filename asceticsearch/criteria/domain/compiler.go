package criteria

import (
	"fmt"
	"math"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

// CompiledQuery is the result of one compilation. Where is nil when every row matches.
type CompiledQuery struct {
	Graph *query.Graph
	Where query.Predicate
	Order []query.Order
	Page  Pageable
}

// Root returns the root node of the join graph.
func (q *CompiledQuery) Root() *query.Node {
	return q.Graph.Root()
}

type Compiler struct {
	registry  *metadata.Registry
	evaluator *Evaluator
}

func NewCompiler(registry *metadata.Registry, evaluator *Evaluator) *Compiler {
	if evaluator == nil {
		evaluator = NewEvaluator()
	}
	return &Compiler{
		registry:  registry,
		evaluator: evaluator,
	}
}

func (c *Compiler) Registry() *metadata.Registry {
	return c.registry
}

// Compile builds a fresh join graph bound to s, translates tree into one predicate
// and resolves the sort orders through the same graph.
func (c *Compiler) Compile(s Session, root *metadata.Entity, tree Node, pageable Pageable) (*CompiledQuery, error) {
	resolver, err := NewPathResolver(s, c.registry, root)
	if err != nil {
		return nil, err
	}
	if pageable.Number < 0 || pageable.Size < 0 {
		return nil, &ConditionError{Err: ErrInvalidCondition, Reason: fmt.Sprintf(
			"invalid page %d of size %d", pageable.Number, pageable.Size,
		)}
	}
	if pageable.Size > 0 && pageable.Number > math.MaxInt/pageable.Size {
		return nil, &ConditionError{Err: ErrInvalidCondition, Reason: fmt.Sprintf(
			"page %d of size %d is out of range", pageable.Number, pageable.Size,
		)}
	}

	result := &CompiledQuery{
		Graph: resolver.Graph(),
		Page:  pageable,
	}

	if tree != nil {
		v := &compileVisitor{resolver: resolver, evaluator: c.evaluator}
		if err := tree.Accept(v); err != nil {
			return nil, err
		}
		result.Where = v.result
	}

	for _, o := range pageable.Sort {
		field, err := resolver.Resolve(o.Path)
		if err != nil {
			return nil, err
		}
		if field.Node().ToMany() {
			return nil, invalidPath(o.Path, "cannot sort by a collection-valued path")
		}
		direction, ok := ParseDirection(string(o.Direction))
		if !ok {
			return nil, &ConditionError{Path: o.Path, Err: ErrInvalidCondition, Reason: fmt.Sprintf(
				"unknown sort direction %q", o.Direction,
			)}
		}
		result.Order = append(result.Order, query.Order{
			Field:      field,
			Descending: direction == Descending,
		})
	}
	return result, nil
}

type compileVisitor struct {
	resolver  *PathResolver
	evaluator *Evaluator
	result    query.Predicate
}

func (v *compileVisitor) VisitLeaf(n LeafNode) error {
	field, err := v.resolver.Resolve(n.Path())
	if err != nil {
		return err
	}
	p, err := v.evaluator.Build(field, n.Operator(), n.Operands())
	if err != nil {
		return err
	}
	v.result = p
	return nil
}

func (v *compileVisitor) VisitGroup(n GroupNode) error {
	children := n.Children()
	if len(children) == 0 {
		return &ConditionError{Err: ErrInvalidCondition, Reason: fmt.Sprintf("empty %s group", n.Operator())}
	}
	predicates := make([]query.Predicate, 0, len(children))
	for _, child := range children {
		if child == nil {
			return &ConditionError{Err: ErrInvalidCondition, Reason: "nil child in group"}
		}
		if err := child.Accept(v); err != nil {
			return err
		}
		predicates = append(predicates, v.result)
	}
	switch n.Operator() {
	case LogicalAnd:
		v.result = query.And(predicates[0], predicates[1:]...)
	case LogicalOr:
		v.result = query.Or(predicates[0], predicates[1:]...)
	default:
		return &ConditionError{Err: ErrInvalidCondition, Reason: fmt.Sprintf("unknown logical operator %q", n.Operator())}
	}
	return nil
}
