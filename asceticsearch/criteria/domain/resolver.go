package criteria

import (
	"strings"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

// Session is the part of the execution session the compiler depends on.
type Session interface {
	IsOpen() bool
}

// PathResolver maps dotted field paths onto the join graph of one compilation.
// It must not be shared between compilations.
type PathResolver struct {
	registry *metadata.Registry
	graph    *query.Graph
}

func NewPathResolver(s Session, registry *metadata.Registry, root *metadata.Entity) (*PathResolver, error) {
	if s == nil || !s.IsOpen() {
		return nil, ErrSessionNotOpen
	}
	return &PathResolver{
		registry: registry,
		graph:    query.NewGraph(root),
	}, nil
}

func (r *PathResolver) Graph() *query.Graph {
	return r.graph
}

// Resolve walks every segment but the last as a relationship, reusing joins
// created by earlier resolutions, and returns the terminal attribute.
func (r *PathResolver) Resolve(path string) (query.Field, error) {
	if strings.TrimSpace(path) == "" {
		return query.Field{}, invalidPath(path, "path is blank")
	}
	segments := strings.Split(path, ".")
	node := r.graph.Root()
	for _, name := range segments[:len(segments)-1] {
		if name == "" {
			return query.Field{}, invalidPath(path, "empty path segment")
		}
		if next, found := r.graph.Lookup(node, name); found {
			node = next
			continue
		}
		rel, found := node.Entity().Relationship(name)
		if !found {
			return query.Field{}, invalidPath(path, "no relationship \""+name+"\" on "+node.Entity().Name())
		}
		target, found := r.registry.Entity(rel.Target)
		if !found {
			return query.Field{}, invalidPath(path, "unknown entity \""+rel.Target+"\"")
		}
		next, err := r.graph.Join(node, rel, target)
		if err != nil {
			return query.Field{}, invalidPath(path, err.Error())
		}
		node = next
	}
	name := segments[len(segments)-1]
	attr, found := node.Entity().Attribute(name)
	if !found {
		return query.Field{}, invalidPath(path, "no attribute \""+name+"\" on "+node.Entity().Name())
	}
	return query.NewField(node, attr), nil
}
