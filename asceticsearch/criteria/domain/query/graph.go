package query

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
)

type JoinType string

const (
	// LeftOuterJoin keeps root rows whose related row is missing.
	LeftOuterJoin JoinType = "LEFT JOIN"
)

// Node is the root or one join of a Graph.
type Node struct {
	id           int
	parent       *Node
	entity       *metadata.Entity
	relationship metadata.Relationship
	joinType     JoinType
	alias        string
}

func (n *Node) ID() int {
	return n.id
}

// Parent returns nil for the root node.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

func (n *Node) Entity() *metadata.Entity {
	return n.entity
}

// Relationship returns the association traversed from the parent; zero for the root.
func (n *Node) Relationship() metadata.Relationship {
	return n.relationship
}

func (n *Node) JoinType() JoinType {
	return n.joinType
}

func (n *Node) Alias() string {
	return n.alias
}

// ToMany reports whether any association on the way from the root is collection-valued.
func (n *Node) ToMany() bool {
	for c := n; c.parent != nil; c = c.parent {
		if c.relationship.ToMany {
			return true
		}
	}
	return false
}

// Path returns the dotted relationship path from the root, empty for the root.
func (n *Node) Path() string {
	var parts []string
	for c := n; c.parent != nil; c = c.parent {
		parts = append([]string{c.relationship.Name}, parts...) // prepend
	}
	return strings.Join(parts, ".")
}

type edge struct {
	parent       int
	relationship string
}

// Graph is an arena of join nodes owned by one compilation.
// At most one node exists per (parent, relationship) pair.
type Graph struct {
	nodes []*Node
	index map[edge]*Node
}

func NewGraph(root *metadata.Entity) *Graph {
	g := &Graph{
		index: make(map[edge]*Node),
	}
	g.nodes = append(g.nodes, &Node{
		id:     0,
		entity: root,
		alias:  makeAlias(root.Name(), 0),
	})
	return g
}

func (g *Graph) Root() *Node {
	return g.nodes[0]
}

// Joins returns the join nodes in creation order; a parent always precedes its children.
func (g *Graph) Joins() []*Node {
	result := make([]*Node, len(g.nodes)-1)
	copy(result, g.nodes[1:])
	return result
}

// Len returns the number of join nodes, root excluded.
func (g *Graph) Len() int {
	return len(g.nodes) - 1
}

// HasToMany reports whether any join traverses a collection-valued association.
func (g *Graph) HasToMany() bool {
	for _, n := range g.nodes[1:] {
		if n.relationship.ToMany {
			return true
		}
	}
	return false
}

// Lookup returns the existing join of parent over the named relationship.
func (g *Graph) Lookup(parent *Node, relationship string) (*Node, bool) {
	n, ok := g.index[edge{parent: parent.id, relationship: relationship}]
	return n, ok
}

// Join returns the node reached from parent over rel, creating a left outer join on first use.
func (g *Graph) Join(parent *Node, rel metadata.Relationship, target *metadata.Entity) (*Node, error) {
	if parent == nil || parent.id >= len(g.nodes) || g.nodes[parent.id] != parent {
		return nil, fmt.Errorf("query: node does not belong to this graph")
	}
	key := edge{parent: parent.id, relationship: rel.Name}
	if n, found := g.index[key]; found {
		return n, nil
	}
	id := len(g.nodes)
	n := &Node{
		id:           id,
		parent:       parent,
		entity:       target,
		relationship: rel,
		joinType:     LeftOuterJoin,
		alias:        makeAlias(rel.Name, id),
	}
	g.nodes = append(g.nodes, n)
	g.index[key] = n
	return n, nil
}

// makeAlias e.g. "Posts", 0 -> "post_0"; "tags", 3 -> "tag_3"
func makeAlias(name string, id int) string {
	return fmt.Sprintf("%s_%d", inflection.Singular(strings.ToLower(name)), id)
}
