package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
)

func newRegistry(t *testing.T) *metadata.Registry {
	b := metadata.NewRegistryBuilder()
	b.Entity("Author", "authors", "id").
		Attribute("id", metadata.KindInt).
		Attribute("name", metadata.KindString)
	b.Entity("Post", "posts", "id").
		Attribute("id", metadata.KindInt).
		Attribute("title", metadata.KindString).
		ManyToOne("author", "Author", "author_id", "id").
		OneToMany("comments", "Comment", "id", "post_id")
	b.Entity("Comment", "comments", "id").
		Attribute("id", metadata.KindInt).
		ManyToOne("author", "Author", "author_id", "id")
	registry, err := b.Build()
	require.NoError(t, err)
	return registry
}

func entity(t *testing.T, r *metadata.Registry, name string) *metadata.Entity {
	e, ok := r.Entity(name)
	require.True(t, ok)
	return e
}

func relationship(t *testing.T, e *metadata.Entity, name string) metadata.Relationship {
	rel, ok := e.Relationship(name)
	require.True(t, ok)
	return rel
}

func TestGraph(t *testing.T) {
	registry := newRegistry(t)
	post := entity(t, registry, "Post")
	author := entity(t, registry, "Author")
	comment := entity(t, registry, "Comment")

	t.Run("root", func(t *testing.T) {
		g := NewGraph(post)
		assert.True(t, g.Root().IsRoot())
		assert.Equal(t, "post_0", g.Root().Alias())
		assert.Equal(t, "", g.Root().Path())
		assert.Equal(t, 0, g.Len())
		assert.False(t, g.HasToMany())
	})

	t.Run("join is deduplicated per parent and relationship", func(t *testing.T) {
		g := NewGraph(post)
		first, err := g.Join(g.Root(), relationship(t, post, "author"), author)
		require.NoError(t, err)
		second, err := g.Join(g.Root(), relationship(t, post, "author"), author)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, g.Len())
		assert.Equal(t, "author_1", first.Alias())
		assert.Equal(t, LeftOuterJoin, first.JoinType())
		assert.Same(t, g.Root(), first.Parent())

		found, ok := g.Lookup(g.Root(), "author")
		require.True(t, ok)
		assert.Same(t, first, found)
	})

	t.Run("same relationship under different parents makes distinct nodes", func(t *testing.T) {
		g := NewGraph(post)
		postAuthor, err := g.Join(g.Root(), relationship(t, post, "author"), author)
		require.NoError(t, err)
		comments, err := g.Join(g.Root(), relationship(t, post, "comments"), comment)
		require.NoError(t, err)
		commentAuthor, err := g.Join(comments, relationship(t, comment, "author"), author)
		require.NoError(t, err)

		assert.NotSame(t, postAuthor, commentAuthor)
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, []*Node{postAuthor, comments, commentAuthor}, g.Joins())
		assert.Equal(t, "comments.author", commentAuthor.Path())
		assert.Equal(t, "comment_2", comments.Alias())
		assert.Equal(t, "author_3", commentAuthor.Alias())

		assert.False(t, postAuthor.ToMany())
		assert.True(t, comments.ToMany())
		assert.True(t, commentAuthor.ToMany())
		assert.True(t, g.HasToMany())
	})

	t.Run("foreign node is rejected", func(t *testing.T) {
		g1 := NewGraph(post)
		g2 := NewGraph(post)
		n, err := g1.Join(g1.Root(), relationship(t, post, "comments"), comment)
		require.NoError(t, err)
		_, err = g2.Join(n, relationship(t, comment, "author"), author)
		assert.Error(t, err)
	})
}

func TestFieldPath(t *testing.T) {
	registry := newRegistry(t)
	post := entity(t, registry, "Post")
	author := entity(t, registry, "Author")
	g := NewGraph(post)
	n, err := g.Join(g.Root(), relationship(t, post, "author"), author)
	require.NoError(t, err)

	name, _ := author.Attribute("name")
	title, _ := post.Attribute("title")
	assert.Equal(t, "author.name", NewField(n, name).Path())
	assert.Equal(t, "title", NewField(g.Root(), title).Path())
}

func TestFold(t *testing.T) {
	a := Equal(Value(1), Value(1))
	b := Equal(Value(2), Value(2))
	c := Equal(Value(3), Value(3))

	assert.Equal(t, a, And(a))

	p := And(a, b, c).(InfixNode)
	assert.Equal(t, LeftAssociative, p.Associativity())
	assert.Equal(t, c, p.Right())
	inner := p.Left().(InfixNode)
	assert.Equal(t, a, inner.Left())
	assert.Equal(t, b, inner.Right())
}
