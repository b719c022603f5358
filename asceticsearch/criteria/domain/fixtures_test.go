package criteria

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
)

type sessionStub struct {
	open bool
}

func (s sessionStub) IsOpen() bool {
	return s.open
}

var openSession = sessionStub{open: true}

func newBlogRegistry(t *testing.T) *metadata.Registry {
	b := metadata.NewRegistryBuilder()
	b.Entity("Author", "authors", "id").
		Attribute("id", metadata.KindInt).
		Attribute("name", metadata.KindString).
		Attribute("active", metadata.KindBool)
	b.Entity("Post", "posts", "id").
		Attribute("id", metadata.KindInt).
		Attribute("title", metadata.KindString).
		NullableAttribute("status", metadata.KindString).
		Attribute("rating", metadata.KindFloat).
		NullableAttribute("publishedAt", metadata.KindTime).
		Attribute("ref", metadata.KindUUID).
		ManyToOne("author", "Author", "author_id", "id").
		OneToMany("comments", "Comment", "id", "post_id")
	b.Entity("Comment", "comments", "id").
		Attribute("id", metadata.KindInt).
		Attribute("body", metadata.KindString).
		ManyToOne("author", "Author", "author_id", "id")
	registry, err := b.Build()
	require.NoError(t, err)
	return registry
}

func rootEntity(t *testing.T, r *metadata.Registry, name string) *metadata.Entity {
	e, ok := r.Entity(name)
	require.True(t, ok)
	return e
}
