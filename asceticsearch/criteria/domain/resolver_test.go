package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathResolver(t *testing.T) {
	registry := newBlogRegistry(t)
	post := rootEntity(t, registry, "Post")

	t.Run("closed session", func(t *testing.T) {
		_, err := NewPathResolver(sessionStub{open: false}, registry, post)
		assert.ErrorIs(t, err, ErrSessionNotOpen)
		_, err = NewPathResolver(nil, registry, post)
		assert.ErrorIs(t, err, ErrSessionNotOpen)
	})

	t.Run("root attribute needs no join", func(t *testing.T) {
		r, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		f, err := r.Resolve("title")
		require.NoError(t, err)
		assert.Same(t, r.Graph().Root(), f.Node())
		assert.Equal(t, "title", f.Attribute().Name)
		assert.Equal(t, 0, r.Graph().Len())
	})

	t.Run("shared prefix is joined once", func(t *testing.T) {
		r, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		name, err := r.Resolve("author.name")
		require.NoError(t, err)
		active, err := r.Resolve("author.active")
		require.NoError(t, err)
		assert.Same(t, name.Node(), active.Node())
		assert.Equal(t, 1, r.Graph().Len())
	})

	t.Run("nested paths join each distinct prefix", func(t *testing.T) {
		r, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		for _, p := range []string{"comments.body", "comments.author.name", "author.name", "comments.author.id"} {
			_, err := r.Resolve(p)
			require.NoError(t, err)
		}
		// comments, comments.author, author
		assert.Equal(t, 3, r.Graph().Len())
	})

	t.Run("separate resolvers never share joins", func(t *testing.T) {
		r1, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		r2, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		f1, err := r1.Resolve("author.name")
		require.NoError(t, err)
		f2, err := r2.Resolve("author.name")
		require.NoError(t, err)
		assert.NotSame(t, f1.Node(), f2.Node())
	})

	t.Run("invalid paths", func(t *testing.T) {
		r, err := NewPathResolver(openSession, registry, post)
		require.NoError(t, err)
		for _, p := range []string{"", "   ", "nope", "author.nope", "nope.name", "author..name", "author", ".title", "title.", "Title"} {
			t.Run(p, func(t *testing.T) {
				_, err := r.Resolve(p)
				require.ErrorIs(t, err, ErrInvalidPath)
				var ce *ConditionError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, p, ce.Path)
			})
		}
	})
}
