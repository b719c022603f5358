package criteria

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/operators"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

func resolveField(t *testing.T, path string) query.Field {
	registry := newBlogRegistry(t)
	r, err := NewPathResolver(openSession, registry, rootEntity(t, registry, "Post"))
	require.NoError(t, err)
	f, err := r.Resolve(path)
	require.NoError(t, err)
	return f
}

func TestEvaluatorArity(t *testing.T) {
	e := NewEvaluator()
	rating := resolveField(t, "rating")

	t.Run("between takes exactly two operands", func(t *testing.T) {
		_, err := e.Build(rating, OperatorBetween, []any{1.0, 2.0})
		assert.NoError(t, err)
		_, err = e.Build(rating, OperatorBetween, []any{1.0})
		assert.ErrorIs(t, err, ErrArityMismatch)
		_, err = e.Build(rating, OperatorBetween, []any{1.0, 2.0, 3.0})
		assert.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("in takes at least one operand", func(t *testing.T) {
		_, err := e.Build(rating, OperatorIn, []any{})
		assert.ErrorIs(t, err, ErrArityMismatch)
		p, err := e.Build(rating, OperatorIn, []any{1.0, 2.0, 3.0})
		require.NoError(t, err)
		assert.Len(t, p.(query.InNode).Values(), 3)
	})

	t.Run("unary operators take one operand", func(t *testing.T) {
		_, err := e.Build(rating, OperatorEquals, nil)
		assert.ErrorIs(t, err, ErrArityMismatch)
		_, err = e.Build(rating, OperatorEquals, []any{1.0, 2.0})
		assert.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("nullary operators ignore operands", func(t *testing.T) {
		p, err := e.Build(rating, OperatorIsNull, []any{"ignored"})
		require.NoError(t, err)
		assert.Equal(t, operators.OperatorIsNull, p.(query.PostfixNode).Operator())

		p, err = e.Build(rating, OperatorIsNotNull, nil)
		require.NoError(t, err)
		assert.Equal(t, operators.OperatorIsNotNull, p.(query.PostfixNode).Operator())
	})

	t.Run("error carries path and operator", func(t *testing.T) {
		_, err := e.Build(rating, OperatorBetween, []any{1.0})
		var ce *ConditionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "rating", ce.Path)
		assert.Equal(t, OperatorBetween, ce.Operator)
		assert.Contains(t, err.Error(), "expects exactly 2 operands, got 1")
	})

	t.Run("unknown operator", func(t *testing.T) {
		_, err := e.Build(rating, Operator("SOUNDS_LIKE"), []any{"x"})
		assert.ErrorIs(t, err, ErrInvalidCondition)
	})
}

func TestEvaluatorTypes(t *testing.T) {
	e := NewEvaluator()

	t.Run("ordered operator on unordered kind", func(t *testing.T) {
		_, err := e.Build(resolveField(t, "author.active"), OperatorGreaterThan, []any{true})
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, err = e.Build(resolveField(t, "ref"), OperatorBetween, []any{uuid.New().String(), uuid.New().String()})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("string operator on non-string kind", func(t *testing.T) {
		_, err := e.Build(resolveField(t, "rating"), OperatorContains, []any{"1"})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("incompatible operand", func(t *testing.T) {
		_, err := e.Build(resolveField(t, "id"), OperatorEquals, []any{"one"})
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, err = e.Build(resolveField(t, "id"), OperatorIn, []any{1, "two"})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("null operand", func(t *testing.T) {
		_, err := e.Build(resolveField(t, "status"), OperatorEquals, []any{nil})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("operands are coerced to the field kind", func(t *testing.T) {
		p, err := e.Build(resolveField(t, "id"), OperatorEquals, []any{float64(7)})
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.(query.InfixNode).Right().(query.ValueNode).Value())

		p, err = e.Build(resolveField(t, "publishedAt"), OperatorGreaterThan, []any{"2024-01-02T03:04:05Z"})
		require.NoError(t, err)
		assert.Equal(t,
			time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			p.(query.InfixNode).Right().(query.ValueNode).Value(),
		)
	})
}

func TestEvaluatorPatterns(t *testing.T) {
	title := resolveField(t, "title")

	cases := []struct {
		operator Operator
		expected string
	}{
		{OperatorContains, "%intro%"},
		{OperatorStartsWith, "intro%"},
		{OperatorEndsWith, "%intro"},
		{OperatorLike, "intro"},
	}
	for _, c := range cases {
		t.Run(string(c.operator), func(t *testing.T) {
			p, err := NewEvaluator().Build(title, c.operator, []any{"intro"})
			require.NoError(t, err)
			like := p.(query.LikeNode)
			assert.Equal(t, c.expected, like.Pattern().Value())
			assert.Equal(t, operators.OperatorLike, like.Operator())
			assert.True(t, like.CaseInsensitive())
		})
	}

	t.Run("case sensitive", func(t *testing.T) {
		p, err := NewEvaluator(CaseSensitive(true)).Build(title, OperatorNotLike, []any{"a_c"})
		require.NoError(t, err)
		like := p.(query.LikeNode)
		assert.Equal(t, operators.OperatorNotLike, like.Operator())
		assert.False(t, like.CaseInsensitive())
		assert.Equal(t, "a_c", like.Pattern().Value(), "wildcards are kept")
	})
}

func TestOperatorTable(t *testing.T) {
	for _, op := range Operators() {
		assert.True(t, op.Valid(), op)
		parsed, err := ParseOperator(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}
	_, err := ParseOperator("equals")
	assert.ErrorIs(t, err, ErrInvalidCondition)

	assert.Equal(t, Binary, OperatorBetween.Arity())
	assert.Equal(t, Variadic, OperatorNotIn.Arity())
	assert.Equal(t, Nullary, OperatorIsNull.Arity())
	assert.Equal(t, Unary, OperatorStartsWith.Arity())
}
