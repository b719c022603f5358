package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
)

func TestDecodeRequest(t *testing.T) {
	t.Run("full request", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{
			"condition": {"and": [
				{"field": "author.name", "operator": "EQUALS", "values": ["Alice"]},
				{"or": [
					{"field": "title", "operator": "CONTAINS", "value": "intro"},
					{"field": "status", "operator": "IS_NULL"}
				]}
			]},
			"sort": [{"field": "title", "direction": "desc"}, {"field": "id"}],
			"page": 2,
			"size": 20
		}`))
		require.NoError(t, err)

		expected := criteria.And(
			criteria.Leaf("author.name", criteria.OperatorEquals, "Alice"),
			criteria.Or(
				criteria.Leaf("title", criteria.OperatorContains, "intro"),
				criteria.Leaf("status", criteria.OperatorIsNull),
			),
		)
		assert.Equal(t, expected, req.Condition)
		assert.Equal(t, criteria.PageRequest(2, 20, criteria.Desc("title"), criteria.Asc("id")), req.Pageable)
	})

	t.Run("empty request matches everything unpaged", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{}`))
		require.NoError(t, err)
		assert.Nil(t, req.Condition)
		assert.False(t, req.Pageable.IsPaged())
	})

	t.Run("scalars keep their JSON type", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"condition":
			{"field": "id", "operator": "IN", "values": [1, 2.5, "x", true, null]}}`))
		require.NoError(t, err)
		leaf := req.Condition.(criteria.LeafNode)
		assert.Equal(t, []any{int64(1), json.Number("2.5"), "x", true, nil}, leaf.Operands())
	})

	t.Run("integers keep every digit", func(t *testing.T) {
		node, err := DecodeCondition([]byte(`{"field": "id", "operator": "IN",
			"values": [9007199254740993, -9223372036854775808, 9223372036854775808, 1e3]}`))
		require.NoError(t, err)
		assert.Equal(t, []any{
			int64(9007199254740993),
			int64(-9223372036854775808),
			json.Number("9223372036854775808"),
			json.Number("1e3"),
		}, node.(criteria.LeafNode).Operands())

		v, err := metadata.KindInt.Coerce(node.(criteria.LeafNode).Operands()[0])
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), v)
	})

	invalid := map[string]string{
		"malformed":           `{"condition": `,
		"not an object":       `[]`,
		"unknown operator":    `{"condition": {"field": "id", "operator": "SOUNDS_LIKE", "value": 1}}`,
		"missing field":       `{"condition": {"operator": "EQUALS", "value": 1}}`,
		"missing operator":    `{"condition": {"field": "id", "value": 1}}`,
		"empty group":         `{"condition": {"and": []}}`,
		"group not array":     `{"condition": {"or": {"field": "id"}}}`,
		"both and and or":     `{"condition": {"and": [], "or": []}}`,
		"value and values":    `{"condition": {"field": "id", "operator": "EQUALS", "value": 1, "values": [1]}}`,
		"values not an array": `{"condition": {"field": "id", "operator": "IN", "values": 1}}`,
		"nested failure":      `{"condition": {"and": [{"or": [{"field": 1, "operator": "EQUALS"}]}]}}`,
		"bad direction":       `{"sort": [{"field": "id", "direction": "sideways"}]}`,
		"sort not array":      `{"sort": {"field": "id"}}`,
		"negative page":       `{"page": -1}`,
		"fractional size":     `{"size": 2.5}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(doc))
			assert.ErrorIs(t, err, criteria.ErrInvalidCondition)
		})
	}

	t.Run("error names the location", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"condition": {"and": [{"field": "id", "operator": "EQUALS"}, {"or": []}]}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "condition.and[1].or")
	})
}

func TestDecodeCondition(t *testing.T) {
	node, err := DecodeCondition([]byte(`{"field": "status", "operator": "IS_NOT_NULL"}`))
	require.NoError(t, err)
	assert.Equal(t, criteria.Leaf("status", criteria.OperatorIsNotNull), node)

	_, err = DecodeCondition([]byte(`"status"`))
	assert.ErrorIs(t, err, criteria.ErrInvalidCondition)
}

func TestDecodeAssignments(t *testing.T) {
	data, err := DecodeAssignments([]byte(`{"views": 9007199254740993, "rating": 4.25, "status": null, "title": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"views":  int64(9007199254740993),
		"rating": json.Number("4.25"),
		"status": nil,
		"title":  "x",
	}, data)

	_, err = DecodeAssignments([]byte(`[1]`))
	assert.ErrorIs(t, err, criteria.ErrInvalidCondition)
	_, err = DecodeAssignments([]byte(`{`))
	assert.ErrorIs(t, err, criteria.ErrInvalidCondition)
}
