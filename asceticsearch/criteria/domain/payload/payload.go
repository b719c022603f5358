// Package payload decodes search requests from their JSON wire shape.
//
// A condition is either a group or a leaf:
//
//	{"and": [<condition>, ...]}
//	{"or":  [<condition>, ...]}
//	{"field": "author.name", "operator": "EQUALS", "values": ["Alice"]}
//
// A leaf may carry a single "value" instead of "values". A request wraps the
// condition together with sort and paging directives:
//
//	{"condition": {...}, "sort": [{"field": "title", "direction": "DESC"}], "page": 0, "size": 20}
//
// Operand values are left as decoded (string, bool, nil, int64 for integer
// literals, json.Number for any other number so no digit is lost); the compiler
// coerces them to the kind of the target field.
package payload

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
)

// Request is a decoded search request.
type Request struct {
	// Condition is nil when the request matches every row
	Condition criteria.Node
	Pageable  criteria.Pageable
}

// DecodeRequest parses a request document.
func DecodeRequest(data []byte) (Request, error) {
	if !gjson.ValidBytes(data) {
		return Request{}, invalid("", "malformed JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Request{}, invalid("", "request must be an object")
	}

	var req Request
	if c := doc.Get("condition"); c.Exists() && c.Type != gjson.Null {
		node, err := decodeNode(c, "condition")
		if err != nil {
			return Request{}, err
		}
		req.Condition = node
	}

	sort, err := decodeSort(doc.Get("sort"))
	if err != nil {
		return Request{}, err
	}
	req.Pageable.Sort = sort

	for _, name := range []string{"page", "size"} {
		r := doc.Get(name)
		if !r.Exists() {
			continue
		}
		if r.Type != gjson.Number || r.Num != float64(r.Int()) || r.Int() < 0 {
			return Request{}, invalid(name, "must be a non-negative integer")
		}
		if name == "page" {
			req.Pageable.Number = int(r.Int())
		} else {
			req.Pageable.Size = int(r.Int())
		}
	}
	return req, nil
}

// DecodeCondition parses a bare condition document.
func DecodeCondition(data []byte) (criteria.Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalid("", "malformed JSON")
	}
	return decodeNode(gjson.ParseBytes(data), "$")
}

func decodeNode(r gjson.Result, at string) (criteria.Node, error) {
	if !r.IsObject() {
		return nil, invalid(at, "condition must be an object")
	}
	and, or := r.Get("and"), r.Get("or")
	switch {
	case and.Exists() && or.Exists():
		return nil, invalid(at, "group cannot be both \"and\" and \"or\"")
	case and.Exists():
		return decodeGroup(criteria.LogicalAnd, and, at+".and")
	case or.Exists():
		return decodeGroup(criteria.LogicalOr, or, at+".or")
	}
	return decodeLeaf(r, at)
}

func decodeGroup(operator criteria.LogicalOperator, r gjson.Result, at string) (criteria.Node, error) {
	if !r.IsArray() {
		return nil, invalid(at, "group must be an array")
	}
	items := r.Array()
	if len(items) == 0 {
		return nil, invalid(at, "group must not be empty")
	}
	children := make([]criteria.Node, 0, len(items))
	for i, item := range items {
		child, err := decodeNode(item, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return criteria.Group(operator, children...), nil
}

func decodeLeaf(r gjson.Result, at string) (criteria.Node, error) {
	field := r.Get("field")
	if field.Type != gjson.String {
		return nil, invalid(at, "leaf requires a string \"field\"")
	}
	opName := r.Get("operator")
	if opName.Type != gjson.String {
		return nil, invalid(at, "leaf requires a string \"operator\"")
	}
	operator, err := criteria.ParseOperator(opName.Str)
	if err != nil {
		return nil, &criteria.ConditionError{
			Path:   field.Str,
			Err:    criteria.ErrInvalidCondition,
			Reason: fmt.Sprintf("%s: unknown operator %q", at, opName.Str),
		}
	}

	var operands []any
	values, value := r.Get("values"), r.Get("value")
	switch {
	case values.Exists() && value.Exists():
		return nil, invalid(at, "leaf cannot have both \"value\" and \"values\"")
	case values.Exists():
		if !values.IsArray() {
			return nil, invalid(at+".values", "must be an array")
		}
		for _, item := range values.Array() {
			operands = append(operands, scalar(item))
		}
	case value.Exists():
		operands = append(operands, scalar(value))
	}
	return criteria.Leaf(field.Str, operator, operands...), nil
}

func decodeSort(r gjson.Result) (criteria.Sort, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, invalid("sort", "must be an array")
	}
	var sort criteria.Sort
	for i, item := range r.Array() {
		at := fmt.Sprintf("sort[%d]", i)
		field := item.Get("field")
		if field.Type != gjson.String {
			return nil, invalid(at, "requires a string \"field\"")
		}
		direction, ok := criteria.ParseDirection(item.Get("direction").String())
		if !ok {
			return nil, invalid(at, fmt.Sprintf("unknown direction %q", item.Get("direction").String()))
		}
		sort = append(sort, criteria.SortOrder{Path: field.Str, Direction: direction})
	}
	return sort, nil
}

// DecodeAssignments parses an object of attribute values for a bulk update.
func DecodeAssignments(data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalid("", "malformed JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, invalid("", "assignments must be an object")
	}
	result := make(map[string]any)
	doc.ForEach(func(key, value gjson.Result) bool {
		result[key.String()] = scalar(value)
		return true
	})
	return result, nil
}

func scalar(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	default:
		return r.Value()
	}
}

func invalid(at, reason string) error {
	if at != "" {
		reason = at + ": " + reason
	}
	return &criteria.ConditionError{Err: criteria.ErrInvalidCondition, Reason: reason}
}
