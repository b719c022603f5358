package criteria

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrSessionNotOpen    = errors.New("session is not open")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrNonUniqueResult   = errors.New("non-unique result")
	ErrInvalidUpdateData = errors.New("invalid update data")
	ErrInvalidCondition  = errors.New("invalid condition")
)

// ConditionError carries the field path and operator a failure originated from.
type ConditionError struct {
	Path     string
	Operator Operator
	Reason   string
	Err      error
}

func (e *ConditionError) Error() string {
	var b strings.Builder
	b.WriteString("criteria: ")
	if e.Path != "" {
		fmt.Fprintf(&b, "field %q: ", e.Path)
	}
	if e.Operator != "" {
		fmt.Fprintf(&b, "operator %s: ", e.Operator)
	}
	b.WriteString(e.Err.Error())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *ConditionError) Unwrap() error {
	return e.Err
}

func invalidPath(path, reason string) error {
	return &ConditionError{Path: path, Reason: reason, Err: ErrInvalidPath}
}
