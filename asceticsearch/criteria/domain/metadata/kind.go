package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrIncompatibleValue is returned by Kind.Coerce when a value cannot represent the kind.
var ErrIncompatibleValue = errors.New("metadata: incompatible value")

// Kind is the scalar type class of an attribute.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindDecimal Kind = "decimal"
	KindBool    Kind = "bool"
	KindTime    Kind = "time"
	KindUUID    Kind = "uuid"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindString, KindInt, KindFloat, KindDecimal, KindBool, KindTime, KindUUID:
		return k, nil
	}
	return "", fmt.Errorf("metadata: unknown kind %q", s)
}

// Ordered reports whether values of the kind support <, >, BETWEEN.
func (k Kind) Ordered() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindDecimal, KindTime:
		return true
	}
	return false
}

// Coerce converts value into the Go representation used for the kind.
// Values decoded from JSON (float64 numbers, strings) are accepted where lossless.
func (k Kind) Coerce(value any) (any, error) {
	switch k {
	case KindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case KindInt:
		if v, ok := toInt64(value); ok {
			return v, nil
		}
	case KindFloat:
		if v, ok := toFloat64(value); ok {
			return v, nil
		}
	case KindDecimal:
		return coerceDecimal(value)
	case KindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case KindTime:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an RFC 3339 time", ErrIncompatibleValue, v)
			}
			return t, nil
		}
	case KindUUID:
		switch v := value.(type) {
		case uuid.UUID:
			return v, nil
		case [16]byte:
			return uuid.UUID(v), nil
		case string:
			id, err := uuid.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a UUID", ErrIncompatibleValue, v)
			}
			return id, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrIncompatibleValue, value, k)
}

func coerceDecimal(value any) (any, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", ErrIncompatibleValue, v)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", ErrIncompatibleValue, v)
		}
		return d, nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	if i, ok := toInt64(value); ok {
		return decimal.NewFromInt(i), nil
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrIncompatibleValue, value, KindDecimal)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		// integral values written with an exponent, e.g. 1e3
		if f, err := v.Float64(); err == nil {
			return toInt64(f)
		}
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return 0, false
	}
	if i, ok := toInt64(value); ok {
		return float64(i), true
	}
	return 0, false
}
