package search

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
)

// Record is one row of the root entity keyed by attribute name. NULL is nil.
type Record map[string]any

// EntityMapper materializes an entity from a record.
type EntityMapper[E any] func(Record) (E, error)

// Projector converts a loaded entity into another output shape.
type Projector[E, D any] func(E) (D, error)

// RecordMapper keeps rows untyped.
func RecordMapper(r Record) (Record, error) {
	return r, nil
}

// scanTarget returns a nullable destination for a column of the given kind.
func scanTarget(kind metadata.Kind) any {
	switch kind {
	case metadata.KindString:
		return &sql.NullString{}
	case metadata.KindInt:
		return &sql.NullInt64{}
	case metadata.KindFloat:
		return &sql.NullFloat64{}
	case metadata.KindDecimal:
		return &decimal.NullDecimal{}
	case metadata.KindBool:
		return &sql.NullBool{}
	case metadata.KindTime:
		return &sql.NullTime{}
	case metadata.KindUUID:
		return &uuid.NullUUID{}
	}
	return new(any)
}

func scannedValue(target any) any {
	switch t := target.(type) {
	case *sql.NullString:
		if t.Valid {
			return t.String
		}
	case *sql.NullInt64:
		if t.Valid {
			return t.Int64
		}
	case *sql.NullFloat64:
		if t.Valid {
			return t.Float64
		}
	case *decimal.NullDecimal:
		if t.Valid {
			return t.Decimal
		}
	case *sql.NullBool:
		if t.Valid {
			return t.Bool
		}
	case *sql.NullTime:
		if t.Valid {
			return t.Time
		}
	case *uuid.NullUUID:
		if t.Valid {
			return t.UUID
		}
	case *any:
		return *t
	}
	return nil
}
