package search

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	sqlcriteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/infrastructure"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/option"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

type Option func(*options)

type options struct {
	logger *slog.Logger
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Service runs condition trees against the table of one root entity.
// It holds no per-call state and may be shared between goroutines.
type Service[E any] struct {
	entity   *metadata.Entity
	compiler *criteria.Compiler
	renderer *sqlcriteria.Renderer
	mapper   EntityMapper[E]
	logger   *slog.Logger
}

func NewService[E any](
	compiler *criteria.Compiler,
	renderer *sqlcriteria.Renderer,
	entityName string,
	mapper EntityMapper[E],
	opts ...Option,
) (*Service[E], error) {
	entity, ok := compiler.Registry().Entity(entityName)
	if !ok {
		return nil, fmt.Errorf("search: unknown entity %q", entityName)
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[E]{
		entity:   entity,
		compiler: compiler,
		renderer: renderer,
		mapper:   mapper,
		logger:   o.logger.With("component", "search", "entity", entity.Name()),
	}, nil
}

func (s *Service[E]) Entity() *metadata.Entity {
	return s.entity
}

// FindAll returns one page of matching entities. The count query is skipped
// when the page alone determines the total.
func (s *Service[E]) FindAll(sess session.DbSession, condition criteria.Node, pageable criteria.Pageable) (Page[E], error) {
	op, cq, err := s.compile(sess, "find_all", condition, pageable)
	if err != nil {
		return Page[E]{}, err
	}
	content, err := s.load(sess, op, cq)
	if err != nil {
		return Page[E]{}, err
	}
	page := Page[E]{
		Content: content,
		Number:  pageable.Number,
		Size:    pageable.Size,
	}
	switch {
	case !pageable.IsPaged():
		page.TotalElements = int64(len(content))
	case len(content) > 0 && len(content) < pageable.Size:
		page.TotalElements = int64(pageable.Offset() + len(content))
	case len(content) == 0 && pageable.Number == 0:
		page.TotalElements = 0
	default:
		total, err := s.count(sess, op, cq)
		if err != nil {
			return Page[E]{}, err
		}
		page.TotalElements = total
	}
	op.done(sess, "rows", len(content), "total", page.TotalElements)
	return page, nil
}

// FindAllProjected runs FindAll and projects every entity of the page.
func FindAllProjected[E, D any](
	s *Service[E],
	sess session.DbSession,
	condition criteria.Node,
	pageable criteria.Pageable,
	projector Projector[E, D],
) (Page[D], error) {
	page, err := s.FindAll(sess, condition, pageable)
	if err != nil {
		return Page[D]{}, err
	}
	return MapPage[E, D](page, projector)
}

// FindOne returns the only matching entity, Nothing when no row matches,
// and ErrNonUniqueResult when several do.
func (s *Service[E]) FindOne(sess session.DbSession, condition criteria.Node) (option.Option[E], error) {
	op, cq, err := s.compile(sess, "find_one", condition, criteria.PageRequest(0, 2))
	if err != nil {
		return option.Nothing[E](), err
	}
	content, err := s.load(sess, op, cq)
	if err != nil {
		return option.Nothing[E](), err
	}
	op.done(sess, "rows", len(content))
	switch len(content) {
	case 0:
		return option.Nothing[E](), nil
	case 1:
		return option.Some(content[0]), nil
	}
	return option.Nothing[E](), &criteria.ConditionError{Err: criteria.ErrNonUniqueResult, Reason: fmt.Sprintf(
		"more than one %s matches", s.entity.Name(),
	)}
}

// FindFirst returns the first matching entity in the given order, ties broken by primary key.
func (s *Service[E]) FindFirst(sess session.DbSession, condition criteria.Node, orders ...criteria.SortOrder) (option.Option[E], error) {
	op, cq, err := s.compile(sess, "find_first", condition, criteria.PageRequest(0, 1, orders...))
	if err != nil {
		return option.Nothing[E](), err
	}
	content, err := s.load(sess, op, cq)
	if err != nil {
		return option.Nothing[E](), err
	}
	op.done(sess, "rows", len(content))
	if len(content) == 0 {
		return option.Nothing[E](), nil
	}
	return option.Some(content[0]), nil
}

// Count returns the number of matching root rows without loading them.
func (s *Service[E]) Count(sess session.DbSession, condition criteria.Node) (int64, error) {
	op, cq, err := s.compile(sess, "count", condition, criteria.Unpaged())
	if err != nil {
		return 0, err
	}
	total, err := s.count(sess, op, cq)
	if err != nil {
		return 0, err
	}
	op.done(sess, "total", total)
	return total, nil
}

func (s *Service[E]) Exists(sess session.DbSession, condition criteria.Node) (bool, error) {
	op, cq, err := s.compile(sess, "exists", condition, criteria.Unpaged())
	if err != nil {
		return false, err
	}
	stmt, err := s.renderer.Exists(cq)
	if err != nil {
		return false, errors.Wrap(err, "search: exists")
	}
	op.statement(sess, stmt.SQL)
	var exists bool
	if err := sess.Connection().QueryRow(stmt.SQL, stmt.Args...).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "search: exists")
	}
	op.done(sess, "exists", exists)
	return exists, nil
}

// Delete removes every matching root row and returns the affected row count.
// Transaction demarcation belongs to the caller, see session.Session.Atomic.
func (s *Service[E]) Delete(sess session.DbSession, condition criteria.Node) (int64, error) {
	op, cq, err := s.compile(sess, "delete", condition, criteria.Unpaged())
	if err != nil {
		return 0, err
	}
	stmt, err := s.renderer.Delete(cq)
	if err != nil {
		return 0, errors.Wrap(err, "search: delete")
	}
	return s.exec(sess, op, stmt)
}

// Update assigns data to every matching root row. Keys are attribute names of the
// root entity; the primary key cannot be assigned.
func (s *Service[E]) Update(sess session.DbSession, condition criteria.Node, data map[string]any) (int64, error) {
	op, cq, err := s.compile(sess, "update", condition, criteria.Unpaged())
	if err != nil {
		return 0, err
	}
	assignments, err := s.assignments(data)
	if err != nil {
		op.failed(sess, err)
		return 0, err
	}
	stmt, err := s.renderer.Update(cq, assignments)
	if err != nil {
		return 0, errors.Wrap(err, "search: update")
	}
	return s.exec(sess, op, stmt)
}

func (s *Service[E]) assignments(data map[string]any) ([]sqlcriteria.Assignment, error) {
	if len(data) == 0 {
		return nil, &criteria.ConditionError{Err: criteria.ErrInvalidUpdateData, Reason: "no fields to update"}
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	pk := s.entity.PrimaryKey()
	result := make([]sqlcriteria.Assignment, 0, len(names))
	for _, name := range names {
		attr, ok := s.entity.Attribute(name)
		if !ok {
			return nil, &criteria.ConditionError{Path: name, Err: criteria.ErrInvalidUpdateData, Reason: fmt.Sprintf(
				"%s has no attribute %q", s.entity.Name(), name,
			)}
		}
		if attr.Name == pk.Name {
			return nil, &criteria.ConditionError{Path: name, Err: criteria.ErrInvalidUpdateData, Reason: "primary key cannot be updated"}
		}
		value := data[name]
		if value == nil {
			if !attr.Nullable {
				return nil, &criteria.ConditionError{Path: name, Err: criteria.ErrInvalidUpdateData, Reason: "attribute is not nullable"}
			}
		} else {
			coerced, err := attr.Kind.Coerce(value)
			if err != nil {
				return nil, &criteria.ConditionError{Path: name, Err: criteria.ErrInvalidUpdateData, Reason: err.Error()}
			}
			value = coerced
		}
		result = append(result, sqlcriteria.Assignment{Column: attr.Column, Value: value})
	}
	return result, nil
}

func (s *Service[E]) compile(
	sess session.DbSession,
	name string,
	condition criteria.Node,
	pageable criteria.Pageable,
) (*operation, *criteria.CompiledQuery, error) {
	op := &operation{
		logger: s.logger.With("operation", name, "correlation_id", ulid.Make().String()),
		start:  time.Now(),
	}
	cq, err := s.compiler.Compile(sess, s.entity, condition, pageable)
	if err != nil {
		op.logger.Debug("compilation failed", "error", err)
		return nil, nil, err
	}
	op.logger.Log(sess.Context(), slog.LevelDebug, "compiled", "joins", cq.Graph.Len())
	return op, cq, nil
}

func (s *Service[E]) load(sess session.DbSession, op *operation, cq *criteria.CompiledQuery) ([]E, error) {
	attributes := s.entity.Attributes()
	stmt, err := s.renderer.Select(cq, attributes)
	if err != nil {
		return nil, errors.Wrap(err, "search: select")
	}
	op.statement(sess, stmt.SQL)
	rows, err := sess.Connection().Query(stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrap(err, "search: select")
	}
	defer rows.Close()

	result := make([]E, 0)
	for rows.Next() {
		targets := make([]any, 0, len(attributes)+stmt.Extra)
		for _, attr := range attributes {
			targets = append(targets, scanTarget(attr.Kind))
		}
		for i := 0; i < stmt.Extra; i++ {
			targets = append(targets, new(any))
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "search: scan")
		}
		record := make(Record, len(attributes))
		for i, attr := range attributes {
			record[attr.Name] = scannedValue(targets[i])
		}
		entity, err := s.mapper(record)
		if err != nil {
			return nil, errors.Wrap(err, "search: map")
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "search: select")
	}
	return result, nil
}

func (s *Service[E]) count(sess session.DbSession, op *operation, cq *criteria.CompiledQuery) (int64, error) {
	stmt, err := s.renderer.Count(cq)
	if err != nil {
		return 0, errors.Wrap(err, "search: count")
	}
	op.statement(sess, stmt.SQL)
	var total int64
	if err := sess.Connection().QueryRow(stmt.SQL, stmt.Args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "search: count")
	}
	return total, nil
}

func (s *Service[E]) exec(sess session.DbSession, op *operation, stmt sqlcriteria.Statement) (int64, error) {
	op.statement(sess, stmt.SQL)
	r, err := sess.Connection().Exec(stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, errors.Wrap(err, "search: exec")
	}
	affected, err := r.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "search: exec")
	}
	op.done(sess, "affected", affected)
	return affected, nil
}

// operation carries the correlation id of one service call.
type operation struct {
	logger *slog.Logger
	start  time.Time
}

func (o *operation) statement(sess session.DbSession, sql string) {
	o.logger.Log(sess.Context(), slog.LevelDebug, "statement", "sql", sql)
}

func (o *operation) done(sess session.DbSession, attrs ...any) {
	attrs = append(attrs, "duration", time.Since(o.start))
	o.logger.Log(sess.Context(), slog.LevelDebug, "done", attrs...)
}

func (o *operation) failed(sess session.DbSession, err error) {
	o.logger.Log(sess.Context(), slog.LevelDebug, "failed", "error", err)
}
