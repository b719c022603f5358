package testutils

import (
	"context"
	"database/sql"
	"errors"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session/result"
)

// NewDbSessionStub returns an open session answering every query with rows.
func NewDbSessionStub(rows *RowsStub) *DbSessionStub {
	stub := &DbSessionStub{
		QuerySignals: session.NewQuerySignals(),
		Rows:         rows,
		open:         true,
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

type DbSessionStub struct {
	session.QuerySignals
	Rows         *RowsStub
	RowsAffected int64
	ActualQuery  string
	ActualParams []any
	Queries      []string
	conn         *connectionStub
	open         bool
}

func (s *DbSessionStub) Context() context.Context {
	return context.Background()
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	return callback(s)
}

func (s *DbSessionStub) IsOpen() bool {
	return s.open
}

// Close makes the stub report a finished session.
func (s *DbSessionStub) Close() {
	s.open = false
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return s.conn
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) record(query string, args []any) func(error) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	c.session.Queries = append(c.session.Queries, query)
	return c.session.Track(c.session, c, query, args)
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	c.record(query, args)(nil)
	return result.NewResult(c.session.RowsAffected), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.record(query, args)(nil)
	c.session.Rows.Rewind()
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.record(query, args)(nil)
	c.session.Rows.Rewind()
	return &RowStub{rows: c.session.Rows}
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{
		rows:   rows,
		idx:    -1,
		Closed: false,
	}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

// Rewind lets the same rows answer several queries.
func (r *RowsStub) Rewind() {
	r.idx = -1
	r.Closed = false
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("no current row")
	}

	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}

		switch d := dest[i].(type) {
		case *any:
			*d = val
		case *int64:
			*d = toInt64(val)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case sql.Scanner:
			if err := d.Scan(val); err != nil {
				return err
			}
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		panic("cannot convert to int64")
	}
}

type RowStub struct {
	rows *RowsStub
}

func (r *RowStub) Err() error {
	return r.rows.Err()
}

func (r *RowStub) Scan(dest ...any) error {
	if !r.rows.Next() {
		return sql.ErrNoRows
	}
	return r.rows.Scan(dest...)
}
