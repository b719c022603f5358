package sql

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session/result"
)

// NewSession binds a session to one connection of a database/sql pool.
func NewSession(ctx context.Context, conn *sql.Conn) *Session {
	s := &Session{
		QuerySignals: session.NewQuerySignals(),
		ctx:          ctx,
		conn:         conn,
		dbExecutor:   conn,
	}
	s.open.Store(true)
	return s
}

// Session is either a plain connection session or, when conn is nil, a transaction one.
type Session struct {
	session.QuerySignals
	ctx        context.Context
	conn       *sql.Conn
	dbExecutor DbExecutor
	parent     *Session
	open       atomic.Bool
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) IsOpen() bool {
	return s.open.Load() && (s.parent == nil || s.parent.IsOpen())
}

func (s *Session) close() {
	s.open.Store(false)
}

func (s *Session) Connection() session.DbConnection {
	return s
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	if !s.IsOpen() {
		return errors.New("session is closed")
	}
	// TODO: Add support for SavePoint:
	// https://github.com/golang/go/issues/7898#issuecomment-580080390
	if s.conn == nil {
		return errors.New("savePoint is not currently supported")
	}
	tx, err := s.conn.BeginTx(s.ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	newSession := &Session{
		QuerySignals: s.QuerySignals,
		ctx:          s.ctx,
		dbExecutor:   tx,
		parent:       s,
	}
	newSession.open.Store(true)
	defer newSession.close()

	err = callback(newSession)
	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(); txErr != nil {
		return errors.Wrap(txErr, "failed to commit tx")
	}
	return nil
}

func (s *Session) Exec(query string, args ...any) (session.Result, error) {
	if !s.IsOpen() {
		return nil, errors.New("session is closed")
	}
	done := s.Track(s, s, query, args)
	r, err := s.dbExecutor.ExecContext(s.ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	affected, err := r.RowsAffected()
	if err != nil {
		return nil, err
	}
	return result.NewResult(affected), nil
}

func (s *Session) Query(query string, args ...any) (session.Rows, error) {
	if !s.IsOpen() {
		return nil, errors.New("session is closed")
	}
	done := s.Track(s, s, query, args)
	rows, err := s.dbExecutor.QueryContext(s.ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Session) QueryRow(query string, args ...any) session.Row {
	if !s.IsOpen() {
		return &closedRow{}
	}
	done := s.Track(s, s, query, args)
	row := s.dbExecutor.QueryRowContext(s.ctx, query, args...)
	done(row.Err())
	return row
}

// DbExecutor is implemented by both *sql.Conn and *sql.Tx
type DbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type closedRow struct{}

func (closedRow) Err() error {
	return errors.New("session is closed")
}

func (r closedRow) Scan(dest ...any) error {
	return r.Err()
}
