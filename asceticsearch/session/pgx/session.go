package pgx

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session/result"
)

// Session represents a database session without transaction
type Session struct {
	session.QuerySignals
	ctx  context.Context
	conn *pgxpool.Conn
	open atomic.Bool
}

func NewSession(ctx context.Context, conn *pgxpool.Conn) *Session {
	s := &Session{
		QuerySignals: session.NewQuerySignals(),
		ctx:          ctx,
		conn:         conn,
	}
	s.open.Store(true)
	return s
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) IsOpen() bool {
	return s.open.Load()
}

func (s *Session) close() {
	s.open.Store(false)
}

func (s *Session) Connection() session.DbConnection {
	return &connection{session: s, exec: s.conn}
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	if !s.IsOpen() {
		return errors.New("session is closed")
	}
	// Start new transaction
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}

	txSession := NewTransactionSession(s.ctx, tx, s)
	defer txSession.close()

	err = callback(txSession)
	if err != nil {
		if txErr := tx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := tx.Commit(s.ctx); txErr != nil {
		return errors.Wrap(txErr, "failed to commit transaction")
	}

	return nil
}

// TransactionSession represents a session inside transaction.
// Savepoints nest through Atomic.
type TransactionSession struct {
	session.QuerySignals
	ctx    context.Context
	tx     pgx.Tx
	parent session.DbSession
	open   atomic.Bool
}

func NewTransactionSession(ctx context.Context, tx pgx.Tx, parent session.DbSession) *TransactionSession {
	s := &TransactionSession{
		QuerySignals: session.NewQuerySignals(),
		ctx:          ctx,
		tx:           tx,
		parent:       parent,
	}
	if parent != nil {
		s.QuerySignals = querySignalsOf(parent)
	}
	s.open.Store(true)
	return s
}

func (s *TransactionSession) Context() context.Context {
	return s.ctx
}

func (s *TransactionSession) IsOpen() bool {
	return s.open.Load() && (s.parent == nil || s.parent.IsOpen())
}

func (s *TransactionSession) close() {
	s.open.Store(false)
}

func (s *TransactionSession) Connection() session.DbConnection {
	return &connection{session: s, exec: s.tx}
}

func (s *TransactionSession) Atomic(callback session.SessionCallback) error {
	if !s.IsOpen() {
		return errors.New("session is closed")
	}
	// Create savepoint (nested transaction)
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}

	savepointSession := NewTransactionSession(s.ctx, nestedTx, s)
	defer savepointSession.close()

	err = callback(savepointSession)
	if err != nil {
		if txErr := nestedTx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := nestedTx.Commit(s.ctx); txErr != nil {
		return errors.Wrap(txErr, "failed to commit savepoint")
	}

	return nil
}

func querySignalsOf(s session.DbSession) session.QuerySignals {
	switch p := s.(type) {
	case *Session:
		return p.QuerySignals
	case *TransactionSession:
		return p.QuerySignals
	}
	return session.NewQuerySignals()
}

// executor interface for both *pgxpool.Conn and pgx.Tx
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type trackedSession interface {
	session.DbSession
	Track(sess session.DbSession, sender any, query string, params []any) func(error)
}

// connection implements session.DbConnection
type connection struct {
	session trackedSession
	exec    executor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	if !c.session.IsOpen() {
		return nil, errors.New("session is closed")
	}
	done := c.session.Track(c.session, c, query, args)
	tag, err := c.exec.Exec(c.session.Context(), query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return result.NewResult(tag.RowsAffected()), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	if !c.session.IsOpen() {
		return nil, errors.New("session is closed")
	}
	done := c.session.Track(c.session, c, query, args)
	r, err := c.exec.Query(c.session.Context(), query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return &rows{Rows: r}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	if !c.session.IsOpen() {
		return &row{err: errors.New("session is closed")}
	}
	done := c.session.Track(c.session, c, query, args)
	r := c.exec.QueryRow(c.session.Context(), query, args...)
	done(nil)
	return &row{row: r}
}

// rows adapts pgx.Rows, whose Close reports nothing, to session.Rows.
type rows struct {
	pgx.Rows
}

func (r *rows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

type row struct {
	row pgx.Row
	err error
}

func (r *row) Err() error {
	return r.err
}

func (r *row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.row.Scan(dest...)
}
