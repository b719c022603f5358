package sql

import (
	"context"
	"database/sql"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

type SessionPool struct {
	db *sql.DB
}

func NewSessionPool(db *sql.DB) *SessionPool {
	return &SessionPool{db: db}
}

// Session runs callback with a session bound to one pooled connection.
// The session is closed when callback returns.
func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := NewSession(ctx, conn)
	defer sess.close()

	return callback(sess)
}
