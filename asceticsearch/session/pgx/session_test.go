package pgx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/utils/testutils"
)

func newPool(t *testing.T) session.SessionPool {
	pool, err := testutils.NewPgSessionPool()
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}
	return pool
}

func TestSavepoints(t *testing.T) {
	pool := newPool(t)

	var escaped session.DbSession
	err := pool.Session(context.Background(), func(s session.Session) error {
		escaped = s.(session.DbSession)
		var queries int
		escaped.OnQueryEnded().Attach(func(session.QueryEndedEvent) { queries++ }, t)

		return s.Atomic(func(txs session.Session) error {
			tx := txs.(session.DbSession)
			_, err := tx.Connection().Exec("CREATE TEMPORARY TABLE tags (name TEXT NOT NULL)")
			require.NoError(t, err)
			_, err = tx.Connection().Exec("INSERT INTO tags (name) VALUES ($1)", "kept")
			require.NoError(t, err)

			err = tx.Atomic(func(nested session.Session) error {
				_, err := nested.(session.DbSession).Connection().Exec("INSERT INTO tags (name) VALUES ($1)", "dropped")
				require.NoError(t, err)
				return assert.AnError
			})
			assert.ErrorIs(t, err, assert.AnError)

			var n int64
			require.NoError(t, tx.Connection().QueryRow("SELECT COUNT(*) FROM tags").Scan(&n))
			assert.Equal(t, int64(1), n)
			// nested transaction sessions share the observers of the root session
			assert.Equal(t, 4, queries)
			return nil
		})
	})
	require.NoError(t, err)
	assert.False(t, escaped.IsOpen())

	_, err = escaped.Connection().Exec("SELECT 1")
	assert.Error(t, err)
}
