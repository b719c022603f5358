package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	pgxsession "github.com/krew-solutions/ascetic-search-go/asceticsearch/session/pgx"
	sqlsession "github.com/krew-solutions/ascetic-search-go/asceticsearch/session/sql"
)

// OpenSessionPool connects to the configured database. The returned function
// releases the underlying pool.
func (cfg Config) OpenSessionPool(ctx context.Context) (session.SessionPool, func(), error) {
	switch cfg.Database.Driver {
	case "pgx", "postgres", "postgresql":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create pgx pool: %w", err)
		}
		return pgxsession.NewSessionPool(pool), pool.Close, nil

	case "sqlite", "sqlite3":
		db, err := sql.Open("sqlite", cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open sqlite database: %w", err)
		}
		return sqlsession.NewSessionPool(db), func() { _ = db.Close() }, nil

	case "mysql":
		mc, err := mysql.ParseDSN(cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot parse mysql dsn: %w", err)
		}
		// time columns are scanned into time.Time
		mc.ParseTime = true
		connector, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create mysql connector: %w", err)
		}
		db := sql.OpenDB(connector)
		return sqlsession.NewSessionPool(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("invalid database driver: %s", cfg.Database.Driver)
	}
}
