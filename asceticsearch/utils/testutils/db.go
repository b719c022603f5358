package testutils

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	pgxsession "github.com/krew-solutions/ascetic-search-go/asceticsearch/session/pgx"
	sqlsession "github.com/krew-solutions/ascetic-search-go/asceticsearch/session/sql"
)

func NewPgSessionPool() (session.SessionPool, error) {
	var db_username string = getEnv("DB_USERNAME", "devel")
	var db_password string = getEnv("DB_PASSWORD", "devel")
	var db_host string = getEnv("DB_HOST", "localhost")
	var db_port string = getEnv("DB_PORT", "5432")
	var db_basename string = getEnv("DB_DATABASE", "devel_grade")

	connString := "postgres://" + db_username + ":" + db_password + "@" + db_host + ":" + db_port + "/" + db_basename

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return pgxsession.NewSessionPool(pool), nil
}

// NewSqliteDb opens a private in-memory database. A single connection keeps
// every session on the same database.
func NewSqliteDb() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func NewSqliteSessionPool(db *sql.DB) session.SessionPool {
	return sqlsession.NewSessionPool(db)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

// DollarConnection rewrites "?" placeholders to "$N" so the fixtures written
// for SQLite run unchanged on PostgreSQL.
type DollarConnection struct {
	session.DbConnection
}

func NewDollarConnection(conn session.DbConnection) DollarConnection {
	return DollarConnection{DbConnection: conn}
}

func (c DollarConnection) Exec(query string, args ...any) (session.Result, error) {
	return c.DbConnection.Exec(rebind(query), args...)
}

func (c DollarConnection) Query(query string, args ...any) (session.Rows, error) {
	return c.DbConnection.Query(rebind(query), args...)
}

func (c DollarConnection) QueryRow(query string, args ...any) session.Row {
	return c.DbConnection.QueryRow(rebind(query), args...)
}

func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
