package config

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	sqlcriteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/infrastructure"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

const blogConfig = `
logger:
  level: debug
  type: json
database:
  driver: sqlite
  dsn: "file::memory:"
search:
  case_sensitive: true
entities:
  - name: Post
    table: posts
    primary_key: id
    attributes:
      - {name: id, kind: int}
      - {name: title, kind: string}
      - {name: status, kind: string, nullable: true}
      - {name: authorId, column: author_id, kind: int}
    relationships:
      - {name: author, target: Author, local: author_id, remote: id}
      - name: comments
        target: Comment
        type: one_to_many
        keys:
          - {local: id, remote: post_id}
  - name: Author
    table: authors
    primary_key: id
    attributes:
      - {name: id, kind: int}
      - {name: name, kind: string}
  - name: Comment
    table: comments
    primary_key: id
    attributes:
      - {name: id, kind: int}
      - {name: body, kind: string}
`

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`database: {driver: pgx}`))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "text", cfg.Logger.Type)
		assert.Equal(t, DefaultPageSize, cfg.Search.DefaultPageSize)
		assert.False(t, cfg.Search.CaseSensitive)
	})

	t.Run("blog", func(t *testing.T) {
		cfg, err := Parse([]byte(blogConfig))
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.True(t, cfg.Search.CaseSensitive)
		assert.Len(t, cfg.Entities, 3)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte("logger: ["))
		assert.Error(t, err)
	})

	t.Run("negative page size", func(t *testing.T) {
		_, err := Parse([]byte("search: {default_page_size: -1}"))
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("blog", func(t *testing.T) {
		cfg, err := Parse([]byte(blogConfig))
		require.NoError(t, err)
		registry, err := cfg.Registry()
		require.NoError(t, err)

		post, ok := registry.Entity("Post")
		require.True(t, ok)
		assert.Equal(t, "posts", post.Table())
		authorID, ok := post.Attribute("authorId")
		require.True(t, ok)
		assert.Equal(t, "author_id", authorID.Column)
		assert.Equal(t, metadata.KindInt, authorID.Kind)

		author, ok := post.Relationship("author")
		require.True(t, ok)
		assert.False(t, author.ToMany)
		assert.Equal(t, []metadata.KeyPair{{Local: "author_id", Remote: "id"}}, author.Keys)

		comments, ok := post.Relationship("comments")
		require.True(t, ok)
		assert.True(t, comments.ToMany)
		assert.Equal(t, []metadata.KeyPair{{Local: "id", Remote: "post_id"}}, comments.Keys)
	})

	t.Run("collects every problem", func(t *testing.T) {
		cfg, err := Parse([]byte(`
entities:
  - name: Post
    table: posts
    primary_key: id
    attributes:
      - {name: id, kind: integer}
      - {name: title, kind: text}
    relationships:
      - {name: author, target: Author, type: many_to_many, local: author_id, remote: id}
`))
		require.NoError(t, err)
		_, err = cfg.Registry()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 errors occurred")
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Config{Logger: LoggerConfig{Level: "info", Type: "json"}}.NewLogger(&buf)
		require.NoError(t, err)
		logger.Debug("hidden")
		logger.Info("shown", "key", "value")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"key":"value"`)
	})

	t.Run("colored text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := Config{Logger: LoggerConfig{Level: "debug", Type: "colored-text"}}.NewLogger(&buf)
		require.NoError(t, err)
		logger.Debug("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Config{Logger: LoggerConfig{Level: "verbose", Type: "json"}}.NewLogger(nil)
		assert.Error(t, err)
		_, err = Config{Logger: LoggerConfig{Level: "info", Type: "xml"}}.NewLogger(nil)
		assert.Error(t, err)
		_, err = Config{Logger: LoggerConfig{Level: "info", Type: "json", Output: "syslog"}}.NewLogger(nil)
		assert.Error(t, err)
	})
}

func TestDialect(t *testing.T) {
	for driver, expected := range map[string]sqlcriteria.Dialect{
		"pgx":    sqlcriteria.PostgreSQL,
		"sqlite": sqlcriteria.SQLite,
		"mysql":  sqlcriteria.MySQL,
	} {
		d, err := Config{Database: DatabaseConfig{Driver: driver}}.Dialect()
		require.NoError(t, err)
		assert.Equal(t, expected, d)
	}
	_, err := Config{Database: DatabaseConfig{Driver: "oracle"}}.Dialect()
	assert.Error(t, err)
}

func TestOpenSessionPool(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cfg, err := Parse([]byte(blogConfig))
		require.NoError(t, err)
		pool, closePool, err := cfg.OpenSessionPool(context.Background())
		require.NoError(t, err)
		defer closePool()

		err = pool.Session(context.Background(), func(s session.Session) error {
			assert.True(t, s.IsOpen())
			var one int
			return s.(session.DbSession).Connection().QueryRow("SELECT 1").Scan(&one)
		})
		assert.NoError(t, err)
	})

	t.Run("mysql dsn is validated", func(t *testing.T) {
		cfg := Config{Database: DatabaseConfig{Driver: "mysql", DSN: "not a dsn"}}
		_, _, err := cfg.OpenSessionPool(context.Background())
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := Config{Database: DatabaseConfig{Driver: "oracle"}}
		_, _, err := cfg.OpenSessionPool(context.Background())
		assert.Error(t, err)
	})
}
