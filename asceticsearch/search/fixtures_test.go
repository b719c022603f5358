package search

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/icrowley/fake"
	"github.com/stretchr/testify/require"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	sqlcriteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/infrastructure"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/utils/testutils"
)

func mapPost(r Record) (testutils.Post, error) {
	p := testutils.Post{
		ID:     r["id"].(int64),
		Title:  r["title"].(string),
		Views:  r["views"].(int64),
		Rating: r["rating"].(float64),
	}
	if status, ok := r["status"].(string); ok {
		p.Status = &status
	}
	return p, nil
}

func ids(posts []testutils.Post) []int64 {
	result := make([]int64, 0, len(posts))
	for _, p := range posts {
		result = append(result, p.ID)
	}
	return result
}

func newPostService(t *testing.T, dialect sqlcriteria.Dialect, logs *bytes.Buffer, eopts ...criteria.EvaluatorOption) *Service[testutils.Post] {
	registry, err := testutils.NewBlogRegistry()
	require.NoError(t, err)
	compiler := criteria.NewCompiler(registry, criteria.NewEvaluator(eopts...))

	var opts []Option
	if logs != nil {
		opts = append(opts, WithLogger(slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	svc, err := NewService[testutils.Post](compiler, sqlcriteria.NewRenderer(dialect), "Post", mapPost, opts...)
	require.NoError(t, err)
	return svc
}

var (
	alice = testutils.Author{ID: 1, Name: "Alice", Email: "alice@example.com"}
	bob   = testutils.Author{ID: 2, Name: "Bob"}
)

// blogPosts are ten posts; Alice wrote 1, 2 and 9, Bob wrote 3 and 4, post 8 has no author.
func blogPosts() []testutils.Post {
	open, draft, closed := "OPEN", "DRAFT", "CLOSED"
	return []testutils.Post{
		{ID: 1, Title: "Introduction to Go", Status: &open, Views: 10, Rating: 4.5, AuthorID: testutils.Ptr[int64](1)},
		{ID: 2, Title: "Advanced Go", Status: &open, Views: 20, Rating: 3.0, AuthorID: testutils.Ptr[int64](1)},
		{ID: 3, Title: "An intro to SQL", Status: &draft, Views: 5, Rating: 2.0, AuthorID: testutils.Ptr[int64](2)},
		{ID: 4, Title: "Concurrency", Views: 0, Rating: 0, AuthorID: testutils.Ptr[int64](2)},
		{ID: 5, Title: "Testing", Status: &open, Views: 7, Rating: 3.5, AuthorID: testutils.Ptr[int64](3)},
		{ID: 6, Title: "Profiling", Status: &closed, Views: 3, Rating: 1.0, AuthorID: testutils.Ptr[int64](4)},
		{ID: 7, Title: "Generics", Views: 12, Rating: 4.0, AuthorID: testutils.Ptr[int64](5)},
		{ID: 8, Title: "Modules", Status: &draft, Views: 1, Rating: 2.5},
		{ID: 9, Title: "Errors", Status: &open, Views: 8, Rating: 3.2, AuthorID: testutils.Ptr[int64](1)},
		{ID: 10, Title: "Channels", Views: 9, Rating: 4.8, AuthorID: testutils.Ptr[int64](3)},
	}
}

func seedBlog(t *testing.T, conn session.DbConnection) {
	require.NoError(t, testutils.CreateBlogSchema(conn))

	authors := []testutils.Author{alice, bob}
	for id := int64(3); id <= 5; id++ {
		authors = append(authors, testutils.Author{ID: id, Name: fake.FullName(), Email: fake.EmailAddress()})
	}
	require.NoError(t, testutils.InsertAuthors(conn, authors...))
	require.NoError(t, testutils.InsertPosts(conn, blogPosts()...))
	require.NoError(t, testutils.InsertComments(conn,
		testutils.Comment{ID: 1, PostID: 1, AuthorID: testutils.Ptr[int64](2), Body: "great"},
		testutils.Comment{ID: 2, PostID: 1, AuthorID: testutils.Ptr[int64](3), Body: "great"},
		testutils.Comment{ID: 3, PostID: 2, AuthorID: testutils.Ptr[int64](2), Body: "great"},
		testutils.Comment{ID: 4, PostID: 7, AuthorID: testutils.Ptr[int64](1), Body: "nice"},
	))
}

// withBlog runs fn inside a session of a freshly seeded in-memory database.
func withBlog(t *testing.T, fn func(sess session.DbSession)) {
	db, err := testutils.NewSqliteDb()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pool := testutils.NewSqliteSessionPool(db)
	err = pool.Session(context.Background(), func(s session.Session) error {
		sess := s.(session.DbSession)
		seedBlog(t, sess.Connection())
		fn(sess)
		return nil
	})
	require.NoError(t, err)
}
