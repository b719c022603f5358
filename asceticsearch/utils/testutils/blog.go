package testutils

import (
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

// BlogSchema creates the tables described by NewBlogRegistry.
var BlogSchema = []string{
	`CREATE TABLE authors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT
	)`,
	`CREATE TABLE posts (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT,
		views INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		author_id INTEGER REFERENCES authors (id)
	)`,
	`CREATE TABLE comments (
		id INTEGER PRIMARY KEY,
		post_id INTEGER NOT NULL REFERENCES posts (id),
		author_id INTEGER REFERENCES authors (id),
		body TEXT NOT NULL
	)`,
}

// NewBlogRegistry describes Author, Post and Comment:
// Post.author and Comment.author are many-to-one, Post.comments is one-to-many.
func NewBlogRegistry() (*metadata.Registry, error) {
	b := metadata.NewRegistryBuilder()
	b.Entity("Author", "authors", "id").
		Attribute("id", metadata.KindInt).
		Attribute("name", metadata.KindString).
		NullableAttribute("email", metadata.KindString).
		OneToMany("posts", "Post", "id", "author_id")
	b.Entity("Post", "posts", "id").
		Attribute("id", metadata.KindInt).
		Attribute("title", metadata.KindString).
		NullableAttribute("status", metadata.KindString).
		Attribute("views", metadata.KindInt).
		Attribute("rating", metadata.KindFloat).
		ManyToOne("author", "Author", "author_id", "id").
		OneToMany("comments", "Comment", "id", "post_id")
	b.Entity("Comment", "comments", "id").
		Attribute("id", metadata.KindInt).
		Attribute("body", metadata.KindString).
		ManyToOne("post", "Post", "post_id", "id").
		ManyToOne("author", "Author", "author_id", "id")
	return b.Build()
}

type Author struct {
	ID    int64
	Name  string
	Email string
}

type Post struct {
	ID       int64
	Title    string
	Status   *string
	Views    int64
	Rating   float64
	AuthorID *int64
}

type Comment struct {
	ID       int64
	PostID   int64
	AuthorID *int64
	Body     string
}

func CreateBlogSchema(conn session.DbConnection) error {
	for _, ddl := range BlogSchema {
		if _, err := conn.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

func InsertAuthors(conn session.DbConnection, authors ...Author) error {
	for _, a := range authors {
		var email any
		if a.Email != "" {
			email = a.Email
		}
		if _, err := conn.Exec(
			"INSERT INTO authors (id, name, email) VALUES (?, ?, ?)", a.ID, a.Name, email,
		); err != nil {
			return err
		}
	}
	return nil
}

func InsertPosts(conn session.DbConnection, posts ...Post) error {
	for _, p := range posts {
		if _, err := conn.Exec(
			"INSERT INTO posts (id, title, status, views, rating, author_id) VALUES (?, ?, ?, ?, ?, ?)",
			p.ID, p.Title, nullable(p.Status), p.Views, p.Rating, nullable(p.AuthorID),
		); err != nil {
			return err
		}
	}
	return nil
}

func InsertComments(conn session.DbConnection, comments ...Comment) error {
	for _, c := range comments {
		if _, err := conn.Exec(
			"INSERT INTO comments (id, post_id, author_id, body) VALUES (?, ?, ?, ?)",
			c.ID, c.PostID, nullable(c.AuthorID), c.Body,
		); err != nil {
			return err
		}
	}
	return nil
}

func Ptr[T any](v T) *T {
	return &v
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
