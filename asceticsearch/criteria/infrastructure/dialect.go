package criteria

import (
	"fmt"
	"strconv"
	"strings"
)

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

// LikeForm is how an engine spells a case-sensitive LIKE.
type LikeForm int

const (
	// LikePlain is for engines whose LIKE already compares case-sensitively.
	LikePlain LikeForm = iota
	// LikeGlob rewrites the pattern for GLOB, which is the case-sensitive matcher of SQLite.
	LikeGlob
	// LikeBinary compares the pattern as a binary string.
	LikeBinary
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	name        string
	placeholder PlaceholderStyle
	quote       string
	// nativeILike is true when the engine has a case-insensitive LIKE operator
	nativeILike bool
	exactLike   LikeForm
}

var (
	PostgreSQL = Dialect{name: "postgres", placeholder: PlaceholderDollar, quote: `"`, nativeILike: true}
	SQLite     = Dialect{name: "sqlite", placeholder: PlaceholderQuestion, quote: `"`, exactLike: LikeGlob}
	MySQL      = Dialect{name: "mysql", placeholder: PlaceholderQuestion, quote: "`", exactLike: LikeBinary}
)

// DialectByName accepts the dialect name or a driver name commonly used with it.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unknown SQL dialect %q", name)
}

func (d Dialect) Name() string {
	return d.name
}

// Placeholder returns the marker of the index-th (1-based) argument.
func (d Dialect) Placeholder(index int) string {
	if d.placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// Quote quotes an identifier. Identifiers are validated by the metadata registry,
// so they never contain the quote character.
func (d Dialect) Quote(identifier string) string {
	return d.quote + identifier + d.quote
}

// arguments allocates placeholders in rendering order.
type arguments struct {
	dialect Dialect
	values  []any
}

func newArguments(d Dialect) *arguments {
	return &arguments{dialect: d, values: make([]any, 0)}
}

func (a *arguments) add(v any) string {
	a.values = append(a.values, v)
	return a.dialect.Placeholder(len(a.values))
}

// globPattern translates a LIKE pattern into GLOB syntax, bracketing the
// characters GLOB treats as wildcards.
func globPattern(like string) string {
	var b strings.Builder
	b.Grow(len(like))
	for _, r := range like {
		switch r {
		case '%':
			b.WriteByte('*')
		case '_':
			b.WriteByte('?')
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
