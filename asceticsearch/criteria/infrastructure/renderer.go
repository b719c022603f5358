package criteria

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	d "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	q "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/query"
)

// Statement is a rendered SQL statement with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// SelectStatement additionally reports how many trailing columns were appended
// for ordering; they follow the requested columns and carry no entity data.
type SelectStatement struct {
	Statement
	Extra int
}

// Assignment sets one column of the root table in a bulk update.
type Assignment struct {
	Column string
	Value  any
}

// Renderer turns compiled queries into SQL of one dialect.
type Renderer struct {
	dialect Dialect
}

func NewRenderer(dialect Dialect) *Renderer {
	return &Renderer{dialect: dialect}
}

func (r *Renderer) Dialect() Dialect {
	return r.dialect
}

// Select renders the root entity columns of the matching rows, ordered and paged.
// Rows are made distinct when a collection-valued join may repeat them.
func (r *Renderer) Select(cq *d.CompiledQuery, columns []metadata.Attribute) (SelectStatement, error) {
	if len(columns) == 0 {
		return SelectStatement{}, fmt.Errorf("select requires at least one column")
	}
	args := newArguments(r.dialect)
	root := cq.Root()

	selected := make([]string, 0, len(columns))
	for _, c := range columns {
		selected = append(selected, column(r.dialect, q.NewField(root, c)))
	}
	requested := len(selected)

	orderBy := r.orderBy(cq)
	distinct := cq.Graph.HasToMany()
	if distinct {
		for _, o := range orderBy {
			if !slices.Contains(selected, o.expression) {
				selected = append(selected, o.expression)
			}
		}
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	if distinct {
		sql.WriteString("DISTINCT ")
	}
	sql.WriteString(strings.Join(selected, ", "))
	sql.WriteString(" FROM ")
	sql.WriteString(r.from(cq.Graph))
	if err := r.where(&sql, cq, args); err != nil {
		return SelectStatement{}, err
	}
	if len(orderBy) > 0 {
		parts := make([]string, 0, len(orderBy))
		for _, o := range orderBy {
			parts = append(parts, o.String())
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(parts, ", "))
	}
	if cq.Page.IsPaged() {
		sql.WriteString(" LIMIT ")
		sql.WriteString(strconv.Itoa(cq.Page.Size))
		sql.WriteString(" OFFSET ")
		sql.WriteString(strconv.Itoa(cq.Page.Offset()))
	}
	return SelectStatement{
		Statement: Statement{SQL: sql.String(), Args: args.values},
		Extra:     len(selected) - requested,
	}, nil
}

// Count renders the number of distinct matching root rows.
func (r *Renderer) Count(cq *d.CompiledQuery) (Statement, error) {
	args := newArguments(r.dialect)
	var sql strings.Builder
	if cq.Graph.HasToMany() {
		pk := column(r.dialect, q.NewField(cq.Root(), cq.Root().Entity().PrimaryKey()))
		sql.WriteString("SELECT COUNT(DISTINCT " + pk + ")")
	} else {
		sql.WriteString("SELECT COUNT(*)")
	}
	sql.WriteString(" FROM ")
	sql.WriteString(r.from(cq.Graph))
	if err := r.where(&sql, cq, args); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql.String(), Args: args.values}, nil
}

// Exists renders a single boolean telling whether any root row matches.
func (r *Renderer) Exists(cq *d.CompiledQuery) (Statement, error) {
	args := newArguments(r.dialect)
	var sql strings.Builder
	sql.WriteString("SELECT EXISTS (SELECT 1 FROM ")
	sql.WriteString(r.from(cq.Graph))
	if err := r.where(&sql, cq, args); err != nil {
		return Statement{}, err
	}
	sql.WriteString(")")
	return Statement{SQL: sql.String(), Args: args.values}, nil
}

// Delete removes the matching root rows. The related tables are never touched.
func (r *Renderer) Delete(cq *d.CompiledQuery) (Statement, error) {
	args := newArguments(r.dialect)
	var sql strings.Builder
	sql.WriteString("DELETE FROM ")
	sql.WriteString(r.dialect.Quote(cq.Root().Entity().Table()))
	if err := r.matching(&sql, cq, args); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql.String(), Args: args.values}, nil
}

// Update assigns values to root table columns of the matching rows.
func (r *Renderer) Update(cq *d.CompiledQuery, assignments []Assignment) (Statement, error) {
	if len(assignments) == 0 {
		return Statement{}, fmt.Errorf("update requires at least one assignment")
	}
	args := newArguments(r.dialect)
	var sql strings.Builder
	sql.WriteString("UPDATE ")
	sql.WriteString(r.dialect.Quote(cq.Root().Entity().Table()))
	sql.WriteString(" SET ")
	for i, a := range assignments {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(r.dialect.Quote(a.Column))
		sql.WriteString(" = ")
		sql.WriteString(args.add(a.Value))
	}
	if err := r.matching(&sql, cq, args); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql.String(), Args: args.values}, nil
}

// matching restricts a bulk statement to the primary keys selected through the join graph.
// The derived table lets MySQL read the table being modified.
func (r *Renderer) matching(sql *strings.Builder, cq *d.CompiledQuery, args *arguments) error {
	root := cq.Root()
	pk := root.Entity().PrimaryKey()
	sql.WriteString(" WHERE ")
	sql.WriteString(r.dialect.Quote(pk.Column))
	sql.WriteString(" IN (SELECT matched_id FROM (SELECT ")
	sql.WriteString(column(r.dialect, q.NewField(root, pk)))
	sql.WriteString(" AS matched_id FROM ")
	sql.WriteString(r.from(cq.Graph))
	if err := r.where(sql, cq, args); err != nil {
		return err
	}
	sql.WriteString(") AS matched)")
	return nil
}

func (r *Renderer) from(g *q.Graph) string {
	var sql strings.Builder
	root := g.Root()
	sql.WriteString(r.dialect.Quote(root.Entity().Table()))
	sql.WriteString(" AS ")
	sql.WriteString(root.Alias())
	for _, n := range g.Joins() {
		sql.WriteString(" ")
		sql.WriteString(string(n.JoinType()))
		sql.WriteString(" ")
		sql.WriteString(r.dialect.Quote(n.Entity().Table()))
		sql.WriteString(" AS ")
		sql.WriteString(n.Alias())
		sql.WriteString(" ON ")
		for i, k := range n.Relationship().Keys {
			if i > 0 {
				sql.WriteString(" AND ")
			}
			sql.WriteString(n.Parent().Alias() + "." + r.dialect.Quote(k.Local))
			sql.WriteString(" = ")
			sql.WriteString(n.Alias() + "." + r.dialect.Quote(k.Remote))
		}
	}
	return sql.String()
}

func (r *Renderer) where(sql *strings.Builder, cq *d.CompiledQuery, args *arguments) error {
	if cq.Where == nil {
		return nil
	}
	v := NewSqlVisitor(r.dialect, args)
	if err := cq.Where.Accept(v); err != nil {
		return err
	}
	sql.WriteString(" WHERE ")
	sql.WriteString(v.sql)
	return nil
}

type orderTerm struct {
	expression string
	descending bool
}

func (o orderTerm) String() string {
	if o.descending {
		return o.expression + " DESC"
	}
	return o.expression + " ASC"
}

// orderBy appends the root primary key so that paging is deterministic.
func (r *Renderer) orderBy(cq *d.CompiledQuery) []orderTerm {
	root := cq.Root()
	pk := column(r.dialect, q.NewField(root, root.Entity().PrimaryKey()))
	terms := make([]orderTerm, 0, len(cq.Order)+1)
	hasPk := false
	for _, o := range cq.Order {
		expr := column(r.dialect, o.Field)
		if expr == pk {
			hasPk = true
		}
		terms = append(terms, orderTerm{expression: expr, descending: o.Descending})
	}
	if !hasPk {
		terms = append(terms, orderTerm{expression: pk})
	}
	return terms
}
