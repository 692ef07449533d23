package docstore

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction is the sort order of a query.
type Direction int

const (
	Asc Direction = iota
	Desc
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type filter struct {
	field string
	value any
}

// Query selects documents of one collection by equality filters, with at most
// one sort key.
type Query struct {
	collection string
	filters    []filter
	orderField string
	orderDir   Direction
	limit      int
}

// Collection starts a query over every document in name.
func Collection(name string) Query {
	return Query{collection: name}
}

// Where adds an equality filter on a top-level field.
func (q Query) Where(field string, value any) Query {
	filters := make([]filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, filter{field: field, value: value})
	return q
}

// OrderBy sets the sort key, replacing any earlier one.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.orderField = field
	q.orderDir = dir
	return q
}

// Limit caps the number of results. Zero means no limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// CollectionName returns the collection the query runs against.
func (q Query) CollectionName() string {
	return q.collection
}

func (q Query) validate() error {
	if q.collection == "" {
		return fmt.Errorf("query has no collection")
	}
	for _, f := range q.filters {
		if !fieldPattern.MatchString(f.field) {
			return fmt.Errorf("invalid filter field %q", f.field)
		}
	}
	if q.orderField != "" && !fieldPattern.MatchString(q.orderField) {
		return fmt.Errorf("invalid order field %q", q.orderField)
	}
	if q.limit < 0 {
		return fmt.Errorf("invalid limit %d", q.limit)
	}
	return nil
}

// sql builds the statement. Field names are validated before they are inlined.
func (q Query) sql() (string, []any) {
	var b strings.Builder
	args := []any{q.collection}
	b.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	for _, f := range q.filters {
		fmt.Fprintf(&b, " AND json_extract(data, '$.%s') = ?", f.field)
		args = append(args, f.value)
	}
	if q.orderField != "" {
		dir := "ASC"
		if q.orderDir == Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY json_extract(data, '$.%s') %s, id %s", q.orderField, dir, dir)
	} else {
		b.WriteString(" ORDER BY id ASC")
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.limit)
	}
	return b.String(), args
}
