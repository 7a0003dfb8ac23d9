// Package querybuilder renders the handful of Postgres statements the state
// store needs. Values always travel as $n arguments; identifiers are trusted
// and come from code, never from input.
package querybuilder

import (
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// statement accumulates SQL text and its positional arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

// bind appends value and writes its placeholder.
func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteString("$" + strconv.Itoa(len(s.args)))
}

func (s *statement) done() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one predicate of a WHERE clause; predicates are AND-ed.
type Condition func(*statement)

func Eq(column string, value any) Condition {
	return func(s *statement) {
		s.write(column, " = ")
		s.bind(value)
	}
}

// In matches any of values. An empty list matches nothing.
func In(column string, values []any) Condition {
	return func(s *statement) {
		if len(values) == 0 {
			s.write("FALSE")
			return
		}
		s.write(column, " IN (")
		for i, value := range values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(value)
		}
		s.write(")")
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit of zero or less means no limit.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, crerr.New("select columns are required")
	case strings.TrimSpace(b.table) == "":
		return "", nil, crerr.New("select table is required")
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	for i, cond := range b.where {
		s.write(pick(i == 0, " WHERE ", " AND "))
		cond(&s)
	}
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.done()
}

// InsertBuilder writes a single-row INSERT, optionally as an upsert.
type InsertBuilder struct {
	table     string
	columns   []string
	values    []any
	conflict  []string
	update    []string
	returning []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// OnConflictUpdate turns the insert into an upsert on target. With no update
// columns every inserted column outside the target is overwritten.
func (b *InsertBuilder) OnConflictUpdate(target []string, update ...string) *InsertBuilder {
	b.conflict = append([]string(nil), target...)
	b.update = append([]string(nil), update...)
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, crerr.New("insert table is required")
	case len(b.columns) == 0:
		return "", nil, crerr.New("insert columns are required")
	case len(b.values) != len(b.columns):
		return "", nil, crerr.Newf("insert has %d values for %d columns", len(b.values), len(b.columns))
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES (")
	for i, value := range b.values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(value)
	}
	s.write(")")

	if len(b.conflict) > 0 {
		update := b.update
		if len(update) == 0 {
			update = without(b.columns, b.conflict)
		}
		s.write(" ON CONFLICT (", strings.Join(b.conflict, ", "), ")")
		if len(update) == 0 {
			s.write(" DO NOTHING")
		} else {
			s.write(" DO UPDATE SET ")
			for i, column := range update {
				if strings.TrimSpace(column) == "" {
					return "", nil, crerr.Newf("conflict update column %d is empty", i)
				}
				s.write(pick(i == 0, "", ", "), column, " = EXCLUDED.", column)
			}
		}
	}
	if len(b.returning) > 0 {
		s.write(" RETURNING ", strings.Join(b.returning, ", "))
	}
	return s.done()
}

func without(columns, drop []string) []string {
	out := make([]string, 0, len(columns))
	for _, column := range columns {
		keep := true
		for _, d := range drop {
			if d == column {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, column)
		}
	}
	return out
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
