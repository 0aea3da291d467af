// Package query composes parameterized SELECT statements. A page query and
// its count query are built from the same Where, so they always filter the
// same rows.
package query

import (
	"fmt"
	"strings"

	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/internal/utils/stringutils"
)

// Where is a conjunction of predicates and the arguments bound to their
// $n placeholders. The zero value matches every row.
type Where struct {
	clauses []string
	args    []any
	never   bool
}

// Bind adds value to the argument list and returns its placeholder.
func (w *Where) Bind(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

// Andf adds a predicate; each %s verb in format receives the placeholder of
// the matching value.
func (w *Where) Andf(format string, values ...any) *Where {
	placeholders := functional.Map(values, func(value any) any { return w.Bind(value) })
	w.clauses = append(w.clauses, fmt.Sprintf(format, placeholders...))
	return w
}

func (w *Where) Eq(column string, value any) *Where {
	return w.Andf(column+" = %s", value)
}

// In restricts column to values. An empty set matches nothing.
func (w *Where) In(column string, values []string) *Where {
	if len(values) == 0 {
		w.never = true
		return w
	}
	placeholders, args := stringutils.INCluse(values, len(w.args)+1)
	w.args = append(w.args, args...)
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return w
}

// Never reports whether the predicate can match no row at all.
func (w *Where) Never() bool {
	return w.never
}

func (w *Where) SQL() string {
	if w.never {
		return " WHERE 1 = 0"
	}
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the bound arguments, or none when the predicate matches nothing.
func (w *Where) Args() []any {
	if w.never {
		return nil
	}
	return append([]any(nil), w.args...)
}

// Select is a single-table read with optional ordering and window.
type Select struct {
	Columns string
	From    string
	Where   *Where
	OrderBy string
	Limit   int
	Offset  int
}

func (s Select) where() *Where {
	if s.Where == nil {
		return &Where{}
	}
	return s.Where
}

// SQL renders the page query. Limit and Offset are bound after the
// predicate arguments; a Limit of zero renders no window.
func (s Select) SQL() (string, []any) {
	where := s.where()
	args := where.Args()

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s", s.Columns, s.From, where.SQL())
	if s.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", s.OrderBy)
	}
	if s.Limit > 0 {
		args = append(args, s.Limit, s.Offset)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return b.String(), args
}

// CountSQL renders the count of every row the predicate matches, ignoring
// ordering and window.
func (s Select) CountSQL() (string, []any) {
	where := s.where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.From, where.SQL()), where.Args()
}
