package query

import (
	"fmt"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	projection *Projection
	conditions []condition
	sort       *Sort
}

// NewBuilder creates a Builder for the given projection.
func NewBuilder(projection *Projection) *Builder {
	return &Builder{
		projection: projection,
		conditions: make([]condition, 0),
	}
}

// Scope adds an equality condition on a raw table column that is not part of the document.
func (b *Builder) Scope(column string, value any) *Builder {
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", column),
		args:   []any{value},
	})
	return b
}

// WhereEquals adds an equality condition on a document field. Nil values are ignored.
// Document fields compare as text.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	expr, args := b.projection.expr(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", expr),
		args:   append(args, stringify(value)),
	})
	return b
}

// WhereFilter adds one equality condition per filter field.
func (b *Builder) WhereFilter(f Filter) *Builder {
	for _, field := range f.Fields() {
		b.WhereEquals(field, f[field])
	}
	return b
}

// OrderBy sets the sort. A nil sort falls back to the projection default.
func (b *Builder) OrderBy(s *Sort) *Builder {
	b.sort = s
	return b
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args, _ := b.buildWhere(1)
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where)
	return sql, args
}

// BuildFind returns a SELECT query with ordering. A limit of zero leaves the result unbounded.
func (b *Builder) BuildFind(skip, limit int) (string, []any) {
	where, args, next := b.buildWhere(1)
	orderBy, orderArgs := b.buildOrderBy(next)
	args = append(args, orderArgs...)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		orderBy,
	)

	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	if skip > 0 {
		sql += fmt.Sprintf(" OFFSET %d", skip)
	}

	return sql, args
}

func (b *Builder) buildOrderBy(startParam int) (string, []any) {
	if b.sort == nil {
		if len(b.projection.defaultSort) == 0 {
			return "", nil
		}
		return " ORDER BY " + strings.Join(b.projection.defaultSort, ", "), nil
	}

	dir := "ASC"
	if b.sort.Descending {
		dir = "DESC"
	}

	expr, args := b.projection.sortExpr(b.sort.Field)
	for i := range args {
		expr = strings.Replace(expr, "$%d", fmt.Sprintf("$%d", startParam+i), 1)
	}

	order := fmt.Sprintf(" ORDER BY %s %s", expr, dir)
	if tb := b.projection.tiebreak; tb != "" && tb != expr {
		order += ", " + tb
	}
	return order, args
}

func (b *Builder) buildWhere(startParam int) (string, []any, int) {
	if len(b.conditions) == 0 {
		return "", nil, startParam
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, paramIdx
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
