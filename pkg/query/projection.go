package query

import (
	"fmt"
	"strings"
)

// Projection maps document fields onto a table that stores each document in a
// JSON column, with selected fields promoted to real columns.
type Projection struct {
	table       string
	data        string
	columns     map[string]string
	selects     []string
	defaultSort []string
	tiebreak    string
}

// NewProjection creates a projection over table whose documents live in dataColumn.
func NewProjection(table, dataColumn string) *Projection {
	return &Projection{
		table:   table,
		data:    dataColumn,
		columns: make(map[string]string),
	}
}

// Project promotes a document field to a table column.
// Promoted fields are selected, filtered, and sorted through the column.
func (p *Projection) Project(column, field string) *Projection {
	p.columns[field] = column
	p.selects = append(p.selects, column)
	return p
}

// DefaultSort sets the columns used to order results when no Sort is requested.
func (p *Projection) DefaultSort(columns ...string) *Projection {
	p.defaultSort = columns
	return p
}

// Tiebreak sets a unique column appended to every explicit sort so that
// rows with equal sort keys keep a stable order across pages.
func (p *Projection) Tiebreak(column string) *Projection {
	p.tiebreak = column
	return p
}

// Table returns the table name.
func (p *Projection) Table() string {
	return p.table
}

// Columns returns the select list: promoted columns followed by the data column.
func (p *Projection) Columns() string {
	cols := append(append([]string{}, p.selects...), p.data)
	return strings.Join(cols, ", ")
}

// expr returns the SQL expression for field along with the arguments it consumes.
// Non-promoted fields are read from the JSON column as text with the key bound as a parameter.
func (p *Projection) expr(field string) (string, []any) {
	if col, ok := p.columns[field]; ok {
		return col, nil
	}
	return fmt.Sprintf("%s ->> $%%d::text", p.data), []any{field}
}

// sortExpr is like expr but keeps the JSON value, so numbers order numerically
// and strings lexically.
func (p *Projection) sortExpr(field string) (string, []any) {
	if col, ok := p.columns[field]; ok {
		return col, nil
	}
	return fmt.Sprintf("%s -> $%%d::text", p.data), []any{field}
}
