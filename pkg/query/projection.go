// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column).
// It defines the table, alias, and column mappings for SQL query construction.
type ProjectionMap struct {
	schema     string
	table      string
	rootAlias  string
	alias      string
	columns    map[string]string
	columnList []string
	joins      []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		rootAlias:  alias,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
		joins:      make([]string, 0),
	}
}

// Project adds a column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Alias returns the root table alias.
func (p *ProjectionMap) Alias() string {
	return p.rootAlias
}

// Table returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.rootAlias)
}

// Join registers a joined table and switches the active alias, so subsequent
// Project calls qualify against the joined table.
func (p *ProjectionMap) Join(schema, table, alias, joinType, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf("%s %s.%s %s ON %s", joinType, schema, table, alias, on))
	p.alias = alias
	return p
}

// ProjectExpression adds a raw SQL expression under a view property name.
// Unlike Project, the expression is not alias-qualified.
func (p *ProjectionMap) ProjectExpression(expression, viewName string) *ProjectionMap {
	p.columns[viewName] = expression
	p.columnList = append(p.columnList, fmt.Sprintf("%s AS %s", expression, viewName))
	return p
}

// From returns the FROM clause body: the aliased table reference followed by
// any registered JOIN clauses.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}
	return p.Table() + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
