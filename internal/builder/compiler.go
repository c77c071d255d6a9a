package builder

import (
	"fmt"
	"strings"

	"github.com/sqldeck/sqldeck/internal/adapter"
	"github.com/sqldeck/sqldeck/internal/sqltext"
)

// Compile turns a Spec into SQL text against the given schema snapshot.
// It is a pure function and never fails: degenerate input (no table,
// nothing projectable) yields an empty string, which callers must treat
// as "nothing to run". Identifiers that fail the safety check are
// omitted rather than emitted.
func Compile(spec Spec, schema []adapter.Column) string {
	if !sqltext.ValidIdent(spec.Table) {
		return ""
	}

	var clauses []string

	clauses = append(clauses, "SELECT "+projection(spec))
	clauses = append(clauses, "FROM "+spec.Table)

	if where := predicate(spec, schema); where != "" {
		clauses = append(clauses, "WHERE "+where)
	}
	if group := grouping(spec); group != "" {
		clauses = append(clauses, "GROUP BY "+group)
	}
	if order := ordering(spec); order != "" {
		clauses = append(clauses, "ORDER BY "+order)
	}
	if spec.Limit > 0 {
		clauses = append(clauses, fmt.Sprintf("LIMIT %d", spec.Limit))
	}

	return strings.Join(clauses, " ")
}

// projection builds the select list. With aggregations present, the
// group dimensions drive the non-aggregated projection and the plain
// column selection is ignored.
func projection(spec Spec) string {
	if len(spec.Aggregations) == 0 {
		cols := validIdents(spec.Columns)
		if len(cols) == 0 {
			return "*"
		}
		return strings.Join(cols, ", ")
	}

	var parts []string
	for _, dim := range validIdents(spec.GroupBy) {
		parts = append(parts, sqltext.QuoteIdent(dim))
	}
	for _, agg := range spec.Aggregations {
		if !sqltext.ValidIdent(agg.Column) {
			continue
		}
		alias := agg.Alias
		if alias == "" {
			alias = fmt.Sprintf("%s_%s", agg.Func, agg.Column)
		}
		if !sqltext.ValidIdent(alias) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s) AS %s", strings.ToUpper(string(agg.Func)), agg.Column, alias))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ", ")
}

// predicate builds the WHERE clause body, joining every filter with the
// spec's single connective.
func predicate(spec Spec, schema []adapter.Column) string {
	logic := spec.FilterLogic
	if logic != LogicOr {
		logic = LogicAnd
	}

	var parts []string
	for _, f := range spec.Filters {
		if !sqltext.ValidIdent(f.Column) {
			continue
		}
		switch f.Operator {
		case OpIsNull:
			parts = append(parts, f.Column+" IS NULL")
		case OpIsNotNull:
			parts = append(parts, f.Column+" IS NOT NULL")
		case OpContains:
			parts = append(parts, fmt.Sprintf("%s LIKE '%%%s%%'", f.Column, sqltext.EscapeString(f.Value)))
		case OpEqual, OpNotEqual, OpGreater, OpLess:
			parts = append(parts, fmt.Sprintf("%s %s %s", f.Column, f.Operator, literal(f, schema)))
		}
	}
	return strings.Join(parts, " "+string(logic)+" ")
}

// literal renders a comparison value. The value is quoted only when the
// column's declared type is textual; a column missing from the schema
// snapshot falls back to an unquoted literal.
func literal(f Filter, schema []adapter.Column) string {
	if isTextual(f.Column, schema) {
		return "'" + sqltext.EscapeString(f.Value) + "'"
	}
	return f.Value
}

func isTextual(column string, schema []adapter.Column) bool {
	for _, col := range schema {
		if col.Name == column {
			t := strings.ToLower(col.DeclaredType)
			return strings.Contains(t, "char") || strings.Contains(t, "text")
		}
	}
	return false
}

// grouping is emitted only in aggregate mode.
func grouping(spec Spec) string {
	if len(spec.Aggregations) == 0 {
		return ""
	}
	var parts []string
	for _, dim := range validIdents(spec.GroupBy) {
		parts = append(parts, sqltext.QuoteIdent(dim))
	}
	return strings.Join(parts, ", ")
}

func ordering(spec Spec) string {
	var parts []string
	for _, o := range spec.OrderBy {
		if !sqltext.ValidIdent(o.Column) {
			continue
		}
		dir := o.Direction
		if dir != SortDesc {
			dir = SortAsc
		}
		parts = append(parts, o.Column+" "+string(dir))
	}
	return strings.Join(parts, ", ")
}

func validIdents(names []string) []string {
	var out []string
	for _, n := range names {
		if sqltext.ValidIdent(n) {
			out = append(out, n)
		}
	}
	return out
}
