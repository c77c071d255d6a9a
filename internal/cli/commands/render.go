package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sqldeck/sqldeck/internal/adapter"
	"github.com/sqldeck/sqldeck/internal/guard"
	"github.com/sqldeck/sqldeck/internal/profile"
)

// renderResult renders a materialized result set in the requested
// format: table (default), json, csv, or md.
func renderResult(w io.Writer, res *guard.Result, format string) error {
	if res == nil {
		_, _ = fmt.Fprintln(w, "OK")
		return nil
	}

	switch format {
	case "json":
		return renderJSON(w, res.Rows)
	case "csv":
		return renderCSV(w, res.Columns, res.Rows)
	case "md", "markdown":
		return renderMarkdown(w, res.Columns, res.Rows)
	default:
		return renderTable(w, res.Columns, res.Rows)
	}
}

func renderTable(w io.Writer, cols []string, results []map[string]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, result := range results {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(results))
	return nil
}

func renderJSON(w io.Writer, results []map[string]any) error {
	if results == nil {
		results = []map[string]any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, cols []string, results []map[string]any) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, result := range results {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(formatValue(result[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, results []map[string]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, result := range results {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = formatValue(result[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// renderColumns renders a table's column metadata and indexes.
func renderColumns(w io.Writer, tableName string, kind adapter.RelationKind, cols []adapter.Column, indexes []adapter.Index, format string) error {
	if format == "json" {
		out := struct {
			Name    string           `json:"name"`
			Kind    string           `json:"kind"`
			Columns []adapter.Column `json:"columns"`
			Indexes []adapter.Index  `json:"indexes,omitempty"`
		}{Name: tableName, Kind: string(kind), Columns: cols, Indexes: indexes}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	title := "Table"
	if kind == adapter.KindView {
		title = "View"
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", title, tableName)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Key"})

	for _, col := range cols {
		nullable := "YES"
		if col.NotNull {
			nullable = "NO"
		}
		key := ""
		if col.PrimaryKey {
			key = "PK"
		}
		t.AppendRow(table.Row{col.Name, col.DeclaredType, nullable, key})
	}
	t.Render()

	if len(indexes) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Indexes:")
		for _, idx := range indexes {
			unique := ""
			if idx.Unique {
				unique = " (unique)"
			}
			_, _ = fmt.Fprintf(w, "  %s%s [%s]\n", idx.Name, unique, strings.Join(idx.Columns, ", "))
		}
	}

	return nil
}

// renderProfiles renders per-column profiles.
func renderProfiles(w io.Writer, profiles []profile.ColumnProfile, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	}

	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Distinct", "Null %", "Min", "Max", "Top Values", "Patterns", "Issues"})

	for _, p := range profiles {
		t.AppendRow(table.Row{
			p.Key,
			string(p.DetectedType),
			p.DistinctCount,
			strconv.FormatFloat(p.NullRatePercent, 'f', 1, 64),
			formatBound(p.Min),
			formatBound(p.Max),
			formatTopValues(p.TopValues),
			formatPatterns(p.Patterns),
			formatIssues(p.Issues),
		})
	}
	t.Render()
	return nil
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatTopValues(values []profile.ValueCount) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		label := v.Value
		if len(label) > 24 {
			label = label[:21] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", label, v.Count))
	}
	return strings.Join(parts, ", ")
}

func formatPatterns(patterns []profile.PatternMatch) string {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		parts = append(parts, fmt.Sprintf("%s (%d)", p.Name, p.Count))
	}
	return strings.Join(parts, ", ")
}

func formatIssues(issues []profile.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, i := range issues {
		parts = append(parts, string(i))
	}
	return strings.Join(parts, ", ")
}
