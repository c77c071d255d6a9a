// Package complete computes SQL autocomplete suggestions for a
// free-text editor. It is pure and stateless: suggestions are
// recomputed on every text or caret change and never cached.
//
// Visual placement and list navigation are rendering concerns that live
// with the caller; this package only computes and applies suggestions.
package complete

import (
	"strings"
)

// Kind classifies a suggestion.
type Kind string

// Suggestion kinds.
const (
	KindKeyword Kind = "keyword"
	KindTable   Kind = "table"
	KindColumn  Kind = "column"
)

// maxSuggestions caps the ranked list.
const maxSuggestions = 16

// Suggestion is one ephemeral completion candidate.
type Suggestion struct {
	Label      string
	InsertText string
	Kind       Kind
}

// sqlKeywords for baseline keyword completion.
var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT JOIN", "RIGHT JOIN",
	"INNER JOIN", "GROUP BY", "ORDER BY", "HAVING", "LIMIT", "OFFSET",
	"AS", "ON", "AND", "OR", "NOT", "IN", "BETWEEN", "LIKE",
	"IS NULL", "IS NOT NULL", "DISTINCT", "CASE", "WHEN", "THEN",
	"ELSE", "END", "WITH", "UNION", "UNION ALL", "INSERT", "UPDATE",
	"DELETE", "VALUES", "SET", "INTO",
}

// tableContextKeywords put the caret in table-name position.
var tableContextKeywords = map[string]struct{}{
	"FROM": {}, "JOIN": {}, "INTO": {}, "UPDATE": {}, "TABLE": {},
}

// columnContextKeywords put the caret in column-name position.
var columnContextKeywords = map[string]struct{}{
	"SELECT": {}, "WHERE": {}, "AND": {}, "OR": {}, "ON": {},
	"HAVING": {}, "BY": {},
}

type contextKind int

const (
	contextGeneric contextKind = iota
	contextTable
	contextColumn
)

// Suggest computes the ranked suggestion list (at most 16 entries) for
// the caret position. tables are the known table/view names; columns
// are the active table's column names. It never fails; missing schema
// simply narrows the set.
func Suggest(text string, caret int, tables, columns []string) []Suggestion {
	start, _, prefix := TokenAt(text, caret)

	// A dot-qualified token ("c.na") is always column position. Labels
	// stay unqualified and match on the segment after the last dot; the
	// insert text carries the qualifier so replacing the token span
	// keeps it.
	if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
		qualifier, segment := prefix[:i+1], prefix[i+1:]
		ordered := suggestions(columns, KindColumn)
		for j := range ordered {
			ordered[j].InsertText = qualifier + ordered[j].Label
		}
		return rank(ordered, segment)
	}

	var ordered []Suggestion
	switch classifyContext(text[:start]) {
	case contextTable:
		ordered = append(ordered, suggestions(tables, KindTable)...)
		ordered = append(ordered, suggestions(sqlKeywords, KindKeyword)...)
	case contextColumn:
		ordered = append(ordered, suggestions(columns, KindColumn)...)
		ordered = append(ordered, suggestions(sqlKeywords, KindKeyword)...)
		ordered = append(ordered, suggestions(tables, KindTable)...)
	default:
		ordered = append(ordered, suggestions(sqlKeywords, KindKeyword)...)
		ordered = append(ordered, suggestions(tables, KindTable)...)
		ordered = append(ordered, suggestions(columns, KindColumn)...)
	}
	return rank(ordered, prefix)
}

// rank prefix-filters (case-insensitive, empty keeps all), de-duplicates
// by (label, kind), and truncates to the suggestion cap.
func rank(ordered []Suggestion, prefix string) []Suggestion {
	seen := make(map[string]struct{}, len(ordered))
	out := make([]Suggestion, 0, maxSuggestions)
	lowPrefix := strings.ToLower(prefix)

	for _, s := range ordered {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(s.Label), lowPrefix) {
			continue
		}
		key := s.Label + "\x00" + string(s.Kind)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// Apply substitutes the token span at the caret with the suggestion's
// insert text and returns the new text with the caret relocated to the
// end of the insertion.
func Apply(text string, caret int, s Suggestion) (string, int) {
	start, end, _ := TokenAt(text, caret)
	insert := s.InsertText
	if insert == "" {
		insert = s.Label
	}
	newText := text[:start] + insert + text[end:]
	return newText, start + len(insert)
}

// TokenAt scans left and right from the caret across identifier
// characters and returns the token bounds plus the left-of-caret prefix.
func TokenAt(text string, caret int) (start, end int, prefix string) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(text) {
		caret = len(text)
	}

	start = caret
	for start > 0 && isIdentChar(text[start-1]) {
		start--
	}
	end = caret
	for end < len(text) && isIdentChar(text[end]) {
		end++
	}
	return start, end, text[start:caret]
}

// classifyContext decides what the token position most likely names,
// based on the last token preceding it. Dot-qualified tokens never
// reach here; Suggest resolves them as column position directly.
func classifyContext(before string) contextKind {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return contextGeneric
	}

	last := strings.ToUpper(strings.Trim(fields[len(fields)-1], "(),;"))
	if _, ok := tableContextKeywords[last]; ok {
		return contextTable
	}
	if _, ok := columnContextKeywords[last]; ok {
		return contextColumn
	}
	return contextGeneric
}

func suggestions(labels []string, kind Kind) []Suggestion {
	out := make([]Suggestion, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		out = append(out, Suggestion{Label: l, InsertText: l, Kind: kind})
	}
	return out
}

// isIdentChar matches the fixed identifier character class used for
// token extraction: letters, digits, underscore, dot, and double quote.
func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '"'
}
