// Package sqltext provides small, dialect-agnostic helpers for working
// with SQL as text: identifier validation, literal escaping, and the
// normalized form used for statement identity comparison.
package sqltext

import (
	"strings"
	"unicode"
)

// ValidIdent reports whether s is safe to interpolate into generated SQL
// as a table or column name. Only ASCII letters, digits and underscores
// are accepted, and the first character must not be a digit. This is the
// sole injection defense for unparameterized identifiers; values are
// escaped separately.
func ValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// QuoteIdent wraps an already-validated identifier in double quotes.
func QuoteIdent(s string) string {
	return `"` + s + `"`
}

// EscapeString doubles every single quote so s can be embedded in a
// single-quoted SQL string literal.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Normalize returns the identity form of a SQL statement: runs of
// whitespace collapsed to single spaces, surrounding whitespace trimmed,
// and the whole text case-folded. Two statements with equal normalized
// forms are treated as the same statement for history and library
// de-duplication.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// LeadingKeyword returns the first whitespace-delimited token of the
// statement, upper-cased. Returns "" for blank input.
func LeadingKeyword(s string) string {
	s = strings.TrimSpace(s)
	end := len(s)
	for i, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ';' {
			end = i
			break
		}
	}
	return strings.ToUpper(s[:end])
}
