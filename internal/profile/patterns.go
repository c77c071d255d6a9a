package profile

import (
	"regexp"
	"strings"
	"time"
)

// Matchers for the fixed shape-pattern set. Each works on a single
// trimmed value.

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

	// RFC 4122 variants with an explicit version digit.
	uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

	// Country code, two check digits, then a basic bank account number.
	// Lexical only, no checksum validation.
	ibanRe = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`)

	urlRe = regexp.MustCompile(`^https?://[^\s]+$`)

	dateLikeRe = regexp.MustCompile(`^(\d{4}[-/]\d{1,2}[-/]\d{1,2}([T ].+)?|\d{1,2}[-/.]\d{1,2}[-/.]\d{4})$`)
)

func isEmail(s string) bool { return emailRe.MatchString(s) }

func isUUID(s string) bool { return uuidRe.MatchString(s) }

func isIBAN(s string) bool { return ibanRe.MatchString(s) }

func isURL(s string) bool { return urlRe.MatchString(s) }

// isDateLike is the lexical gate; parseDate confirms the value is an
// actual calendar date.
func isDateLike(s string) bool { return dateLikeRe.MatchString(s) }

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
}

func parseDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
