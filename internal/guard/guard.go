// Package guard implements the guarded execution pipeline: statement
// classification, confirmation gating, automatic LIMIT injection,
// recency history, cancellation, and debounced plan inspection.
//
// Classification is keyword-based by design. It is a best-effort safety
// net over statement text, not a SQL parser; the keyword sets below are
// fixed so behavior stays reproducible.
package guard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sqldeck/sqldeck/internal/sqltext"
)

// Guard errors.
var (
	// ErrEmptyStatement is returned when the input is blank.
	ErrEmptyStatement = errors.New("empty statement")

	// ErrConfirmationDeclined is returned when the user declines a
	// required confirmation. It is a user cancellation, not a failure;
	// nothing has executed and no state has changed.
	ErrConfirmationDeclined = errors.New("confirmation declined")
)

// guardAlias names the subquery the guard wraps SELECT statements in.
const guardAlias = "guarded_sub"

// writeKeywords are the leading tokens that classify a statement as a
// write requiring confirmation.
var writeKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {},
	"CREATE": {}, "ALTER": {}, "REPLACE": {}, "TRUNCATE": {},
	"VACUUM": {}, "ATTACH": {}, "DETACH": {},
}

var limitClauseRe = regexp.MustCompile(`(?i)\blimit\b`)

// Options carries the ambient execution settings. They are passed
// explicitly so Prepare stays pure and testable.
type Options struct {
	// MaxRows caps how many rows a guarded SELECT may return.
	// Values below 1 are treated as 1.
	MaxRows int

	// ConfirmUnboundedSelect requires confirmation before running a
	// SELECT that carries no LIMIT clause of its own.
	ConfirmUnboundedSelect bool
}

// Cap returns the effective row cap.
func (o Options) Cap() int {
	if o.MaxRows < 1 {
		return 1
	}
	return o.MaxRows
}

// Plan is the outcome of preparing a raw statement for execution.
type Plan struct {
	// Statement is the trimmed pre-wrap text. This is what history and
	// the statement library record.
	Statement string

	// ExecutionSQL is what actually goes to the engine.
	ExecutionSQL string

	// IsWrite indicates the statement's leading keyword is in the
	// write set.
	IsWrite bool

	// IsSelect indicates a SELECT-class statement.
	IsSelect bool

	// NeedsWriteConfirm requires explicit user confirmation before a
	// write executes.
	NeedsWriteConfirm bool

	// NeedsLimitConfirm requires confirmation before an unbounded
	// SELECT executes, naming AppliedLimit as the cap.
	NeedsLimitConfirm bool

	// AppliedLimit is the row cap injected into ExecutionSQL, 0 for
	// non-SELECT statements.
	AppliedLimit int
}

// Prepare validates and rewrites raw SQL text for guarded execution.
// It never touches the engine.
func Prepare(raw string, opts Options) (Plan, error) {
	stmt := strings.TrimSpace(raw)
	if stmt == "" {
		return Plan{}, ErrEmptyStatement
	}

	keyword := sqltext.LeadingKeyword(stmt)
	_, isWrite := writeKeywords[keyword]
	isSelect := keyword == "SELECT"

	plan := Plan{
		Statement:         stmt,
		IsWrite:           isWrite,
		IsSelect:          isSelect,
		NeedsWriteConfirm: isWrite,
	}

	if isSelect && !limitClauseRe.MatchString(stmt) && opts.ConfirmUnboundedSelect {
		plan.NeedsLimitConfirm = true
	}

	execSQL := strings.TrimSuffix(stmt, ";")
	if isSelect {
		cap := opts.Cap()
		execSQL = fmt.Sprintf("SELECT * FROM (%s) AS %s LIMIT %d", execSQL, guardAlias, cap)
		plan.AppliedLimit = cap
	}
	plan.ExecutionSQL = execSQL

	return plan, nil
}

// IsWriteStatement reports whether the statement's leading token is a
// write keyword.
func IsWriteStatement(stmt string) bool {
	_, ok := writeKeywords[sqltext.LeadingKeyword(stmt)]
	return ok
}
