package guard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sqldeck/sqldeck/internal/adapter"
)

// Executor is the slice of the adapter surface the pipeline drives.
type Executor interface {
	Exec(ctx context.Context, sql string) error
	Query(ctx context.Context, sql string) (*adapter.Rows, error)
	ExplainQueryPlan(ctx context.Context, sql string) (string, error)
	AbortActiveQueries() bool
}

// Confirmer answers the guard's confirmation prompts. Implementations
// belong to the caller (interactive prompt, --yes flag, test stub).
type Confirmer interface {
	// ConfirmWrite asks whether the write statement may execute.
	ConfirmWrite(stmt string) bool

	// ConfirmUnboundedSelect asks whether an unbounded SELECT may run
	// with the named row cap applied.
	ConfirmUnboundedSelect(stmt string, cap int) bool
}

// AutoConfirm approves everything. Used by non-interactive flows that
// opted in explicitly.
type AutoConfirm struct{}

// ConfirmWrite always approves.
func (AutoConfirm) ConfirmWrite(string) bool { return true }

// ConfirmUnboundedSelect always approves.
func (AutoConfirm) ConfirmUnboundedSelect(string, int) bool { return true }

// Result is a materialized result set from one guarded execution.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Pipeline ties preparation, confirmation, execution, history, and
// cancellation together for one workbench session.
type Pipeline struct {
	exec       Executor
	confirm    Confirmer
	opts       Options
	history    *History
	logger     *slog.Logger
	invalidate func()

	mu         sync.Mutex
	lastResult *Result
	lastErr    error
}

// New creates a pipeline. A nil confirmer declines nothing because no
// confirmation can be asked; callers wanting prompts must supply one.
func New(exec Executor, confirm Confirmer, opts Options, logger *slog.Logger) *Pipeline {
	if confirm == nil {
		confirm = AutoConfirm{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		exec:    exec,
		confirm: confirm,
		opts:    opts,
		history: NewHistory(DefaultHistorySize),
		logger:  logger,
	}
}

// SetInvalidator installs the schema-cache invalidation hook, called
// after a write statement executes successfully.
func (p *Pipeline) SetInvalidator(fn func()) {
	p.invalidate = fn
}

// History exposes the session's recency list.
func (p *Pipeline) History() *History {
	return p.history
}

// Run prepares, confirms, records, and executes raw SQL text.
//
// A declined confirmation returns ErrConfirmationDeclined with no side
// effects. Once dispatched, the pre-wrap text is recorded into history
// whether or not execution succeeds, since a failed statement is the
// one the user most wants back to fix. Engine errors replace the
// pipeline's last error verbatim but leave the last successful result
// in place.
func (p *Pipeline) Run(ctx context.Context, raw string) (*Result, error) {
	plan, err := Prepare(raw, p.opts)
	if err != nil {
		return nil, err
	}

	if plan.NeedsWriteConfirm && !p.confirm.ConfirmWrite(plan.Statement) {
		return nil, ErrConfirmationDeclined
	}
	if plan.NeedsLimitConfirm && !p.confirm.ConfirmUnboundedSelect(plan.Statement, plan.AppliedLimit) {
		return nil, ErrConfirmationDeclined
	}

	p.history.Record(plan.Statement)
	p.logger.Debug("executing statement",
		"write", plan.IsWrite,
		"select", plan.IsSelect,
		"limit", plan.AppliedLimit,
	)

	result, err := p.execute(ctx, plan)
	if err != nil {
		p.setError(err)
		return nil, err
	}

	p.setResult(result)

	if plan.IsWrite && p.invalidate != nil {
		p.invalidate()
	}

	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, plan Plan) (*Result, error) {
	if !plan.IsSelect {
		if err := p.exec.Exec(ctx, plan.ExecutionSQL); err != nil {
			return nil, fmt.Errorf("execution failed: %w", err)
		}
		return &Result{}, nil
	}

	rows, err := p.exec.Query(ctx, plan.ExecutionSQL)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	cols, data, err := adapter.CollectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}
	return &Result{Columns: cols, Rows: data}, nil
}

// Cancel aborts whatever is currently running in the engine, best
// effort. It reports whether anything was actually cancelled; calling
// it while idle is a no-op, not an error.
func (p *Pipeline) Cancel() bool {
	cancelled := p.exec.AbortActiveQueries()
	p.logger.Debug("cancel requested", "cancelled", cancelled)
	return cancelled
}

// LastError returns the most recent execution error, or nil after a
// successful run.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// LastResult returns the most recent successful result. A later failed
// execution does not clear it.
func (p *Pipeline) LastResult() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResult
}

func (p *Pipeline) setError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
}

func (p *Pipeline) setResult(r *Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastResult = r
	p.lastErr = nil
}
