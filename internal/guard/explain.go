package guard

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultExplainDelay is the debounce window for plan requests.
const DefaultExplainDelay = 300 * time.Millisecond

// ExplainFunc asks the engine for the plan of the given statement.
// The adapter supplies the dialect's EXPLAIN QUERY PLAN prefix.
type ExplainFunc func(ctx context.Context, sql string) (string, error)

// ExplainScheduler debounces plan requests for the free-text editor.
// Each Request supersedes any pending one; a request already in flight
// is not cancelled, its result simply arrives before the newer one.
// Explain failures are delivered through the callback and stay isolated
// from the execution pipeline's error state.
type ExplainScheduler struct {
	delay    time.Duration
	explain  ExplainFunc
	onResult func(plan string, err error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewExplainScheduler creates a scheduler delivering results to
// onResult. A non-positive delay falls back to DefaultExplainDelay.
func NewExplainScheduler(delay time.Duration, explain ExplainFunc, onResult func(string, error)) *ExplainScheduler {
	if delay <= 0 {
		delay = DefaultExplainDelay
	}
	return &ExplainScheduler{delay: delay, explain: explain, onResult: onResult}
}

// Request schedules a plan request for the unwrapped user text,
// resetting the debounce window. Blank text cancels the pending request
// without scheduling a new one.
func (s *ExplainScheduler) Request(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.timer = time.AfterFunc(s.delay, func() {
		plan, err := s.explain(ctx, text)
		s.onResult(plan, err)
	})
}

// Stop cancels any pending request.
func (s *ExplainScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
