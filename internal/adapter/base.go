package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// BaseSQLAdapter provides common database/sql functionality for
// adapters. Embed this struct in concrete adapter implementations to
// get standard Close, Exec, Query, and AbortActiveQueries behavior.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Logger *slog.Logger

	mu     sync.Mutex
	active map[uint64]context.CancelFunc
	nextID uint64
}

// SetLogger installs the logger, defaulting to a discard logger for nil.
func (b *BaseSQLAdapter) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b.Logger = logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	ctx, done := b.track(ctx)
	defer done()

	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	// The tracked context must stay alive until the caller finishes
	// iterating: database/sql closes the rows asynchronously when their
	// context is cancelled, so cancelling on return would race row
	// iteration. Rows.Close unregisters instead.
	ctx, done := b.track(ctx)

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		done()
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows, done: done}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// AbortActiveQueries cancels the contexts of all statements currently
// blocked in Exec or Query, and of result sets still being iterated.
// A query stays registered until its rows are closed. Reports whether
// anything was actually cancelled.
func (b *BaseSQLAdapter) AbortActiveQueries() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.active) == 0 {
		return false
	}
	for id, cancel := range b.active {
		cancel()
		delete(b.active, id)
	}
	if b.Logger != nil {
		b.Logger.Debug("aborted active queries")
	}
	return true
}

// track registers a cancellable context for an in-flight statement and
// returns a done func that unregisters it.
func (b *BaseSQLAdapter) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.active == nil {
		b.active = make(map[uint64]context.CancelFunc)
	}
	b.nextID++
	id := b.nextID
	b.active[id] = cancel
	b.mu.Unlock()

	return ctx, func() {
		b.mu.Lock()
		delete(b.active, id)
		b.mu.Unlock()
		cancel()
	}
}
