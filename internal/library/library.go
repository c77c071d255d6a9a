// Package library persists the saved statement library. Entries are
// deduplicated by normalized SQL text within a scope, so saving an
// equivalent statement twice updates the existing entry instead of
// creating a second one.
package library

import "time"

// ScopeGlobal is the scope used when entries are not tied to a
// particular connection.
const ScopeGlobal = "global"

// Statement is one saved library entry.
type Statement struct {
	ID          string
	Name        string
	SQLText     string
	Scope       string
	IsFavorite  bool
	Tags        []string
	Description string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
}

// Store is the persistence contract consumed by the CLI and the
// execution pipeline for recency and favorite semantics.
type Store interface {
	// Save inserts a new entry or, when an entry with the same
	// normalized SQL already exists in the scope, updates it in place.
	// The stored entry is returned either way.
	Save(stmt Statement) (*Statement, error)

	// Get retrieves an entry by id.
	Get(id string) (*Statement, error)

	// List returns a scope's entries, favorites first, then by most
	// recent use.
	List(scope string) ([]Statement, error)

	// Delete removes an entry by id.
	Delete(id string) error

	// MarkUsed stamps an entry's last-used time.
	MarkUsed(id string) error

	// SetFavorite toggles an entry's favorite flag.
	SetFavorite(id string, favorite bool) error

	Close() error
}
