package guard

import (
	"sync"

	"github.com/sqldeck/sqldeck/internal/sqltext"
)

// DefaultHistorySize bounds the recency list.
const DefaultHistorySize = 50

// History is a bounded, de-duplicated, most-recent-first list of
// submitted statement texts. Identity is the normalized SQL form, so
// re-submitting equivalent text moves the entry to the front instead of
// duplicating it.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []historyEntry
}

type historyEntry struct {
	text string
	norm string
}

// NewHistory creates a history capped at capacity entries.
// Non-positive capacities fall back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity}
}

// Record inserts text at the front, removing any entry with the same
// normalized form first. Blank text is ignored.
func (h *History) Record(text string) {
	norm := sqltext.Normalize(text)
	if norm == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, e := range h.entries {
		if e.norm == norm {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}

	h.entries = append([]historyEntry{{text: text, norm: norm}}, h.entries...)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// Entries returns the recorded texts, most recent first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.text
	}
	return out
}

// Len reports the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
