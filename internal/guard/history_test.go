package guard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_RecordAndOrder(t *testing.T) {
	h := NewHistory(10)

	h.Record("SELECT 1")
	h.Record("SELECT 2")
	h.Record("SELECT 3")

	assert.Equal(t, []string{"SELECT 3", "SELECT 2", "SELECT 1"}, h.Entries())
}

func TestHistory_DeduplicatesOnNormalizedText(t *testing.T) {
	h := NewHistory(10)

	h.Record("SELECT * FROM users")
	h.Record("SELECT 2")

	// Same statement, different whitespace and case: moves to front,
	// no duplicate.
	h.Record("select   *\nfrom users")

	entries := h.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "select   *\nfrom users", entries[0])
	assert.Equal(t, "SELECT 2", entries[1])
}

func TestHistory_ResubmitSameTextMovesToFront(t *testing.T) {
	h := NewHistory(10)

	h.Record("SELECT 1")
	h.Record("SELECT 1")

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, []string{"SELECT 1"}, h.Entries())
}

func TestHistory_CapEEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Record(fmt.Sprintf("SELECT %d", i))
	}

	assert.Equal(t, []string{"SELECT 5", "SELECT 4", "SELECT 3"}, h.Entries())
}

func TestHistory_IgnoresBlankText(t *testing.T) {
	h := NewHistory(10)
	h.Record("   ")
	assert.Equal(t, 0, h.Len())
}
