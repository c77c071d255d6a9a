package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTables  = []string{"customers", "orders", "order_items"}
	testColumns = []string{"id", "name", "email", "balance"}
)

func kinds(suggestions []Suggestion) []Kind {
	out := make([]Kind, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Kind
	}
	return out
}

func labels(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Label
	}
	return out
}

func TestTokenAt(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		caret      int
		wantStart  int
		wantEnd    int
		wantPrefix string
	}{
		{"caret mid-token", "SELECT nam FROM t", 10, 7, 10, "nam"},
		{"caret inside token extends right", "SELECT name FROM t", 9, 7, 11, "na"},
		{"caret after space", "SELECT * FROM ", 14, 14, 14, ""},
		{"dotted token", "SELECT c.na FROM customers c", 11, 7, 11, "c.na"},
		{"caret at start scans right", "SELECT", 0, 0, 6, ""},
		{"caret clamped past end", "ab", 99, 0, 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, prefix := TokenAt(tt.text, tt.caret)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestSuggest_TableContext(t *testing.T) {
	text := "SELECT * FROM "
	got := Suggest(text, len(text), testTables, testColumns)

	require.NotEmpty(t, got)
	// Tables dominate before keywords in FROM position.
	assert.Equal(t, KindTable, got[0].Kind)
	assert.Equal(t, []string{"customers", "orders", "order_items"}, labels(got[:3]))
	assert.NotContains(t, kinds(got), KindColumn)
}

func TestSuggest_ColumnContext(t *testing.T) {
	text := "SELECT "
	got := Suggest(text, len(text), testTables, testColumns)

	require.NotEmpty(t, got)
	assert.Equal(t, KindColumn, got[0].Kind)
	assert.Equal(t, []string{"id", "name", "email", "balance"}, labels(got[:4]))
}

func TestSuggest_WhereContext(t *testing.T) {
	text := "SELECT * FROM customers WHERE "
	got := Suggest(text, len(text), testTables, testColumns)

	require.NotEmpty(t, got)
	assert.Equal(t, KindColumn, got[0].Kind)
}

func TestSuggest_DottedTokenIsColumnContext(t *testing.T) {
	text := "SELECT c.n"
	got := Suggest(text, len(text), testTables, testColumns)

	// The segment after the dot drives matching; the qualifier is
	// preserved through the insert text.
	require.Len(t, got, 1)
	assert.Equal(t, "name", got[0].Label)
	assert.Equal(t, "c.name", got[0].InsertText)
	assert.Equal(t, KindColumn, got[0].Kind)

	newText, newCaret := Apply(text, len(text), got[0])
	assert.Equal(t, "SELECT c.name", newText)
	assert.Equal(t, len("SELECT c.name"), newCaret)
}

func TestSuggest_QualifierWithEmptySegmentKeepsAllColumns(t *testing.T) {
	text := "SELECT c."
	got := Suggest(text, len(text), testTables, testColumns)

	require.Len(t, got, len(testColumns))
	for i, s := range got {
		assert.Equal(t, KindColumn, s.Kind)
		assert.Equal(t, "c."+testColumns[i], s.InsertText)
	}
}

func TestSuggest_GenericContext(t *testing.T) {
	got := Suggest("", 0, testTables, testColumns)

	require.NotEmpty(t, got)
	assert.Equal(t, KindKeyword, got[0].Kind)
	assert.Len(t, got, 16, "list is truncated to 16")
}

func TestSuggest_PrefixFilterIsCaseInsensitive(t *testing.T) {
	text := "sel"
	got := Suggest(text, len(text), testTables, testColumns)

	require.NotEmpty(t, got)
	assert.Equal(t, "SELECT", got[0].Label)
	for _, s := range got {
		assert.Contains(t, []string{"SELECT", "SET"}, s.Label)
	}
}

func TestSuggest_PrefixNarrowsTables(t *testing.T) {
	text := "SELECT * FROM ord"
	got := Suggest(text, len(text), testTables, testColumns)

	require.NotEmpty(t, got)
	assert.Equal(t, []string{"orders", "order_items"}, labels(got)[:2])
	// ORDER BY also matches the prefix, after the tables.
	assert.Contains(t, labels(got), "ORDER BY")
}

func TestSuggest_NoSchemaNarrowsSet(t *testing.T) {
	text := "SELECT * FROM "
	got := Suggest(text, len(text), nil, nil)

	// No tables known: keywords only, never an error.
	for _, s := range got {
		assert.Equal(t, KindKeyword, s.Kind)
	}
}

func TestSuggest_DeduplicatesByLabelAndKind(t *testing.T) {
	got := Suggest("SELECT * FROM c", 15, []string{"customers", "customers"}, nil)

	count := 0
	for _, s := range got {
		if s.Label == "customers" && s.Kind == KindTable {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     int
		s         Suggestion
		wantText  string
		wantCaret int
	}{
		{
			name:      "replaces partial token",
			text:      "SELECT * FROM cus",
			caret:     17,
			s:         Suggestion{Label: "customers", InsertText: "customers", Kind: KindTable},
			wantText:  "SELECT * FROM customers",
			wantCaret: 23,
		},
		{
			name:      "replaces token span around caret",
			text:      "SELECT nam FROM customers",
			caret:     9,
			s:         Suggestion{Label: "name", InsertText: "name", Kind: KindColumn},
			wantText:  "SELECT name FROM customers",
			wantCaret: 11,
		},
		{
			name:      "inserts at empty position",
			text:      "SELECT * FROM ",
			caret:     14,
			s:         Suggestion{Label: "orders", InsertText: "orders", Kind: KindTable},
			wantText:  "SELECT * FROM orders",
			wantCaret: 20,
		},
		{
			name:      "empty insert text falls back to label",
			text:      "SEL",
			caret:     3,
			s:         Suggestion{Label: "SELECT", Kind: KindKeyword},
			wantText:  "SELECT",
			wantCaret: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotCaret := Apply(tt.text, tt.caret, tt.s)
			assert.Equal(t, tt.wantText, gotText)
			assert.Equal(t, tt.wantCaret, gotCaret)
		})
	}
}

func TestSuggest_RecomputedPerCall(t *testing.T) {
	// Purity: same inputs, same outputs, no retained state.
	text := "SELECT * FROM "
	first := Suggest(text, len(text), testTables, testColumns)
	second := Suggest(text, len(text), testTables, testColumns)
	assert.Equal(t, first, second)
}
