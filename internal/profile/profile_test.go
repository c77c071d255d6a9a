package profile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOne(t *testing.T, rows []map[string]any, key string, th Thresholds) ColumnProfile {
	t.Helper()
	profiles := Profile(rows, []string{key}, th)
	require.Len(t, profiles, 1)
	require.Equal(t, key, profiles[0].Key)
	return profiles[0]
}

func TestProfileNumericColumnWithNull(t *testing.T) {
	rows := []map[string]any{
		{"a": 1},
		{"a": 2},
		{"a": nil},
		{"a": 4},
	}

	p := profileOne(t, rows, "a", DefaultThresholds())

	assert.InDelta(t, 25.0, p.NullRatePercent, 1e-9)
	assert.Equal(t, TypeNumber, p.DetectedType)
	require.NotNil(t, p.Min)
	require.NotNil(t, p.Max)
	assert.Equal(t, 1.0, *p.Min)
	assert.Equal(t, 4.0, *p.Max)
	assert.Equal(t, 3, p.DistinctCount)
	assert.Zero(t, p.SuspiciousCount)

	// 25 < 30, so the null rate is within bounds. All three non-null
	// values are distinct, so cardinality is flagged.
	assert.NotContains(t, p.Issues, IssueHighNull)
	assert.Contains(t, p.Issues, IssueHighCardinality)
}

func TestProfileHighCardinality(t *testing.T) {
	rows := make([]map[string]any, 0, 100)
	for i := 0; i < 99; i++ {
		rows = append(rows, map[string]any{"id": fmt.Sprintf("row-%03d", i)})
	}
	rows = append(rows, map[string]any{"id": "row-000"})

	p := profileOne(t, rows, "id", DefaultThresholds())

	assert.Equal(t, 99, p.DistinctCount)
	assert.Contains(t, p.Issues, IssueHighCardinality)
}

func TestProfileHighNullRate(t *testing.T) {
	rows := []map[string]any{
		{"a": "x"},
		{"a": nil},
		{"a": "   "},
	}

	p := profileOne(t, rows, "a", DefaultThresholds())

	// Whitespace-only values count as null.
	assert.InDelta(t, 100.0/1.5, p.NullRatePercent, 1e-9)
	assert.Contains(t, p.Issues, IssueHighNull)
}

func TestProfileEmptyInput(t *testing.T) {
	assert.Empty(t, Profile(nil, nil, DefaultThresholds()))

	p := profileOne(t, nil, "a", DefaultThresholds())
	assert.Equal(t, TypeUnknown, p.DetectedType)
	assert.Zero(t, p.NullRatePercent)
	assert.Zero(t, p.DistinctCount)
	assert.Nil(t, p.Min)
	assert.Nil(t, p.Max)
	assert.Empty(t, p.Issues)
}

func TestProfileTypeInference(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   DetectedType
	}{
		{"all numbers", []any{"1", "2.5", "-3", 4}, TypeNumber},
		{"all dates", []any{"2024-01-15", "2024-02-01", "2023-12-31"}, TypeDate},
		{"half and half", []any{"1", "2", "alpha", "beta"}, TypeMixed},
		{"plain text", []any{"alpha", "beta", "gamma"}, TypeText},
		{"null only", []any{nil, "", "  "}, TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]map[string]any, 0, len(tt.values))
			for _, v := range tt.values {
				rows = append(rows, map[string]any{"c": v})
			}
			p := profileOne(t, rows, "c", DefaultThresholds())
			assert.Equal(t, tt.want, p.DetectedType)
		})
	}
}

func TestProfileMixedColumnScoresNoSuspicious(t *testing.T) {
	rows := []map[string]any{
		{"c": "1"}, {"c": "2"}, {"c": "3"},
		{"c": "alpha"}, {"c": "beta"}, {"c": "gamma"},
	}

	p := profileOne(t, rows, "c", DefaultThresholds())

	assert.Equal(t, TypeMixed, p.DetectedType)
	assert.Zero(t, p.SuspiciousCount)
	assert.Contains(t, p.Issues, IssueMixedTypes)
	assert.NotContains(t, p.Issues, IssueSuspiciousValues)
}

func TestProfileSuspiciousNumericOutlier(t *testing.T) {
	rows := make([]map[string]any, 0, 11)
	for i := 0; i < 10; i++ {
		rows = append(rows, map[string]any{"n": i})
	}
	rows = append(rows, map[string]any{"n": "n/a"})

	p := profileOne(t, rows, "n", DefaultThresholds())

	// 10 of 11 coerce, just over the 0.9 cutoff.
	assert.Equal(t, TypeNumber, p.DetectedType)
	assert.Equal(t, 1, p.SuspiciousCount)
	assert.Contains(t, p.Issues, IssueSuspiciousValues)
}

func TestProfileUnparseableDateIsNotADate(t *testing.T) {
	rows := []map[string]any{
		{"d": "2024-01-15"},
		{"d": "2024-13-45"},
		{"d": "2024-02-30"},
	}

	p := profileOne(t, rows, "d", DefaultThresholds())

	// Only one of three values is a real calendar date.
	assert.NotEqual(t, TypeDate, p.DetectedType)
}

func TestProfilePatternReportingGates(t *testing.T) {
	t.Run("three of ten emails reported", func(t *testing.T) {
		rows := []map[string]any{
			{"c": "a@example.com"},
			{"c": "b@example.com"},
			{"c": "c@example.com"},
			{"c": "eins"}, {"c": "zwei"}, {"c": "drei"},
			{"c": "vier"}, {"c": "fuenf"}, {"c": "sechs"}, {"c": "sieben"},
		}

		p := profileOne(t, rows, "c", DefaultThresholds())

		require.Len(t, p.Patterns, 1)
		assert.Equal(t, "email", p.Patterns[0].Name)
		assert.Equal(t, 3, p.Patterns[0].Count)
	})

	t.Run("one of ten emails not reported", func(t *testing.T) {
		rows := []map[string]any{
			{"c": "a@example.com"},
			{"c": "eins"}, {"c": "zwei"}, {"c": "drei"}, {"c": "vier"},
			{"c": "fuenf"}, {"c": "sechs"}, {"c": "sieben"}, {"c": "acht"},
			{"c": "neun"},
		}

		p := profileOne(t, rows, "c", DefaultThresholds())
		assert.Empty(t, p.Patterns)
	})

	t.Run("two of three emails reported, share above gate", func(t *testing.T) {
		rows := []map[string]any{
			{"c": "a@example.com"},
			{"c": "b@example.com"},
			{"c": "plain"},
		}

		p := profileOne(t, rows, "c", DefaultThresholds())
		require.Len(t, p.Patterns, 1)
		assert.Equal(t, 2, p.Patterns[0].Count)
	})
}

func TestProfileDominantPatternSuspicious(t *testing.T) {
	rows := []map[string]any{
		{"c": "a@example.com"},
		{"c": "b@example.com"},
		{"c": "c@example.com"},
		{"c": "d@example.com"},
		{"c": "not-an-email"},
	}

	p := profileOne(t, rows, "c", DefaultThresholds())

	// 4 of 5 match email: count >= 3 and share >= 60%, so the one
	// non-matching value is suspicious.
	assert.Equal(t, TypeText, p.DetectedType)
	assert.Equal(t, 1, p.SuspiciousCount)
	assert.Contains(t, p.Issues, IssueSuspiciousValues)
}

func TestProfileTopValuesStableTieBreak(t *testing.T) {
	rows := []map[string]any{
		{"c": "beta"}, {"c": "alpha"}, {"c": "alpha"},
		{"c": "gamma"}, {"c": "beta"}, {"c": "delta"},
	}

	p := profileOne(t, rows, "c", DefaultThresholds())

	require.Len(t, p.TopValues, 3)
	assert.Equal(t, ValueCount{Value: "beta", Count: 2}, p.TopValues[0])
	assert.Equal(t, ValueCount{Value: "alpha", Count: 2}, p.TopValues[1])
	// gamma and delta tie at 1; gamma came first.
	assert.Equal(t, ValueCount{Value: "gamma", Count: 1}, p.TopValues[2])
}

func TestProfileUUIDVersionAware(t *testing.T) {
	assert.True(t, isUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.True(t, isUUID("F47AC10B-58CC-4372-A567-0E02B2C3D479"))
	assert.False(t, isUUID("6ba7b810-9dad-01d1-80b4-00c04fd430c8"), "version 0 is invalid")
	assert.False(t, isUUID("6ba7b810-9dad-11d1-00b4-00c04fd430c8"), "variant nibble out of range")
	assert.False(t, isUUID("6ba7b8109dad11d180b400c04fd430c8"), "missing dashes")
}

func TestProfileShapeMatchers(t *testing.T) {
	assert.True(t, isEmail("user.name+tag@sub.example.org"))
	assert.False(t, isEmail("user@localhost"))
	assert.True(t, isIBAN("DE89370400440532013000"))
	assert.False(t, isIBAN("de89370400440532013000"))
	assert.True(t, isURL("https://example.com/path?q=1"))
	assert.False(t, isURL("ftp://example.com"))
	assert.True(t, isDateLike("15.01.2024"))
	assert.False(t, isDateLike("yesterday"))
}

func TestProfileDiscoversKeysNotListed(t *testing.T) {
	rows := []map[string]any{
		{"a": 1, "b": "x"},
		{"a": 2, "c": "y"},
	}

	profiles := Profile(rows, []string{"a"}, DefaultThresholds())
	require.Len(t, profiles, 3)
	assert.Equal(t, "a", profiles[0].Key)
	assert.Equal(t, "b", profiles[1].Key)
	assert.Equal(t, "c", profiles[2].Key)
}
