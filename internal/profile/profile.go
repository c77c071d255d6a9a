// Package profile computes per-column statistics, type classification,
// shape-pattern detection, and data-quality issues over a materialized
// result set. Profiling is a single deterministic pass and never fails:
// malformed or empty input simply yields empty or unknown-typed
// profiles.
//
// The input is bounded by the execution guard's row cap, so profiling
// never runs over unbounded data.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DetectedType classifies a column's dominant value shape.
type DetectedType string

// Detected types.
const (
	TypeNumber  DetectedType = "number"
	TypeText    DetectedType = "text"
	TypeDate    DetectedType = "date"
	TypeMixed   DetectedType = "mixed"
	TypeUnknown DetectedType = "unknown"
)

// Issue is a data-quality flag on a column.
type Issue string

// Issue flags. Each is derived independently.
const (
	IssueHighNull         Issue = "high_null"
	IssueMixedTypes       Issue = "mixed_types"
	IssueHighCardinality  Issue = "high_cardinality"
	IssueSuspiciousValues Issue = "suspicious_values"
)

// Thresholds are the user-tunable cutoffs for issue detection.
type Thresholds struct {
	NullRatePercent        float64
	CardinalityRatePercent float64
}

// DefaultThresholds returns the default cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{NullRatePercent: 30, CardinalityRatePercent: 95}
}

// ValueCount is one of a column's most frequent values.
type ValueCount struct {
	Value string
	Count int
}

// PatternMatch reports how many of a column's values match a known
// value shape.
type PatternMatch struct {
	Name  string
	Count int
}

// ColumnProfile is the derived profile of one result-set column. It has
// no lifecycle of its own and is recomputed per result set.
type ColumnProfile struct {
	Key             string
	DistinctCount   int
	NullRatePercent float64
	Min             *float64
	Max             *float64
	TopValues       []ValueCount
	DetectedType    DetectedType
	Patterns        []PatternMatch
	SuspiciousCount int
	Issues          []Issue
}

// Type-inference cutoffs: a shape ratio above dominantRatio decides the
// type; above traceRatio on either shape marks the column mixed.
const (
	dominantRatio = 0.9
	traceRatio    = 0.1
)

// Pattern reporting gates.
const (
	patternMinCount = 2
	patternMinShare = 0.20

	dominantPatternMinCount = 3
	dominantPatternMinShare = 0.60
)

// shapePattern is a fixed value-shape matcher. The set is deliberately
// small and fixed so profiles stay reproducible.
type shapePattern struct {
	name  string
	match func(string) bool
}

var shapePatterns = []shapePattern{
	{name: "email", match: isEmail},
	{name: "uuid", match: isUUID},
	{name: "iban", match: isIBAN},
	{name: "url", match: isURL},
	{name: "date", match: isDateLike},
}

// Profile computes one profile per column. keys fixes the column order
// (usually the result set's column order); keys present in rows but
// missing from keys are appended in first-encountered order.
func Profile(rows []map[string]any, keys []string, th Thresholds) []ColumnProfile {
	keys = allKeys(rows, keys)

	profiles := make([]ColumnProfile, 0, len(keys))
	for _, key := range keys {
		profiles = append(profiles, profileColumn(rows, key, th))
	}
	return profiles
}

func profileColumn(rows []map[string]any, key string, th Thresholds) ColumnProfile {
	p := ColumnProfile{Key: key}
	total := len(rows)

	// Normalized non-null values, in row order.
	var values []string
	for _, row := range rows {
		norm := normalize(row[key])
		if norm == "" {
			continue
		}
		values = append(values, norm)
	}
	nonNull := len(values)
	nullCount := total - nonNull

	if total > 0 {
		p.NullRatePercent = float64(nullCount) / float64(total) * 100
	}

	// Distinctness and top values share one frequency pass; order of
	// first encounter breaks ties.
	counts := make(map[string]int, nonNull)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	p.DistinctCount = len(counts)
	p.TopValues = topValues(order, counts, 3)

	// Shape ratios drive type inference.
	numberCount := 0
	dateCount := 0
	for _, v := range values {
		if _, ok := toNumber(v); ok {
			numberCount++
		}
		if isDateLike(v) && parseDate(v) {
			dateCount++
		}
	}
	p.DetectedType = inferType(nonNull, numberCount, dateCount)

	p.Min, p.Max = numericRange(values)
	p.Patterns = detectPatterns(values)
	p.SuspiciousCount = suspiciousCount(p.DetectedType, nonNull, numberCount, dateCount, p.Patterns)
	p.Issues = issues(p, nonNull, th)

	return p
}

func inferType(nonNull, numberCount, dateCount int) DetectedType {
	if nonNull == 0 {
		return TypeUnknown
	}
	numberRatio := float64(numberCount) / float64(nonNull)
	dateRatio := float64(dateCount) / float64(nonNull)

	switch {
	case numberRatio > dominantRatio:
		return TypeNumber
	case dateRatio > dominantRatio:
		return TypeDate
	case numberRatio > traceRatio || dateRatio > traceRatio:
		return TypeMixed
	default:
		return TypeText
	}
}

func numericRange(values []string) (*float64, *float64) {
	var min, max *float64
	for _, v := range values {
		n, ok := toNumber(v)
		if !ok {
			continue
		}
		if min == nil || n < *min {
			x := n
			min = &x
		}
		if max == nil || n > *max {
			x := n
			max = &x
		}
	}
	return min, max
}

// detectPatterns returns the reported shape patterns: at least two
// matches covering at least 20% of non-null values, most frequent
// first.
func detectPatterns(values []string) []PatternMatch {
	if len(values) == 0 {
		return nil
	}

	var matches []PatternMatch
	for _, sp := range shapePatterns {
		count := 0
		for _, v := range values {
			if sp.match(v) {
				count++
			}
		}
		share := float64(count) / float64(len(values))
		if count >= patternMinCount && share >= patternMinShare {
			matches = append(matches, PatternMatch{Name: sp.name, Count: count})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Count > matches[j].Count
	})
	return matches
}

// suspiciousCount scores values that fall outside the column's dominant
// shape. Columns that are mixed without a dominant pattern score zero;
// the mixed_types flag covers them instead.
func suspiciousCount(t DetectedType, nonNull, numberCount, dateCount int, patterns []PatternMatch) int {
	switch t {
	case TypeNumber:
		return nonNull - numberCount
	case TypeDate:
		return nonNull - dateCount
	}

	if len(patterns) > 0 {
		dominant := patterns[0]
		share := float64(dominant.Count) / float64(nonNull)
		if dominant.Count >= dominantPatternMinCount && share >= dominantPatternMinShare {
			return nonNull - dominant.Count
		}
	}
	return 0
}

func issues(p ColumnProfile, nonNull int, th Thresholds) []Issue {
	var out []Issue
	if p.NullRatePercent >= th.NullRatePercent {
		out = append(out, IssueHighNull)
	}
	if p.DetectedType == TypeMixed {
		out = append(out, IssueMixedTypes)
	}
	if nonNull > 0 && float64(p.DistinctCount)/float64(nonNull)*100 > th.CardinalityRatePercent {
		out = append(out, IssueHighCardinality)
	}
	if p.SuspiciousCount > 0 {
		out = append(out, IssueSuspiciousValues)
	}
	return out
}

func topValues(order []string, counts map[string]int, n int) []ValueCount {
	sorted := make([]ValueCount, 0, len(order))
	for _, v := range order {
		sorted = append(sorted, ValueCount{Value: v, Count: counts[v]})
	}
	// Stable sort keeps first-encountered order on ties.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func allKeys(rows []map[string]any, keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, row := range rows {
		for k := range row {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	// Discovered keys after the fixed prefix stay deterministic.
	if len(out) > len(keys) {
		tail := out[len(keys):]
		sort.Strings(tail)
	}
	return out
}

// normalize renders a value in its trimmed string form. An empty result
// counts as null.
func normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", x))
	}
}

func toNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
