// Package builder models the structured query-builder state and
// compiles it to SQL text.
package builder

// Operator is a filter comparison operator. The set is closed; the
// compiler is a total function over it.
type Operator string

// Filter operators.
const (
	OpEqual     Operator = "="
	OpNotEqual  Operator = "!="
	OpGreater   Operator = ">"
	OpLess      Operator = "<"
	OpContains  Operator = "contains"
	OpIsNull    Operator = "is null"
	OpIsNotNull Operator = "is not null"
)

// AggregateFunc is an aggregation function.
type AggregateFunc string

// Aggregation functions.
const (
	AggSum   AggregateFunc = "sum"
	AggAvg   AggregateFunc = "avg"
	AggCount AggregateFunc = "count"
	AggMin   AggregateFunc = "min"
	AggMax   AggregateFunc = "max"
)

// FilterLogic joins filter predicates. Mixed precedence is not
// supported; every predicate is joined with the same connective.
type FilterLogic string

// Filter connectives.
const (
	LogicAnd FilterLogic = "AND"
	LogicOr  FilterLogic = "OR"
)

// SortDirection orders a result column.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Filter is a single predicate against one column.
type Filter struct {
	Column   string
	Operator Operator
	Value    string
}

// Aggregation is one aggregate expression in the projection.
// Alias defaults to "{func}_{column}" when empty.
type Aggregation struct {
	Column string
	Func   AggregateFunc
	Alias  string
}

// OrderBy is a single ordering term.
type OrderBy struct {
	Column    string
	Direction SortDirection
}

// Spec is the structured builder state for one query. It is owned by
// the builder session; compiling it never mutates it.
type Spec struct {
	Table        string
	Columns      []string
	Filters      []Filter
	FilterLogic  FilterLogic
	Aggregations []Aggregation
	GroupBy      []string
	OrderBy      []OrderBy
	Limit        int
}

// SetTable switches the target table and resets every table-scoped part
// of the spec so no identifier of the previous table leaks into the
// compiled SQL.
func (s *Spec) SetTable(table string) {
	if s.Table == table {
		return
	}
	s.Table = table
	s.Columns = nil
	s.Filters = nil
	s.Aggregations = nil
	s.GroupBy = nil
	s.OrderBy = nil
}

// EffectiveLimit returns the spec's limit, substituting cap when the
// limit is absent or non-positive. A spec never compiles to an
// unbounded query.
func (s *Spec) EffectiveLimit(cap int) int {
	if s.Limit > 0 {
		return s.Limit
	}
	if cap < 1 {
		return 1
	}
	return cap
}
