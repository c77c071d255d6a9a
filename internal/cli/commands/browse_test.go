package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldeck/sqldeck/internal/builder"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    builder.Filter
		wantErr bool
	}{
		{
			name: "equality",
			raw:  "status=shipped",
			want: builder.Filter{Column: "status", Operator: builder.OpEqual, Value: "shipped"},
		},
		{
			name: "inequality",
			raw:  "status!=cancelled",
			want: builder.Filter{Column: "status", Operator: builder.OpNotEqual, Value: "cancelled"},
		},
		{
			name: "greater than",
			raw:  "total>100",
			want: builder.Filter{Column: "total", Operator: builder.OpGreater, Value: "100"},
		},
		{
			name: "less than",
			raw:  "total<10",
			want: builder.Filter{Column: "total", Operator: builder.OpLess, Value: "10"},
		},
		{
			name: "contains",
			raw:  "name~smith",
			want: builder.Filter{Column: "name", Operator: builder.OpContains, Value: "smith"},
		},
		{
			name: "is null",
			raw:  "email is null",
			want: builder.Filter{Column: "email", Operator: builder.OpIsNull},
		},
		{
			name: "is not null",
			raw:  "email IS NOT NULL",
			want: builder.Filter{Column: "email", Operator: builder.OpIsNotNull},
		},
		{
			name: "whitespace around operator",
			raw:  "  status = shipped  ",
			want: builder.Filter{Column: "status", Operator: builder.OpEqual, Value: "shipped"},
		},
		{
			name:    "no operator",
			raw:     "status",
			wantErr: true,
		},
		{
			name:    "missing column",
			raw:     "=shipped",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAggregation(t *testing.T) {
	agg, err := parseAggregation("sum:total")
	require.NoError(t, err)
	assert.Equal(t, builder.Aggregation{Func: builder.AggSum, Column: "total"}, agg)

	agg, err = parseAggregation("COUNT:id:n")
	require.NoError(t, err)
	assert.Equal(t, builder.Aggregation{Func: builder.AggCount, Column: "id", Alias: "n"}, agg)

	_, err = parseAggregation("median:total")
	require.Error(t, err)

	_, err = parseAggregation("total")
	require.Error(t, err)
}

func TestParseOrderBy(t *testing.T) {
	ob, err := parseOrderBy("total")
	require.NoError(t, err)
	assert.Equal(t, builder.OrderBy{Column: "total", Direction: builder.SortAsc}, ob)

	ob, err = parseOrderBy("total:desc")
	require.NoError(t, err)
	assert.Equal(t, builder.OrderBy{Column: "total", Direction: builder.SortDesc}, ob)

	ob, err = parseOrderBy("total:ASC")
	require.NoError(t, err)
	assert.Equal(t, builder.SortAsc, ob.Direction)

	_, err = parseOrderBy("total:sideways")
	require.Error(t, err)
}

func TestBuildSpec(t *testing.T) {
	opts := &browseOptions{
		Columns:      []string{"id", "name"},
		Filters:      []string{"name~smith", "balance>0"},
		Or:           true,
		Aggregations: []string{"sum:balance:total"},
		GroupBy:      []string{"country"},
		OrderBy:      []string{"total:desc"},
		Limit:        25,
	}

	spec, err := buildSpec("customers", opts)
	require.NoError(t, err)

	assert.Equal(t, "customers", spec.Table)
	assert.Equal(t, []string{"id", "name"}, spec.Columns)
	assert.Equal(t, builder.LogicOr, spec.FilterLogic)
	require.Len(t, spec.Filters, 2)
	require.Len(t, spec.Aggregations, 1)
	assert.Equal(t, "total", spec.Aggregations[0].Alias)
	assert.Equal(t, []string{"country"}, spec.GroupBy)
	require.Len(t, spec.OrderBy, 1)
	assert.Equal(t, 25, spec.Limit)
}

func TestBuildSpecRejectsBadFlag(t *testing.T) {
	_, err := buildSpec("customers", &browseOptions{Filters: []string{"nonsense"}})
	require.Error(t, err)

	_, err = buildSpec("customers", &browseOptions{Aggregations: []string{"bogus:col"}})
	require.Error(t, err)

	_, err = buildSpec("customers", &browseOptions{OrderBy: []string{"col:no"}})
	require.Error(t, err)
}
