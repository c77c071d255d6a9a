package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/builder"
	"github.com/sqldeck/sqldeck/internal/profile"
)

// browseOptions collects the structured query flags.
type browseOptions struct {
	Columns      []string
	Filters      []string
	Or           bool
	Aggregations []string
	GroupBy      []string
	OrderBy      []string
	Limit        int
	Profile      bool
	ShowSQL      bool
	Format       string
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse <table>",
		Short: "Browse a table through the structured query builder",
		Long: `Browse a table by compiling filters, aggregations, grouping, and
ordering into SQL. The compiled query always carries a LIMIT, and
invalid identifiers are dropped rather than quoted into the statement.`,
		Example: `  # First 50 rows of a table
  sqldeck browse customers --limit 50

  # Filtered and ordered
  sqldeck browse orders --filter "status=shipped" --filter "total>100" --order-by "total:desc"

  # Aggregation with grouping
  sqldeck browse orders --agg sum:total --agg count:id --group-by country

  # Null checks and containment
  sqldeck browse customers --filter "email is null" --filter "name~smith" --or

  # Profile the result columns as well
  sqldeck browse customers --profile`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns to project (default all)")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, `Filter: "col=v", "col!=v", "col>v", "col<v", "col~v", "col is [not] null"`)
	cmd.Flags().BoolVar(&opts.Or, "or", false, "Combine filters with OR instead of AND")
	cmd.Flags().StringArrayVar(&opts.Aggregations, "agg", nil, `Aggregation: "func:col[:alias]" (sum, avg, count, min, max)`)
	cmd.Flags().StringSliceVar(&opts.GroupBy, "group-by", nil, "Grouping columns (aggregation mode only)")
	cmd.Flags().StringArrayVar(&opts.OrderBy, "order-by", nil, `Ordering: "col[:asc|desc]"`)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Row limit (default: configured row cap)")
	cmd.Flags().BoolVar(&opts.Profile, "profile", false, "Profile the result columns")
	cmd.Flags().BoolVar(&opts.ShowSQL, "sql", false, "Print the compiled SQL without executing")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")

	return cmd
}

func runBrowse(cmd *cobra.Command, tableName string, opts *browseOptions) error {
	spec, err := buildSpec(tableName, opts)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	spec.Limit = spec.EffectiveLimit(cmdCtx.Cfg.MaxRows)

	schema, err := cmdCtx.Schema.Columns(cmd.Context(), tableName)
	if err != nil {
		return err
	}

	sql := builder.Compile(*spec, schema)
	if sql == "" {
		return fmt.Errorf("invalid table name %q", tableName)
	}

	if opts.ShowSQL {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), sql)
		return nil
	}

	pipeline := cmdCtx.Pipeline(cmd)
	result, err := pipeline.Run(cmd.Context(), sql)
	if err != nil {
		return err
	}

	format := resolveFormat(opts.Format, cmdCtx.Cfg)
	if err := renderResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}

	if opts.Profile {
		profiles := profile.Profile(result.Rows, result.Columns, cmdCtx.Cfg.ProfileThresholds())
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		return renderProfiles(cmd.OutOrStdout(), profiles, format)
	}

	return nil
}

// buildSpec translates the flag values into a builder spec.
func buildSpec(tableName string, opts *browseOptions) (*builder.Spec, error) {
	spec := &builder.Spec{}
	spec.SetTable(tableName)
	spec.Columns = opts.Columns
	spec.GroupBy = opts.GroupBy
	spec.Limit = opts.Limit

	if opts.Or {
		spec.FilterLogic = builder.LogicOr
	}

	for _, raw := range opts.Filters {
		f, err := parseFilter(raw)
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, f)
	}

	for _, raw := range opts.Aggregations {
		agg, err := parseAggregation(raw)
		if err != nil {
			return nil, err
		}
		spec.Aggregations = append(spec.Aggregations, agg)
	}

	for _, raw := range opts.OrderBy {
		ob, err := parseOrderBy(raw)
		if err != nil {
			return nil, err
		}
		spec.OrderBy = append(spec.OrderBy, ob)
	}

	return spec, nil
}

// parseFilter parses one --filter value. Null checks are spelled out
// ("col is null"); the remaining operators split on their first
// occurrence.
func parseFilter(raw string) (builder.Filter, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if col, ok := strings.CutSuffix(lower, " is not null"); ok {
		return builder.Filter{Column: strings.TrimSpace(trimmed[:len(col)]), Operator: builder.OpIsNotNull}, nil
	}
	if col, ok := strings.CutSuffix(lower, " is null"); ok {
		return builder.Filter{Column: strings.TrimSpace(trimmed[:len(col)]), Operator: builder.OpIsNull}, nil
	}

	// != before = so the bang is not swallowed into the column name.
	for _, op := range []struct {
		token    string
		operator builder.Operator
	}{
		{"!=", builder.OpNotEqual},
		{">", builder.OpGreater},
		{"<", builder.OpLess},
		{"~", builder.OpContains},
		{"=", builder.OpEqual},
	} {
		if col, value, found := strings.Cut(trimmed, op.token); found {
			column := strings.TrimSpace(col)
			if column == "" {
				return builder.Filter{}, fmt.Errorf("invalid filter %q: missing column", raw)
			}
			return builder.Filter{
				Column:   column,
				Operator: op.operator,
				Value:    strings.TrimSpace(value),
			}, nil
		}
	}

	return builder.Filter{}, fmt.Errorf("invalid filter %q: no operator found", raw)
}

// parseAggregation parses one --agg value of the form func:col[:alias].
func parseAggregation(raw string) (builder.Aggregation, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return builder.Aggregation{}, fmt.Errorf("invalid aggregation %q: want func:col[:alias]", raw)
	}

	fn := builder.AggregateFunc(strings.ToLower(parts[0]))
	switch fn {
	case builder.AggSum, builder.AggAvg, builder.AggCount, builder.AggMin, builder.AggMax:
	default:
		return builder.Aggregation{}, fmt.Errorf("invalid aggregation %q: unknown function %q", raw, parts[0])
	}

	agg := builder.Aggregation{Func: fn, Column: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		agg.Alias = strings.TrimSpace(parts[2])
	}
	return agg, nil
}

// parseOrderBy parses one --order-by value of the form col[:asc|desc].
func parseOrderBy(raw string) (builder.OrderBy, error) {
	column, dir, found := strings.Cut(strings.TrimSpace(raw), ":")
	ob := builder.OrderBy{Column: strings.TrimSpace(column), Direction: builder.SortAsc}
	if !found {
		return ob, nil
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
	case "desc":
		ob.Direction = builder.SortDesc
	default:
		return builder.OrderBy{}, fmt.Errorf("invalid ordering %q: want col[:asc|desc]", raw)
	}
	return ob, nil
}
