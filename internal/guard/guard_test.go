package guard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := Prepare(raw, Options{MaxRows: 100})
		assert.ErrorIs(t, err, ErrEmptyStatement)
	}
}

func TestPrepare_WriteClassification(t *testing.T) {
	keywords := []string{
		"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER",
		"REPLACE", "TRUNCATE", "VACUUM", "ATTACH", "DETACH",
	}

	for _, kw := range keywords {
		mixed := kw[:1] + strings.ToLower(kw[1:])
		for _, variant := range []string{kw, strings.ToLower(kw), mixed} {
			stmt := variant + " something"
			plan, err := Prepare(stmt, Options{MaxRows: 100})
			require.NoError(t, err)
			assert.True(t, plan.IsWrite, "%q should classify as write", stmt)
			assert.True(t, plan.NeedsWriteConfirm, "%q should require confirmation", stmt)
		}
	}

	plan, err := Prepare("SELECT * FROM users", Options{MaxRows: 100})
	require.NoError(t, err)
	assert.False(t, plan.IsWrite)
	assert.False(t, plan.NeedsWriteConfirm)
}

func TestPrepare_LimitInjection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts Options
		want string
	}{
		{
			name: "select wrapped with cap",
			raw:  "SELECT * FROM users",
			opts: Options{MaxRows: 500},
			want: "SELECT * FROM (SELECT * FROM users) AS guarded_sub LIMIT 500",
		},
		{
			name: "trailing semicolon stripped before wrap",
			raw:  "SELECT * FROM users;",
			opts: Options{MaxRows: 500},
			want: "SELECT * FROM (SELECT * FROM users) AS guarded_sub LIMIT 500",
		},
		{
			name: "cap floor is one",
			raw:  "SELECT 1",
			opts: Options{MaxRows: 0},
			want: "SELECT * FROM (SELECT 1) AS guarded_sub LIMIT 1",
		},
		{
			name: "non-select passes through minus semicolon",
			raw:  "UPDATE users SET active = 0;",
			opts: Options{MaxRows: 500},
			want: "UPDATE users SET active = 0",
		},
		{
			name: "pragma-like statement verbatim",
			raw:  "PRAGMA table_info(users)",
			opts: Options{MaxRows: 500},
			want: "PRAGMA table_info(users)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Prepare(tt.raw, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.ExecutionSQL)
		})
	}
}

func TestPrepare_SingleOuterLimit(t *testing.T) {
	// Property: a SELECT without LIMIT gets exactly one injected LIMIT
	// at the outer level, equal to the configured cap.
	for _, cap := range []int{1, 10, 500, 10000} {
		raw := "SELECT a, b FROM t WHERE a > 5"
		plan, err := Prepare(raw, Options{MaxRows: cap})
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(strings.ToUpper(plan.ExecutionSQL), "LIMIT"))
		assert.True(t, strings.HasSuffix(plan.ExecutionSQL, fmt.Sprintf("LIMIT %d", cap)))
		assert.Equal(t, cap, plan.AppliedLimit)
	}
}

func TestPrepare_UnboundedSelectConfirmation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts Options
		want bool
	}{
		{
			name: "unbounded select with setting on",
			raw:  "SELECT * FROM users",
			opts: Options{MaxRows: 100, ConfirmUnboundedSelect: true},
			want: true,
		},
		{
			name: "bounded select needs no confirmation",
			raw:  "SELECT * FROM users LIMIT 5",
			opts: Options{MaxRows: 100, ConfirmUnboundedSelect: true},
			want: false,
		},
		{
			name: "setting off",
			raw:  "SELECT * FROM users",
			opts: Options{MaxRows: 100},
			want: false,
		},
		{
			name: "write statements never need limit confirmation",
			raw:  "DELETE FROM users",
			opts: Options{MaxRows: 100, ConfirmUnboundedSelect: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Prepare(tt.raw, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.NeedsLimitConfirm)
		})
	}
}

func TestPrepare_StatementIsPreWrapText(t *testing.T) {
	plan, err := Prepare("  SELECT * FROM users;  ", Options{MaxRows: 100})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users;", plan.Statement)
}

func TestIsWriteStatement(t *testing.T) {
	assert.True(t, IsWriteStatement("drop table users"))
	assert.True(t, IsWriteStatement("  Vacuum"))
	assert.False(t, IsWriteStatement("SELECT 1"))
	assert.False(t, IsWriteStatement("EXPLAIN SELECT 1"))
	assert.False(t, IsWriteStatement(""))
}
