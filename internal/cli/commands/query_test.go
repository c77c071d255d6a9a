package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTestEngine points the env-fallback config at an in-memory sqlite
// database with confirmations skipped.
func setTestEngine(t *testing.T) {
	t.Helper()
	t.Setenv("SQLDECK_ENGINE_TYPE", "sqlite")
	t.Setenv("SQLDECK_ENGINE_PATH", ":memory:")
	t.Setenv("SQLDECK_YES", "true")
}

func TestQueryCommandSelect(t *testing.T) {
	setTestEngine(t)

	cmd := NewQueryCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"SELECT 1 AS one, 'x' AS label", "--format", "json"})

	require.NoError(t, cmd.Execute())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.EqualValues(t, 1, decoded[0]["one"])
	assert.Equal(t, "x", decoded[0]["label"])
}

func TestQueryCommandRowCap(t *testing.T) {
	setTestEngine(t)
	t.Setenv("SQLDECK_MAX_ROWS", "2")

	cmd := NewQueryCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"SELECT 1 AS n UNION ALL SELECT 2 UNION ALL SELECT 3",
		"--format", "json",
	})

	require.NoError(t, cmd.Execute())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestQueryCommandExplain(t *testing.T) {
	setTestEngine(t)

	cmd := NewQueryCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"SELECT * FROM sqlite_master", "--explain"})

	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestQueryCommandEngineError(t *testing.T) {
	setTestEngine(t)

	cmd := NewQueryCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"SELECT * FROM no_such_table"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_table")
}

func TestQueryCommandDeclinedWrite(t *testing.T) {
	setTestEngine(t)
	t.Setenv("SQLDECK_YES", "false")

	cmd := NewQueryCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"DROP TABLE customers"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "write statement")
}
