package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinAdapters(t *testing.T) {
	for _, name := range []string{"duckdb", "sqlite", "postgres"} {
		assert.True(t, IsRegistered(name), "expected %s to be registered", name)
	}
	assert.False(t, IsRegistered("oracle"))

	names := ListAdapters()
	assert.Contains(t, names, "duckdb")
	assert.Contains(t, names, "sqlite")
	assert.Contains(t, names, "postgres")
	assert.IsIncreasing(t, names)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "mysql"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "mysql", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "duckdb")
	assert.Contains(t, err.Error(), "sqldeck.yaml")
}

func TestNew_EmptyType(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter type not specified")
}

func TestNew_KnownTypes(t *testing.T) {
	for _, name := range []string{"duckdb", "sqlite", "postgres"} {
		a, err := New(Config{Type: name}, nil)
		require.NoError(t, err)
		assert.Equal(t, name, a.DialectName())
	}
}
