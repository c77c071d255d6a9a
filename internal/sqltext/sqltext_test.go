package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdent(t *testing.T) {
	tests := []struct {
		name  string
		ident string
		want  bool
	}{
		{"simple", "users", true},
		{"underscore prefix", "_internal", true},
		{"mixed case with digits", "Order2Items", true},
		{"empty", "", false},
		{"leading digit", "1st_column", false},
		{"embedded space", "user name", false},
		{"quote injection", `users"; DROP TABLE x; --`, false},
		{"dotted", "main.users", false},
		{"dash", "user-name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIdent(tt.ident))
		})
	}
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "O''Brien", EscapeString("O'Brien"))
	assert.Equal(t, "''''", EscapeString("''"))
	assert.Equal(t, "plain", EscapeString("plain"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT * FROM users", "select * from users"},
		{"  select\n\t*   from users  ", "select * from users"},
		{"SELECT *\nFROM users", "select * from users"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}

	// Equivalent statements share an identity.
	assert.Equal(t, Normalize("SELECT 1;"), Normalize("select   1;"))
}

func TestLeadingKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"select * from t", "SELECT"},
		{"  INSERT INTO t VALUES (1)", "INSERT"},
		{"vacuum;", "VACUUM"},
		{"VALUES(1)", "VALUES"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LeadingKeyword(tt.in))
	}
}
