package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccount_Valid(t *testing.T) {
	for _, username := range []string{"alice", "Bob42", "user.name", "user@mail", "a-b_c+d"} {
		assert.Empty(t, validateAccount(username, "P@ssw0rd"), "username %q should pass", username)
	}
}

func TestValidateAccount_UsernameViolations(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"contains space", "user name"},
		{"contains hash", "user#1"},
		{"contains slash", "user/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := validateAccount(tt.username, "P@ssw0rd")
			assert.NotEmpty(t, violations)
		})
	}
}

func TestValidatePassword_Violations(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"too short", "P@s1", "Passwords must be at least 6 characters"},
		{"no lowercase", "P@SSW0RD", "Passwords must have at least one lowercase ('a'-'z')"},
		{"no uppercase", "p@ssw0rd", "Passwords must have at least one uppercase ('A'-'Z')"},
		{"no digit", "P@ssword", "Passwords must have at least one digit ('0'-'9')"},
		{"no symbol", "Passw0rd", "Passwords must have at least one non alphanumeric character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := validatePassword(tt.password)
			require.NotEmpty(t, violations)
			assert.Contains(t, violations, tt.want)
		})
	}
}

func TestValidatePassword_ReportsAllViolations(t *testing.T) {
	violations := validatePassword("abc")
	// short + missing upper, digit and symbol
	assert.Len(t, violations, 4)
}

func TestValidateAccount_FirstErrorIsUsable(t *testing.T) {
	// The first reported violation is what registration surfaces
	violations := validateAccount("bad user", "weak")
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0], "Username")
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", normalizeUsername("Alice"))
	assert.Equal(t, "alice", normalizeUsername("  ALICE  "))
	assert.Equal(t, "alice", normalizeUsername("alice"))
}
