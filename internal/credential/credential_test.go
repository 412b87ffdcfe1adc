package credential

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectUser    string
		expectPass    string
		errorContains string
	}{
		{
			name:       "valid record",
			input:      `{"username":"svc","password":"old"}`,
			expectUser: "svc",
			expectPass: "old",
		},
		{
			name:       "extra fields ignored",
			input:      `{"username":"svc","password":"old","engine":"postgres"}`,
			expectUser: "svc",
			expectPass: "old",
		},
		{
			name:       "empty password allowed",
			input:      `{"username":"svc","password":""}`,
			expectUser: "svc",
		},
		{
			name:          "missing username",
			input:         `{"password":"old"}`,
			errorContains: "missing the username",
		},
		{
			name:          "missing password",
			input:         `{"username":"svc"}`,
			errorContains: "missing the password",
		},
		{
			name:          "not json",
			input:         `plain-text-secret`,
			errorContains: "not a valid credential record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.input)
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectUser, rec.Username)
			assert.Equal(t, tt.expectPass, rec.PasswordString())
		})
	}
}

func TestEncodeWritesPlainPassword(t *testing.T) {
	rec := Record{Username: "svc"}.WithPassword("N3w_pass")

	out, err := rec.Encode()
	require.NoError(t, err)

	assert.JSONEq(t, `{"username":"svc","password":"N3w_pass"}`, out)
}

func TestWithPasswordKeepsUsername(t *testing.T) {
	current, err := Parse(`{"username":"svc","password":"old"}`)
	require.NoError(t, err)

	pending := current.WithPassword("fresh")

	assert.Equal(t, "svc", pending.Username)
	assert.Equal(t, "fresh", pending.PasswordString())
	assert.Equal(t, "old", current.PasswordString())
}

func TestRecordFormattingRedactsPassword(t *testing.T) {
	rec := Record{Username: "svc"}.WithPassword("hunter2-secret")

	for _, verb := range []string{"%v", "%+v", "%#v"} {
		out := fmt.Sprintf(verb, rec)
		assert.NotContains(t, out, "hunter2-secret", verb)
		assert.Contains(t, out, "svc", verb)
	}
}
