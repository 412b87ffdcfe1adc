package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "secret is redacted",
			input:    "my-secret-password",
			expected: "[REDACTED]",
		},
		{
			name:     "empty secret is still redacted",
			input:    "",
			expected: "[REDACTED]",
		},
		{
			name:     "complex secret is redacted",
			input:    "password123!@#",
			expected: "[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Secret(tt.input).String())
			assert.Equal(t, tt.expected, Secret(tt.input).GoString())
		})
	}
}

func TestSecretFormatting(t *testing.T) {
	secret := Secret("Xy7_%abc12@Q")

	for _, verb := range []string{"%s", "%v", "%#v"} {
		out := fmt.Sprintf(verb, secret)
		assert.Equal(t, "[REDACTED]", out, "verb %s", verb)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)

	logger.Info("formatted %s message", "info")
	logger.Warn("formatted %s message", "warn")
	logger.Error("formatted %s message", "error")
	logger.Debug("formatted %s message", "debug")

	out := buf.String()
	assert.Contains(t, out, "✓ formatted info message")
	assert.Contains(t, out, "⚠ formatted warn message")
	assert.Contains(t, out, "✗ formatted error message")
	assert.Contains(t, out, "[DEBUG] formatted debug message")
	assert.NotContains(t, out, "\033[", "no-color output must not contain escape codes")
}

func TestLoggerDebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.Debug("hidden")

	assert.Empty(t, buf.String())
	assert.False(t, logger.DebugEnabled())
}

func TestLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, false)

	logger.Info("colored")

	assert.Contains(t, buf.String(), "\033[32m")
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true)

	logger.With("req-1").With("createSecret").Info("started")
	logger.Info("plain")

	out := buf.String()
	assert.Contains(t, out, "✓ [req-1] [createSecret] started")
	assert.Contains(t, out, "✓ plain")
}

func TestLoggerNeverPrintsSecretValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)
	value := "super-secret-password-12345"

	logger.Info("Retrieved secret: %s", Secret(value))
	logger.Debug("Processing secret: %v", Secret(value))

	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, buf.String(), value)
}
