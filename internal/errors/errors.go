package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned when the process configuration cannot
// produce a usable rotation setup. It is fatal at startup.
type ConfigurationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigurationError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// InvalidStepError is returned by the dispatcher for a step it does not know
type InvalidStepError struct {
	Step string
}

func (e InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step parameter %q: expected one of createSecret, setSecret, testSecret, finishSecret", e.Step)
}

// CredentialTargetMissingError is returned when the identity directory has no
// user matching the credential being rotated.
type CredentialTargetMissingError struct {
	Username string
	PoolID   string
	Err      error
}

func (e CredentialTargetMissingError) Error() string {
	return fmt.Sprintf("user %s not found in the user pool %s", e.Username, e.PoolID)
}

func (e CredentialTargetMissingError) Unwrap() error {
	return e.Err
}

// CredentialUpdateFailedError wraps any failure of the database password update
type CredentialUpdateFailedError struct {
	InstanceID string
	Err        error
}

func (e CredentialUpdateFailedError) Error() string {
	msg := "failed to update database password"
	if e.InstanceID != "" {
		msg += fmt.Sprintf(" for instance %s", e.InstanceID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e CredentialUpdateFailedError) Unwrap() error {
	return e.Err
}

// InvalidLengthError is returned when a password cannot hold one character of
// every required class.
type InvalidLengthError struct {
	Length int
	Min    int
}

func (e InvalidLengthError) Error() string {
	return fmt.Sprintf("password length %d is too short: at least %d characters are required", e.Length, e.Min)
}
