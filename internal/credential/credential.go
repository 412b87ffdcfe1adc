// Package credential defines the username/password record stored in every
// version of a rotated secret.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/systmms/credrotate/internal/logging"
)

// Record is the JSON payload of a secret version
type Record struct {
	Username string         `json:"username"`
	Password logging.Secret `json:"password"`
}

// Parse decodes a secret string into a Record. Both fields must be present.
func Parse(secretString string) (Record, error) {
	var raw struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := json.Unmarshal([]byte(secretString), &raw); err != nil {
		return Record{}, fmt.Errorf("secret value is not a valid credential record: %w", err)
	}
	if raw.Username == nil {
		return Record{}, fmt.Errorf("credential record is missing the username field")
	}
	if raw.Password == nil {
		return Record{}, fmt.Errorf("credential record is missing the password field")
	}

	return Record{
		Username: *raw.Username,
		Password: logging.Secret(*raw.Password),
	}, nil
}

// WithPassword returns a copy of r carrying a new password
func (r Record) WithPassword(password string) Record {
	return Record{
		Username: r.Username,
		Password: logging.Secret(password),
	}
}

// Encode serializes the record for storage
func (r Record) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode credential record: %w", err)
	}
	return string(data), nil
}

// PasswordString returns the plaintext password for handing to a backend
func (r Record) PasswordString() string {
	return string(r.Password)
}
