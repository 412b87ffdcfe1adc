// Package config resolves the rotation setup once at startup. The result is
// an immutable Config value that is handed to the rotation handler; nothing
// downstream reads process state.
package config

import (
	"fmt"
	"strings"

	rerrors "github.com/systmms/credrotate/internal/errors"
	"github.com/systmms/credrotate/internal/password"
)

// Environment variable names understood by FromEnv
const (
	EnvUserPoolID        = "USER_POOL_ID"
	EnvRDSInstanceARN    = "RDS_INSTANCE_ARN"
	EnvOnlyRotateSecret  = "ONLY_ROTATE_SECRET"
	EnvPasswordLength    = "PASSWORD_LENGTH"
	EnvPasswordSpecials  = "PASSWORD_SPECIAL_CHARACTERS"
	EnvAWSRegion         = "AWS_REGION"
	EnvAWSEndpoint       = "AWS_ENDPOINT_URL"
	EnvValidationEngine  = "VALIDATION_DB_ENGINE"
	EnvValidationHost    = "VALIDATION_DB_HOST"
	EnvValidationPort    = "VALIDATION_DB_PORT"
	EnvValidationDBName  = "VALIDATION_DB_NAME"
	EnvValidationSSLMode = "VALIDATION_DB_SSLMODE"
	EnvDebug             = "DEBUG"
)

// TargetKind names a backend target variant
type TargetKind string

const (
	KindIdentityDirectory TargetKind = "identity-directory"
	KindDatabase          TargetKind = "database"
	KindRotationOnly      TargetKind = "rotation-only"
)

// Target is the backend whose live credential follows the secret. It is a
// closed set: IdentityDirectory, Database and RotationOnly.
type Target interface {
	Kind() TargetKind
	isTarget()
}

// IdentityDirectory targets a Cognito user pool
type IdentityDirectory struct {
	UserPoolID string
}

func (IdentityDirectory) Kind() TargetKind { return KindIdentityDirectory }
func (IdentityDirectory) isTarget()        {}

// Database targets an RDS instance by ARN
type Database struct {
	InstanceARN string
}

func (Database) Kind() TargetKind { return KindDatabase }
func (Database) isTarget()        {}

// InstanceIdentifier returns the DB instance identifier, the 7th
// colon-delimited field of the ARN (arn:aws:rds:region:account:db:<id>).
func (d Database) InstanceIdentifier() (string, error) {
	fields := strings.Split(d.InstanceARN, ":")
	if len(fields) < 7 || fields[6] == "" {
		return "", rerrors.ConfigurationError{
			Field:      EnvRDSInstanceARN,
			Value:      d.InstanceARN,
			Message:    "instance ARN must have at least 7 colon-delimited fields",
			Suggestion: "Use the form arn:aws:rds:<region>:<account>:db:<instance-identifier>",
		}
	}
	return fields[6], nil
}

// RotationOnly means the stored secret is itself the credential
type RotationOnly struct{}

func (RotationOnly) Kind() TargetKind { return KindRotationOnly }
func (RotationOnly) isTarget()        {}

// AWSConfig holds SDK overrides, mostly for LocalStack and local runs
type AWSConfig struct {
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// ValidationConfig enables the testSecret probe against the database
type ValidationConfig struct {
	Engine   string `yaml:"engine,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

// Enabled reports whether a probe is configured
func (v ValidationConfig) Enabled() bool {
	return v.Engine != ""
}

var defaultPorts = map[string]int{
	"postgres":   5432,
	"postgresql": 5432,
	"mysql":      3306,
	"mariadb":    3306,
}

// Config is the resolved rotation setup
type Config struct {
	Target     Target
	Password   password.Policy
	AWS        AWSConfig
	Validation ValidationConfig
	Debug      bool
}

// Validate checks that the configuration can drive a rotation
func (c Config) Validate() error {
	if c.Target == nil {
		return rerrors.ConfigurationError{
			Message: fmt.Sprintf("%s, %s, or %s environment variable is required",
				EnvUserPoolID, EnvRDSInstanceARN, EnvOnlyRotateSecret),
			Suggestion: "Set exactly one backend for the rotation function",
		}
	}

	switch t := c.Target.(type) {
	case IdentityDirectory:
		if t.UserPoolID == "" {
			return rerrors.ConfigurationError{Field: EnvUserPoolID, Message: "user pool id must not be empty"}
		}
	case Database:
		if _, err := t.InstanceIdentifier(); err != nil {
			return err
		}
	case RotationOnly:
	default:
		return rerrors.ConfigurationError{Field: "backend", Value: c.Target.Kind(), Message: "unknown backend target"}
	}

	if err := c.Password.Validate(); err != nil {
		return rerrors.ConfigurationError{
			Field:   "password",
			Value:   c.Password.Length,
			Message: err.Error(),
		}
	}

	if c.Validation.Enabled() {
		if _, ok := defaultPorts[strings.ToLower(c.Validation.Engine)]; !ok {
			return rerrors.ConfigurationError{
				Field:      EnvValidationEngine,
				Value:      c.Validation.Engine,
				Message:    "unsupported database engine for validation",
				Suggestion: "Use postgres or mysql",
			}
		}
		if c.Target.Kind() != KindDatabase {
			return rerrors.ConfigurationError{
				Field:   EnvValidationEngine,
				Value:   c.Validation.Engine,
				Message: fmt.Sprintf("validation probe requires the %s backend, got %s", KindDatabase, c.Target.Kind()),
			}
		}
		if c.Validation.Host == "" {
			return rerrors.ConfigurationError{Field: EnvValidationHost, Message: "database host is required when validation is enabled"}
		}
	}

	return nil
}

// normalize fills defaults that depend on other fields
func (c *Config) normalize() {
	if c.Password.Length == 0 {
		c.Password.Length = password.DefaultLength
	}
	if c.Password.SpecialCharacters == "" {
		c.Password.SpecialCharacters = password.DefaultSpecialCharacters
	}
	if c.Validation.Enabled() {
		c.Validation.Engine = strings.ToLower(c.Validation.Engine)
		if c.Validation.Port == 0 {
			c.Validation.Port = defaultPorts[c.Validation.Engine]
		}
	}
}

// Describe returns a one-line summary safe for logging
func (c Config) Describe() string {
	switch t := c.Target.(type) {
	case IdentityDirectory:
		return fmt.Sprintf("backend=%s user_pool=%s", t.Kind(), t.UserPoolID)
	case Database:
		return fmt.Sprintf("backend=%s instance=%s", t.Kind(), t.InstanceARN)
	case RotationOnly:
		return fmt.Sprintf("backend=%s", t.Kind())
	default:
		return "backend=none"
	}
}
