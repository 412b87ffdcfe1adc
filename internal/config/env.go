package config

import (
	"strconv"
	"strings"

	rerrors "github.com/systmms/credrotate/internal/errors"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// FromEnv resolves a Config from environment variables. The backend is chosen
// by the first variable present in the order USER_POOL_ID, RDS_INSTANCE_ARN,
// ONLY_ROTATE_SECRET. Callers pass os.LookupEnv; tests pass a map lookup.
func FromEnv(lookup LookupFunc) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var cfg Config

	switch {
	case get(EnvUserPoolID) != "":
		cfg.Target = IdentityDirectory{UserPoolID: get(EnvUserPoolID)}
	case get(EnvRDSInstanceARN) != "":
		cfg.Target = Database{InstanceARN: get(EnvRDSInstanceARN)}
	case get(EnvOnlyRotateSecret) != "":
		cfg.Target = RotationOnly{}
	}

	if raw := get(EnvPasswordLength); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, rerrors.ConfigurationError{
				Field:   EnvPasswordLength,
				Value:   raw,
				Message: "must be an integer",
			}
		}
		cfg.Password.Length = n
	}
	cfg.Password.SpecialCharacters = get(EnvPasswordSpecials)

	cfg.AWS = AWSConfig{
		Region:   get(EnvAWSRegion),
		Endpoint: get(EnvAWSEndpoint),
	}

	cfg.Validation = ValidationConfig{
		Engine:   get(EnvValidationEngine),
		Host:     get(EnvValidationHost),
		Database: get(EnvValidationDBName),
		SSLMode:  get(EnvValidationSSLMode),
	}
	if raw := get(EnvValidationPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, rerrors.ConfigurationError{
				Field:   EnvValidationPort,
				Value:   raw,
				Message: "must be an integer",
			}
		}
		cfg.Validation.Port = port
	}

	if raw := get(EnvDebug); raw != "" {
		cfg.Debug, _ = strconv.ParseBool(raw)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
