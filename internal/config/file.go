package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	rerrors "github.com/systmms/credrotate/internal/errors"
	"github.com/systmms/credrotate/internal/password"
)

// fileDefinition is the YAML layout accepted by LoadFile
type fileDefinition struct {
	Backend struct {
		UserPoolID       string `yaml:"user_pool_id,omitempty"`
		RDSInstanceARN   string `yaml:"rds_instance_arn,omitempty"`
		OnlyRotateSecret bool   `yaml:"only_rotate_secret,omitempty"`
	} `yaml:"backend"`
	Password   password.Policy  `yaml:"password,omitempty"`
	AWS        AWSConfig        `yaml:"aws,omitempty"`
	Validation ValidationConfig `yaml:"validation,omitempty"`
	Debug      bool             `yaml:"debug,omitempty"`
}

// LoadFile reads a YAML configuration file. The document is checked against
// the embedded JSON schema before it is decoded.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, rerrors.ConfigurationError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: "Pass --config with an existing file or configure the function through environment variables",
			}
		}
		return Config{}, rerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (Config, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Config{}, rerrors.ConfigurationError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}
	if generic == nil {
		generic = map[string]interface{}{}
	}

	if err := validateSchema(generic); err != nil {
		return Config{}, err
	}

	var def fileDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Config{}, rerrors.ConfigurationError{Message: fmt.Sprintf("failed to decode configuration: %v", err)}
	}

	cfg := Config{
		Password:   def.Password,
		AWS:        def.AWS,
		Validation: def.Validation,
		Debug:      def.Debug,
	}
	switch {
	case def.Backend.UserPoolID != "":
		cfg.Target = IdentityDirectory{UserPoolID: def.Backend.UserPoolID}
	case def.Backend.RDSInstanceARN != "":
		cfg.Target = Database{InstanceARN: def.Backend.RDSInstanceARN}
	case def.Backend.OnlyRotateSecret:
		cfg.Target = RotationOnly{}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateSchema(document interface{}) error {
	jsonData, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return rerrors.ConfigurationError{
			Message: fmt.Sprintf("schema validation failed:\n  - %s", strings.Join(errorMessages, "\n  - ")),
		}
	}

	return nil
}

const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "backend": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "user_pool_id": {"type": "string"},
        "rds_instance_arn": {"type": "string", "pattern": "^arn:[^:]*:rds:"},
        "only_rotate_secret": {"type": "boolean"}
      }
    },
    "password": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "length": {"type": "integer", "minimum": 4},
        "special_characters": {"type": "string", "minLength": 1}
      }
    },
    "aws": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "region": {"type": "string"},
        "endpoint": {"type": "string"},
        "access_key_id": {"type": "string"},
        "secret_access_key": {"type": "string"}
      }
    },
    "validation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "engine": {"type": "string", "enum": ["postgres", "postgresql", "mysql", "mariadb"]},
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "database": {"type": "string"},
        "sslmode": {"type": "string"}
      }
    },
    "debug": {"type": "boolean"}
  }
}`
