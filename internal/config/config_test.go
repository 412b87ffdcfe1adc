package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/systmms/credrotate/internal/errors"
	"github.com/systmms/credrotate/internal/password"
)

func lookupMap(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvTargetSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		env    map[string]string
		expect Target
	}{
		{
			name:   "user pool",
			env:    map[string]string{EnvUserPoolID: "us-east-1_abc"},
			expect: IdentityDirectory{UserPoolID: "us-east-1_abc"},
		},
		{
			name:   "database",
			env:    map[string]string{EnvRDSInstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb"},
			expect: Database{InstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb"},
		},
		{
			name:   "rotate only",
			env:    map[string]string{EnvOnlyRotateSecret: "true"},
			expect: RotationOnly{},
		},
		{
			name: "user pool wins over database",
			env: map[string]string{
				EnvUserPoolID:       "us-east-1_abc",
				EnvRDSInstanceARN:   "arn:aws:rds:us-east-1:123456789012:db:mydb",
				EnvOnlyRotateSecret: "1",
			},
			expect: IdentityDirectory{UserPoolID: "us-east-1_abc"},
		},
		{
			name: "database wins over rotate only",
			env: map[string]string{
				EnvRDSInstanceARN:   "arn:aws:rds:us-east-1:123456789012:db:mydb",
				EnvOnlyRotateSecret: "1",
			},
			expect: Database{InstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb"},
		},
		{
			name: "empty user pool is treated as absent",
			env: map[string]string{
				EnvUserPoolID:       "",
				EnvOnlyRotateSecret: "yes",
			},
			expect: RotationOnly{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv(lookupMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.expect, cfg.Target)
			assert.Equal(t, password.DefaultPolicy(), cfg.Password)
		})
	}
}

func TestFromEnvNoBackend(t *testing.T) {
	t.Parallel()

	_, err := FromEnv(lookupMap(map[string]string{"AWS_REGION": "us-east-1"}))

	var cfgErr rerrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "USER_POOL_ID, RDS_INSTANCE_ARN, or ONLY_ROTATE_SECRET environment variable is required")
}

func TestFromEnvOptionalSettings(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(lookupMap(map[string]string{
		EnvRDSInstanceARN:    "arn:aws:rds:eu-west-1:123456789012:db:orders",
		EnvPasswordLength:    "24",
		EnvPasswordSpecials:  "!#",
		EnvAWSRegion:         "eu-west-1",
		EnvAWSEndpoint:       "http://localhost:4566",
		EnvValidationEngine:  "Postgres",
		EnvValidationHost:    "orders.internal",
		EnvValidationDBName:  "orders",
		EnvValidationSSLMode: "require",
		EnvDebug:             "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, password.Policy{Length: 24, SpecialCharacters: "!#"}, cfg.Password)
	assert.Equal(t, AWSConfig{Region: "eu-west-1", Endpoint: "http://localhost:4566"}, cfg.AWS)
	assert.Equal(t, ValidationConfig{
		Engine:   "postgres",
		Host:     "orders.internal",
		Port:     5432,
		Database: "orders",
		SSLMode:  "require",
	}, cfg.Validation)
	assert.True(t, cfg.Debug)
}

func TestFromEnvInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		env           map[string]string
		errorContains string
	}{
		{
			name:          "non numeric length",
			env:           map[string]string{EnvOnlyRotateSecret: "1", EnvPasswordLength: "long"},
			errorContains: "PASSWORD_LENGTH",
		},
		{
			name:          "length below minimum",
			env:           map[string]string{EnvOnlyRotateSecret: "1", EnvPasswordLength: "3"},
			errorContains: "too short",
		},
		{
			name:          "short arn",
			env:           map[string]string{EnvRDSInstanceARN: "arn:aws:rds:us-east-1"},
			errorContains: "at least 7 colon-delimited fields",
		},
		{
			name:          "unsupported probe engine",
			env:           map[string]string{EnvRDSInstanceARN: "arn:aws:rds:us-east-1:1:db:x", EnvValidationEngine: "oracle", EnvValidationHost: "h"},
			errorContains: "unsupported database engine",
		},
		{
			name:          "probe without database backend",
			env:           map[string]string{EnvUserPoolID: "pool", EnvValidationEngine: "mysql", EnvValidationHost: "h"},
			errorContains: "requires the database backend",
		},
		{
			name:          "probe without host",
			env:           map[string]string{EnvRDSInstanceARN: "arn:aws:rds:us-east-1:1:db:x", EnvValidationEngine: "mysql"},
			errorContains: "host is required",
		},
		{
			name:          "bad probe port",
			env:           map[string]string{EnvRDSInstanceARN: "arn:aws:rds:us-east-1:1:db:x", EnvValidationPort: "abc"},
			errorContains: "VALIDATION_DB_PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDatabaseInstanceIdentifier(t *testing.T) {
	t.Parallel()

	id, err := Database{InstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb"}.InstanceIdentifier()
	require.NoError(t, err)
	assert.Equal(t, "mydb", id)

	id, err = Database{InstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb:extra"}.InstanceIdentifier()
	require.NoError(t, err)
	assert.Equal(t, "mydb", id)

	_, err = Database{InstanceARN: "mydb"}.InstanceIdentifier()
	assert.Error(t, err)
}

func TestTargetKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindIdentityDirectory, IdentityDirectory{}.Kind())
	assert.Equal(t, KindDatabase, Database{}.Kind())
	assert.Equal(t, KindRotationOnly, RotationOnly{}.Kind())
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "backend=identity-directory user_pool=p1", Config{Target: IdentityDirectory{UserPoolID: "p1"}}.Describe())
	assert.Equal(t, "backend=database instance=arn", Config{Target: Database{InstanceARN: "arn"}}.Describe())
	assert.Equal(t, "backend=rotation-only", Config{Target: RotationOnly{}}.Describe())
	assert.Equal(t, "backend=none", Config{}.Describe())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credrotate.yaml")
	content := `backend:
  rds_instance_arn: arn:aws:rds:us-east-1:123456789012:db:mydb
password:
  length: 20
aws:
  region: us-east-1
  endpoint: http://localhost:4566
  access_key_id: test
  secret_access_key: test
validation:
  engine: mysql
  host: localhost
  database: app
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, Database{InstanceARN: "arn:aws:rds:us-east-1:123456789012:db:mydb"}, cfg.Target)
	assert.Equal(t, password.Policy{Length: 20, SpecialCharacters: password.DefaultSpecialCharacters}, cfg.Password)
	assert.Equal(t, "test", cfg.AWS.AccessKeyID)
	assert.Equal(t, 3306, cfg.Validation.Port)
	assert.True(t, cfg.Debug)
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		content       string
		errorContains string
	}{
		{
			name:          "invalid yaml",
			content:       "backend: [[[",
			errorContains: "invalid YAML syntax",
		},
		{
			name:          "unknown top level key",
			content:       "backend:\n  only_rotate_secret: true\nextra: 1\n",
			errorContains: "schema validation failed",
		},
		{
			name:          "length below schema minimum",
			content:       "backend:\n  only_rotate_secret: true\npassword:\n  length: 2\n",
			errorContains: "schema validation failed",
		},
		{
			name:          "arn pattern",
			content:       "backend:\n  rds_instance_arn: mydb\n",
			errorContains: "schema validation failed",
		},
		{
			name:          "no backend",
			content:       "debug: true\n",
			errorContains: "environment variable is required",
		},
		{
			name:          "empty document",
			content:       "",
			errorContains: "environment variable is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestParseRotateOnly(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("backend:\n  only_rotate_secret: true\npassword:\n  special_characters: \"!\"\n"))
	require.NoError(t, err)

	assert.Equal(t, RotationOnly{}, cfg.Target)
	assert.Equal(t, "!", cfg.Password.SpecialCharacters)
	assert.Equal(t, password.DefaultLength, cfg.Password.Length)
}
