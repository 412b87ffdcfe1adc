package awsclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/credrotate/internal/config"
)

func TestLoadConfigStaticCredentials(t *testing.T) {
	awsCfg, err := LoadConfig(context.Background(), config.AWSConfig{
		Region:          "eu-central-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key", creds.AccessKeyID)
	assert.Equal(t, "test-secret", creds.SecretAccessKey)
}

func TestNewAppliesEndpoint(t *testing.T) {
	cfg := config.AWSConfig{Region: "us-east-1", Endpoint: "http://localhost:4566"}
	awsCfg := aws.Config{Region: "us-east-1"}

	clients := New(awsCfg, cfg)

	require.NotNil(t, clients.SecretsManager)
	require.NotNil(t, clients.Cognito)
	require.NotNil(t, clients.RDS)
	require.NotNil(t, clients.STS)
	assert.Equal(t, "http://localhost:4566", aws.ToString(clients.SecretsManager.Options().BaseEndpoint))
	assert.Equal(t, "http://localhost:4566", aws.ToString(clients.RDS.Options().BaseEndpoint))
}

func TestNewWithoutEndpoint(t *testing.T) {
	clients := New(aws.Config{Region: "us-east-1"}, config.AWSConfig{})

	assert.Nil(t, clients.Cognito.Options().BaseEndpoint)
	assert.Nil(t, clients.STS.Options().BaseEndpoint)
}
