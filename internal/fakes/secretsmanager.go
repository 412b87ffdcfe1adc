package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/systmms/credrotate/internal/secretstore"
)

// FakeSecretsManagerClient serves the Secrets Manager API from a
// secretstore.Memory, translating its errors into SDK exception types.
type FakeSecretsManagerClient struct {
	Backing *secretstore.Memory

	GetSecretValueFunc           func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValueFunc           func(ctx context.Context, params *secretsmanager.PutSecretValueInput) (*secretsmanager.PutSecretValueOutput, error)
	DescribeSecretFunc           func(ctx context.Context, params *secretsmanager.DescribeSecretInput) (*secretsmanager.DescribeSecretOutput, error)
	UpdateSecretVersionStageFunc func(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput) (*secretsmanager.UpdateSecretVersionStageOutput, error)

	mu                  sync.Mutex
	PutCalls            []*secretsmanager.PutSecretValueInput
	UpdateStageCalls    []*secretsmanager.UpdateSecretVersionStageInput
	GetSecretValueCalls []*secretsmanager.GetSecretValueInput
}

// NewFakeSecretsManagerClient creates a fake with an empty backing store
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{Backing: secretstore.NewMemory()}
}

// AddCredentialSecret seeds a secret whose AWSCURRENT version holds value
func (f *FakeSecretsManagerClient) AddCredentialSecret(secretID, versionID, value string) {
	if err := f.Backing.CreateSecret(secretID, versionID, value); err != nil {
		panic(err)
	}
}

// GetSecretValue fakes the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	f.GetSecretValueCalls = append(f.GetSecretValueCalls, params)
	f.mu.Unlock()

	if f.GetSecretValueFunc != nil {
		return f.GetSecretValueFunc(ctx, params)
	}

	v, err := f.Backing.GetSecretValue(ctx, aws.ToString(params.SecretId), secretstore.VersionSelector{
		VersionID: aws.ToString(params.VersionId),
		Stage:     aws.ToString(params.VersionStage),
	})
	if err != nil {
		return nil, toSDKError(err)
	}

	return &secretsmanager.GetSecretValueOutput{
		Name:          params.SecretId,
		SecretString:  aws.String(v.SecretString),
		VersionId:     aws.String(v.VersionID),
		VersionStages: v.Stages,
	}, nil
}

// PutSecretValue fakes the PutSecretValue operation
func (f *FakeSecretsManagerClient) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.mu.Lock()
	f.PutCalls = append(f.PutCalls, params)
	f.mu.Unlock()

	if f.PutSecretValueFunc != nil {
		return f.PutSecretValueFunc(ctx, params)
	}

	err := f.Backing.PutSecretValue(ctx, aws.ToString(params.SecretId), aws.ToString(params.ClientRequestToken),
		aws.ToString(params.SecretString), params.VersionStages)
	if err != nil {
		return nil, toSDKError(err)
	}

	return &secretsmanager.PutSecretValueOutput{
		Name:          params.SecretId,
		VersionId:     params.ClientRequestToken,
		VersionStages: params.VersionStages,
	}, nil
}

// DescribeSecret fakes the DescribeSecret operation
func (f *FakeSecretsManagerClient) DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	if f.DescribeSecretFunc != nil {
		return f.DescribeSecretFunc(ctx, params)
	}

	versions, err := f.Backing.DescribeSecret(ctx, aws.ToString(params.SecretId))
	if err != nil {
		return nil, toSDKError(err)
	}

	return &secretsmanager.DescribeSecretOutput{
		Name:               params.SecretId,
		RotationEnabled:    aws.Bool(true),
		VersionIdsToStages: versions,
	}, nil
}

// UpdateSecretVersionStage fakes the UpdateSecretVersionStage operation
func (f *FakeSecretsManagerClient) UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error) {
	f.mu.Lock()
	f.UpdateStageCalls = append(f.UpdateStageCalls, params)
	f.mu.Unlock()

	if f.UpdateSecretVersionStageFunc != nil {
		return f.UpdateSecretVersionStageFunc(ctx, params)
	}

	err := f.Backing.UpdateVersionStage(ctx, aws.ToString(params.SecretId), aws.ToString(params.VersionStage),
		aws.ToString(params.MoveToVersionId), aws.ToString(params.RemoveFromVersionId))
	if err != nil {
		return nil, toSDKError(err)
	}

	return &secretsmanager.UpdateSecretVersionStageOutput{Name: params.SecretId}, nil
}

func toSDKError(err error) error {
	if errors.Is(err, secretstore.ErrNotFound) {
		return &types.ResourceNotFoundException{
			Message: aws.String("Secrets Manager can't find the specified secret value: " + err.Error()),
		}
	}
	return &types.InvalidRequestException{Message: aws.String(err.Error())}
}
