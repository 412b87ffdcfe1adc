package secretstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// SecretsManagerClientAPI defines the AWS Secrets Manager operations used by
// the store. This allows for fakes in tests.
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error)
}

// SecretsManager implements Store on top of AWS Secrets Manager
type SecretsManager struct {
	client SecretsManagerClientAPI
}

// NewSecretsManager creates a store backed by the given client
func NewSecretsManager(client SecretsManagerClientAPI) *SecretsManager {
	return &SecretsManager{client: client}
}

// GetSecretValue reads a version by id and/or stage
func (s *SecretsManager) GetSecretValue(ctx context.Context, secretID string, sel VersionSelector) (SecretValue, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	}
	if sel.VersionID != "" {
		input.VersionId = aws.String(sel.VersionID)
	}
	if sel.Stage != "" {
		input.VersionStage = aws.String(sel.Stage)
	}

	out, err := s.client.GetSecretValue(ctx, input)
	if err != nil {
		if isNotFoundError(err) {
			return SecretValue{}, &NotFoundError{
				SecretID:  secretID,
				VersionID: sel.VersionID,
				Stage:     sel.Stage,
				Err:       err,
			}
		}
		return SecretValue{}, handleError("GetSecretValue", secretID, err)
	}

	if out.SecretString == nil {
		return SecretValue{}, fmt.Errorf("secret %s has no string value", secretID)
	}

	return SecretValue{
		SecretString: aws.ToString(out.SecretString),
		VersionID:    aws.ToString(out.VersionId),
		Stages:       out.VersionStages,
	}, nil
}

// PutSecretValue stores a new version under token
func (s *SecretsManager) PutSecretValue(ctx context.Context, secretID, token, secretString string, stages []string) error {
	_, err := s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:           aws.String(secretID),
		ClientRequestToken: aws.String(token),
		SecretString:       aws.String(secretString),
		VersionStages:      stages,
	})
	if err != nil {
		return handleError("PutSecretValue", secretID, err)
	}
	return nil
}

// DescribeSecret returns the version to stages mapping
func (s *SecretsManager) DescribeSecret(ctx context.Context, secretID string) (map[string][]string, error) {
	out, err := s.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, &NotFoundError{SecretID: secretID, Err: err}
		}
		return nil, handleError("DescribeSecret", secretID, err)
	}
	if out.VersionIdsToStages == nil {
		return map[string][]string{}, nil
	}
	return out.VersionIdsToStages, nil
}

// UpdateVersionStage issues a single UpdateSecretVersionStage call
func (s *SecretsManager) UpdateVersionStage(ctx context.Context, secretID, stage, moveTo, removeFrom string) error {
	input := &secretsmanager.UpdateSecretVersionStageInput{
		SecretId:        aws.String(secretID),
		VersionStage:    aws.String(stage),
		MoveToVersionId: aws.String(moveTo),
	}
	if removeFrom != "" {
		input.RemoveFromVersionId = aws.String(removeFrom)
	}

	if _, err := s.client.UpdateSecretVersionStage(ctx, input); err != nil {
		return handleError("UpdateSecretVersionStage", secretID, err)
	}
	return nil
}

func isNotFoundError(err error) bool {
	var resourceNotFound *types.ResourceNotFoundException
	return errors.As(err, &resourceNotFound)
}

// handleError adds the operation and secret id to an SDK error. The cause is
// kept in the chain so callers can still match SDK types.
func handleError(operation, secretID string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException":
			return fmt.Errorf("%s on %s denied, check the function role allows secretsmanager:%s: %w", operation, secretID, operation, err)
		case "ThrottlingException":
			return fmt.Errorf("%s on %s throttled: %w", operation, secretID, err)
		}
	}
	return fmt.Errorf("%s on %s failed: %w", operation, secretID, err)
}
