package backend

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/systmms/credrotate/internal/credential"
	rerrors "github.com/systmms/credrotate/internal/errors"
)

// CognitoAPI is the subset of the Cognito user pool client used here.
type CognitoAPI interface {
	AdminSetUserPassword(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error)
}

// Directory sets passwords on users of a Cognito user pool.
type Directory struct {
	client CognitoAPI
	poolID string
}

// NewDirectory creates a Directory for the given user pool
func NewDirectory(client CognitoAPI, poolID string) *Directory {
	return &Directory{client: client, poolID: poolID}
}

// Name implements Propagator
func (d *Directory) Name() string { return "identity-directory" }

// SetPassword sets a permanent password so the user is not forced to change
// it on next sign-in.
func (d *Directory) SetPassword(ctx context.Context, rec credential.Record) error {
	_, err := d.client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(d.poolID),
		Username:   aws.String(rec.Username),
		Password:   aws.String(rec.PasswordString()),
		Permanent:  true,
	})
	if err == nil {
		return nil
	}

	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return rerrors.CredentialTargetMissingError{
			Username: rec.Username,
			PoolID:   d.poolID,
			Err:      err,
		}
	}
	return err
}
