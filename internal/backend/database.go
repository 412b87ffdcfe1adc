package backend

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/systmms/credrotate/internal/credential"
	rerrors "github.com/systmms/credrotate/internal/errors"
)

// RDSAPI is the subset of the RDS client used here.
type RDSAPI interface {
	ModifyDBInstance(ctx context.Context, params *rds.ModifyDBInstanceInput, optFns ...func(*rds.Options)) (*rds.ModifyDBInstanceOutput, error)
}

// Database changes the master password of an RDS instance. The username in
// the record is not sent; RDS only knows one master user.
type Database struct {
	client     RDSAPI
	instanceID string
}

// NewDatabase creates a Database for the given instance identifier
func NewDatabase(client RDSAPI, instanceID string) *Database {
	return &Database{client: client, instanceID: instanceID}
}

// Name implements Propagator
func (d *Database) Name() string { return "database" }

// SetPassword implements Propagator.
func (d *Database) SetPassword(ctx context.Context, rec credential.Record) error {
	_, err := d.client.ModifyDBInstance(ctx, &rds.ModifyDBInstanceInput{
		DBInstanceIdentifier: aws.String(d.instanceID),
		MasterUserPassword:   aws.String(rec.PasswordString()),
		ApplyImmediately:     aws.Bool(true),
	})
	if err != nil {
		return rerrors.CredentialUpdateFailedError{InstanceID: d.instanceID, Err: err}
	}
	return nil
}
