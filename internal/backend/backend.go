// Package backend propagates a freshly generated password to the system that
// actually authenticates with it.
package backend

import (
	"context"
	"fmt"

	"github.com/systmms/credrotate/internal/config"
	"github.com/systmms/credrotate/internal/credential"
)

// Propagator applies a pending credential to the backing system.
type Propagator interface {
	// Name identifies the backend in logs
	Name() string
	// SetPassword makes rec.Password the live password for rec.Username.
	SetPassword(ctx context.Context, rec credential.Record) error
}

// Clients holds the SDK clients a backend may need. Only the client for the
// configured target has to be non-nil.
type Clients struct {
	Cognito CognitoAPI
	RDS     RDSAPI
}

// New returns the propagator for the configured target.
func New(target config.Target, clients Clients) (Propagator, error) {
	switch t := target.(type) {
	case config.IdentityDirectory:
		if clients.Cognito == nil {
			return nil, fmt.Errorf("identity directory backend requires a Cognito client")
		}
		return NewDirectory(clients.Cognito, t.UserPoolID), nil
	case config.Database:
		if clients.RDS == nil {
			return nil, fmt.Errorf("database backend requires an RDS client")
		}
		instanceID, err := t.InstanceIdentifier()
		if err != nil {
			return nil, err
		}
		return NewDatabase(clients.RDS, instanceID), nil
	case config.RotationOnly:
		return RotationOnly{}, nil
	case nil:
		return nil, fmt.Errorf("no backend target configured")
	default:
		return nil, fmt.Errorf("unsupported backend target %T", target)
	}
}

// RotationOnly rotates the stored secret without touching any external system.
type RotationOnly struct{}

// Name implements Propagator
func (RotationOnly) Name() string { return "rotation-only" }

// SetPassword implements Propagator and does nothing.
func (RotationOnly) SetPassword(context.Context, credential.Record) error { return nil }
