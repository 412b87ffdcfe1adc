// Package secretstore provides access to the versioned secret storage service
// that drives rotation: secret values addressed by version id and stage label.
package secretstore

import (
	"context"
	"errors"
	"fmt"
)

// Stage labels used by the rotation protocol
const (
	StageCurrent  = "AWSCURRENT"
	StagePending  = "AWSPENDING"
	StagePrevious = "AWSPREVIOUS"
)

// ErrNotFound is matched by every error that reports a missing secret or a
// missing version/stage combination.
var ErrNotFound = errors.New("secret version not found")

// NotFoundError describes which lookup failed
type NotFoundError struct {
	SecretID  string
	VersionID string
	Stage     string
	Err       error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("secret %s", e.SecretID)
	if e.VersionID != "" {
		msg += fmt.Sprintf(" version %s", e.VersionID)
	}
	if e.Stage != "" {
		msg += fmt.Sprintf(" with stage %s", e.Stage)
	}
	return msg + " not found"
}

// Is makes errors.Is(err, ErrNotFound) succeed
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err signals a missing secret version
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// VersionSelector narrows a lookup. Empty fields are not sent; an empty
// selector reads the AWSCURRENT version.
type VersionSelector struct {
	VersionID string
	Stage     string
}

// Current selects the AWSCURRENT version
func Current() VersionSelector {
	return VersionSelector{Stage: StageCurrent}
}

// Pending selects the AWSPENDING version created for token
func Pending(token string) VersionSelector {
	return VersionSelector{VersionID: token, Stage: StagePending}
}

// SecretValue is a single secret version as returned by the store
type SecretValue struct {
	SecretString string
	VersionID    string
	Stages       []string
}

// Store is the subset of the secret storage service used by rotation
type Store interface {
	// GetSecretValue reads one version. A missing secret, version, or
	// version/stage pairing yields an error matching ErrNotFound.
	GetSecretValue(ctx context.Context, secretID string, sel VersionSelector) (SecretValue, error)

	// PutSecretValue writes a new version identified by token and attaches
	// the given stage labels to it.
	PutSecretValue(ctx context.Context, secretID, token, secretString string, stages []string) error

	// DescribeSecret returns the version id to stage labels mapping.
	DescribeSecret(ctx context.Context, secretID string) (map[string][]string, error)

	// UpdateVersionStage moves stage onto moveTo and off removeFrom in one
	// atomic call. removeFrom may be empty when no version holds the stage.
	UpdateVersionStage(ctx context.Context, secretID, stage, moveTo, removeFrom string) error
}

// FindStage returns the version id that carries stage, or "" if none does
func FindStage(versions map[string][]string, stage string) string {
	for versionID, stages := range versions {
		for _, s := range stages {
			if s == stage {
				return versionID
			}
		}
	}
	return ""
}
