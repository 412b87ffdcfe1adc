// Package probe checks that a pending credential actually works before it is
// promoted.
package probe

import (
	"context"

	"github.com/systmms/credrotate/internal/config"
	"github.com/systmms/credrotate/internal/credential"
)

// Prober validates a pending credential.
type Prober interface {
	Name() string
	Probe(ctx context.Context, rec credential.Record) error
}

// Noop accepts every credential.
type Noop struct{}

// Name implements Prober
func (Noop) Name() string { return "none" }

// Probe implements Prober
func (Noop) Probe(context.Context, credential.Record) error { return nil }

// New returns the prober for cfg. A database probe is only built when probe
// settings are present and the target is a database; everything else gets Noop.
func New(cfg config.Config, opts ...SQLOption) Prober {
	if !cfg.Validation.Enabled() {
		return Noop{}
	}
	if _, ok := cfg.Target.(config.Database); !ok {
		return Noop{}
	}
	return NewSQL(cfg.Validation, opts...)
}
