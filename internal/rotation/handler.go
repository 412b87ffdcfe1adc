package rotation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/systmms/credrotate/internal/backend"
	"github.com/systmms/credrotate/internal/credential"
	"github.com/systmms/credrotate/internal/logging"
	"github.com/systmms/credrotate/internal/password"
	"github.com/systmms/credrotate/internal/probe"
	"github.com/systmms/credrotate/internal/secretstore"
)

// Handler runs rotation steps. It keeps no state between calls, so one
// Handler can serve every invocation of a warm Lambda container.
type Handler struct {
	store      secretstore.Store
	propagator backend.Propagator
	prober     probe.Prober
	generator  *password.Generator
	logger     *logging.Logger
	metrics    *Metrics
}

// Option configures a Handler
type Option func(*Handler)

// WithProber sets the testSecret probe. The default accepts every credential.
func WithProber(p probe.Prober) Option {
	return func(h *Handler) {
		h.prober = p
	}
}

// WithGenerator sets the password generator
func WithGenerator(g *password.Generator) Option {
	return func(h *Handler) {
		h.generator = g
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithMetrics enables step metrics
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a Handler over store that propagates passwords through p.
func NewHandler(store secretstore.Store, p backend.Propagator, opts ...Option) *Handler {
	h := &Handler{
		store:      store,
		propagator: p,
		prober:     probe.Noop{},
		generator:  password.NewGenerator(password.DefaultPolicy()),
		logger:     logging.NewWithWriter(io.Discard, false, true),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Dispatch validates the event's step and runs it. An unknown step is
// rejected before anything is read or written.
func (h *Handler) Dispatch(ctx context.Context, event Event) error {
	start := time.Now()

	step, err := ParseStep(event.Step)
	if err != nil {
		h.logger.Error("Rejected rotation event for %s: %v", event.SecretID, err)
		h.metrics.observe(step, start, err)
		return err
	}

	h.logger.Info("Running %s for %s (version %s, backend %s)",
		step, event.SecretID, event.ClientRequestToken, h.propagator.Name())

	switch step {
	case StepCreate:
		err = h.CreateSecret(ctx, event.SecretID, event.ClientRequestToken)
	case StepSet:
		err = h.SetSecret(ctx, event.SecretID, event.ClientRequestToken)
	case StepTest:
		err = h.TestSecret(ctx, event.SecretID, event.ClientRequestToken)
	case StepFinish:
		err = h.FinishSecret(ctx, event.SecretID, event.ClientRequestToken)
	}

	h.metrics.observe(step, start, err)
	if err != nil {
		h.logger.Error("%s failed for %s: %v", step, event.SecretID, err)
		return err
	}
	h.logger.Info("%s completed for %s", step, event.SecretID)
	return nil
}

// CreateSecret stores a new AWSPENDING version under token, keeping the
// username of the current version. Nothing is written when the pending
// version already exists.
func (h *Handler) CreateSecret(ctx context.Context, secretID, token string) error {
	_, err := h.store.GetSecretValue(ctx, secretID, secretstore.Pending(token))
	if err == nil {
		h.logger.Info("Pending version %s already exists for %s, nothing to create", token, secretID)
		return nil
	}
	if !secretstore.IsNotFound(err) {
		return fmt.Errorf("failed to check for pending version: %w", err)
	}

	current, err := h.readRecord(ctx, secretID, secretstore.Current())
	if err != nil {
		return err
	}

	pw, err := h.generator.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	value, err := current.WithPassword(pw).Encode()
	if err != nil {
		return err
	}

	if err := h.store.PutSecretValue(ctx, secretID, token, value, []string{secretstore.StagePending}); err != nil {
		return fmt.Errorf("failed to store pending version: %w", err)
	}

	h.logger.Info("Created pending version %s for %s (user %s)", token, secretID, current.Username)
	return nil
}

// SetSecret pushes the pending password to the backend.
func (h *Handler) SetSecret(ctx context.Context, secretID, token string) error {
	pending, err := h.readRecord(ctx, secretID, secretstore.Pending(token))
	if err != nil {
		return err
	}

	h.logger.Debug("Setting password for user %s via %s: %v", pending.Username, h.propagator.Name(), pending.Password)
	if err := h.propagator.SetPassword(ctx, pending); err != nil {
		return err
	}

	h.logger.Info("Set pending password for user %s via %s", pending.Username, h.propagator.Name())
	return nil
}

// TestSecret runs the configured probe against the pending credential. With
// the default probe it succeeds without touching the store.
func (h *Handler) TestSecret(ctx context.Context, secretID, token string) error {
	if _, ok := h.prober.(probe.Noop); ok {
		h.logger.Debug("No probe configured, accepting pending version %s", token)
		return nil
	}

	pending, err := h.readRecord(ctx, secretID, secretstore.Pending(token))
	if err != nil {
		return err
	}

	if err := h.prober.Probe(ctx, pending); err != nil {
		return fmt.Errorf("pending credential failed validation: %w", err)
	}

	h.logger.Info("Pending credential for user %s passed %s probe", pending.Username, h.prober.Name())
	return nil
}

// FinishSecret moves AWSCURRENT onto token in a single stage update. The
// previous holder, if any, is named as the version to remove it from.
func (h *Handler) FinishSecret(ctx context.Context, secretID, token string) error {
	versions, err := h.store.DescribeSecret(ctx, secretID)
	if err != nil {
		return fmt.Errorf("failed to describe secret: %w", err)
	}

	currentVersion := secretstore.FindStage(versions, secretstore.StageCurrent)
	if currentVersion == token {
		h.logger.Debug("Version %s already holds %s", token, secretstore.StageCurrent)
	}

	if err := h.store.UpdateVersionStage(ctx, secretID, secretstore.StageCurrent, token, currentVersion); err != nil {
		return fmt.Errorf("failed to promote version %s: %w", token, err)
	}

	if currentVersion == "" {
		h.logger.Info("Promoted version %s to %s for %s", token, secretstore.StageCurrent, secretID)
	} else {
		h.logger.Info("Promoted version %s to %s for %s, replacing %s",
			token, secretstore.StageCurrent, secretID, currentVersion)
	}
	return nil
}

func (h *Handler) readRecord(ctx context.Context, secretID string, sel secretstore.VersionSelector) (credential.Record, error) {
	v, err := h.store.GetSecretValue(ctx, secretID, sel)
	if err != nil {
		return credential.Record{}, fmt.Errorf("failed to read secret: %w", err)
	}
	rec, err := credential.Parse(v.SecretString)
	if err != nil {
		return credential.Record{}, fmt.Errorf("version %s of %s: %w", v.VersionID, secretID, err)
	}
	return rec, nil
}
