package commands

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/systmms/credrotate/internal/awsclient"
	"github.com/systmms/credrotate/internal/backend"
	"github.com/systmms/credrotate/internal/config"
	"github.com/systmms/credrotate/internal/logging"
	"github.com/systmms/credrotate/internal/password"
	"github.com/systmms/credrotate/internal/probe"
	"github.com/systmms/credrotate/internal/rotation"
	"github.com/systmms/credrotate/internal/secretstore"
)

// EnvLambdaRuntimeAPI is set by the Lambda runtime in every function container
const EnvLambdaRuntimeAPI = "AWS_LAMBDA_RUNTIME_API"

// Globals carries the root flags and process hooks shared by every command.
type Globals struct {
	ConfigFile string
	Debug      bool
	NoColor    bool

	Logger      *logging.Logger
	LookupEnv   config.LookupFunc
	LoadClients func(ctx context.Context, cfg config.AWSConfig) (Services, error)
}

// STSAPI is the caller identity lookup used by doctor
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Services are the AWS APIs the commands talk to
type Services struct {
	SecretsManager secretstore.SecretsManagerClientAPI
	Cognito        backend.CognitoAPI
	RDS            backend.RDSAPI
	STS            STSAPI
}

// DefaultClients builds real AWS clients
func DefaultClients(ctx context.Context, cfg config.AWSConfig) (Services, error) {
	clients, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return Services{}, err
	}
	return Services{
		SecretsManager: clients.SecretsManager,
		Cognito:        clients.Cognito,
		RDS:            clients.RDS,
		STS:            clients.STS,
	}, nil
}

// InLambda reports whether the process runs inside a Lambda container
func InLambda(lookup config.LookupFunc) bool {
	v, ok := lookup(EnvLambdaRuntimeAPI)
	return ok && v != ""
}

// LoadConfig reads --config when given, otherwise the environment. --debug
// turns on debug logging regardless of the source.
func (g *Globals) LoadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if g.ConfigFile != "" {
		cfg, err = config.LoadFile(g.ConfigFile)
	} else {
		cfg, err = config.FromEnv(g.LookupEnv)
	}
	if err != nil {
		return config.Config{}, err
	}
	if g.Debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// newHandler wires a rotation handler for cfg on top of real or injected AWS
// clients. reg may be nil.
func (g *Globals) newHandler(ctx context.Context, cfg config.Config, logger *logging.Logger, reg prometheus.Registerer) (*rotation.Handler, error) {
	services, err := g.LoadClients(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	propagator, err := backend.New(cfg.Target, backend.Clients{
		Cognito: services.Cognito,
		RDS:     services.RDS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up backend: %w", err)
	}

	opts := []rotation.Option{
		rotation.WithLogger(logger),
		rotation.WithGenerator(password.NewGenerator(cfg.Password)),
		rotation.WithProber(probe.New(cfg)),
	}
	if reg != nil {
		opts = append(opts, rotation.WithMetrics(rotation.NewMetrics(reg)))
	}

	store := secretstore.NewSecretsManager(services.SecretsManager)
	return rotation.NewHandler(store, propagator, opts...), nil
}
