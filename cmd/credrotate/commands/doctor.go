package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/internal/config"
	"github.com/systmms/credrotate/internal/probe"
)

// NewDoctorCommand checks configuration and AWS access
func NewDoctorCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and AWS credentials",
		Long: `Verify that the rotation function is ready to run.

This command checks:
- Backend selection from the environment or --config
- Password policy and validation probe settings
- AWS credentials (STS GetCallerIdentity)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g.Logger.Info("Checking credrotate configuration...")
			cfg, err := g.LoadConfig()
			if err != nil {
				g.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			g.Logger.Info("Configuration loaded successfully")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
			_, _ = fmt.Fprintf(w, "backend\tok\t%s\n", describeTarget(cfg.Target))
			_, _ = fmt.Fprintf(w, "password\tok\tlength=%d special=%q\n", cfg.Password.Length, cfg.Password.SpecialCharacters)
			_, _ = fmt.Fprintf(w, "probe\tok\t%s\n", describeProbe(cfg))

			identityErr := checkIdentity(ctx, g, cfg, w)
			if err := w.Flush(); err != nil {
				return err
			}
			if identityErr != nil {
				g.Logger.Error("AWS credentials check failed: %v", identityErr)
				return fmt.Errorf("AWS credentials check failed: %w", identityErr)
			}

			g.Logger.Info("All checks passed")
			return nil
		},
	}
}

func checkIdentity(ctx context.Context, g *Globals, cfg config.Config, w *tabwriter.Writer) error {
	services, err := g.LoadClients(ctx, cfg.AWS)
	if err != nil {
		_, _ = fmt.Fprintf(w, "aws\terror\t%v\n", err)
		return err
	}

	out, err := services.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		_, _ = fmt.Fprintf(w, "aws\terror\t%v\n", err)
		return err
	}

	_, _ = fmt.Fprintf(w, "aws\tok\taccount=%s arn=%s\n", aws.ToString(out.Account), aws.ToString(out.Arn))
	return nil
}

func describeTarget(target config.Target) string {
	switch t := target.(type) {
	case config.IdentityDirectory:
		return fmt.Sprintf("identity directory (user pool %s)", t.UserPoolID)
	case config.Database:
		id, _ := t.InstanceIdentifier()
		return fmt.Sprintf("database (instance %s)", id)
	case config.RotationOnly:
		return "rotation only"
	default:
		return "none"
	}
}

func describeProbe(cfg config.Config) string {
	p := probe.New(cfg)
	if _, ok := p.(probe.Noop); ok {
		if cfg.Validation.Enabled() {
			return "disabled (probe settings only apply to database targets)"
		}
		return "disabled"
	}
	return fmt.Sprintf("%s at %s:%d", p.Name(), cfg.Validation.Host, cfg.Validation.Port)
}
