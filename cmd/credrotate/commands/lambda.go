package commands

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/systmms/credrotate/internal/logging"
	"github.com/systmms/credrotate/internal/rotation"
)

// NewLambdaCommand starts the Lambda runtime loop
func NewLambdaCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve rotation events from the Lambda runtime",
		Long: `Start the Lambda runtime loop. This is what runs when the binary is
deployed as a Secrets Manager rotation function; the backend is chosen from
USER_POOL_ID, RDS_INSTANCE_ARN or ONLY_ROTATE_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.LoadConfig()
			if err != nil {
				return err
			}

			// CloudWatch gets plain lines on stdout
			logger := logging.NewWithWriter(os.Stdout, cfg.Debug, true)
			logger.Info("Starting rotation function: %s", cfg.Describe())

			h, err := g.newHandler(context.Background(), cfg, logger, nil)
			if err != nil {
				return err
			}

			lambda.Start(rotation.LambdaHandler(h))
			return nil
		},
	}
}
