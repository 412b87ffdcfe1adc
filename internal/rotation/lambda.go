package rotation

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// LambdaHandler adapts h to the signature expected by lambda.Start. Log lines
// of each invocation carry the Lambda request id.
func LambdaHandler(h *Handler) func(context.Context, events.SecretsManagerSecretRotationEvent) error {
	return func(ctx context.Context, ev events.SecretsManagerSecretRotationEvent) error {
		invocation := h
		if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
			scoped := *h
			scoped.logger = h.logger.With(lc.AwsRequestID)
			invocation = &scoped
		}

		return invocation.Dispatch(ctx, Event{
			SecretID:           ev.SecretID,
			ClientRequestToken: ev.ClientRequestToken,
			Step:               ev.Step,
		})
	}
}
