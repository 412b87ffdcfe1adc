package rotation_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/credrotate/internal/backend"
	"github.com/systmms/credrotate/internal/logging"
	"github.com/systmms/credrotate/internal/rotation"
	"github.com/systmms/credrotate/internal/secretstore"
)

func TestLambdaHandler(t *testing.T) {
	var buf bytes.Buffer
	store := newStore(t)
	h := rotation.NewHandler(store, backend.RotationOnly{},
		rotation.WithLogger(logging.NewWithWriter(&buf, false, true)))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})
	err := rotation.LambdaHandler(h)(ctx, events.SecretsManagerSecretRotationEvent{
		Step:               "createSecret",
		SecretID:           secretID,
		ClientRequestToken: token,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "[req-123]")
	_, err = store.GetSecretValue(context.Background(), secretID, secretstore.Pending(token))
	assert.NoError(t, err)
}

func TestLambdaHandlerWithoutLambdaContext(t *testing.T) {
	var buf bytes.Buffer
	h := rotation.NewHandler(newStore(t), backend.RotationOnly{},
		rotation.WithLogger(logging.NewWithWriter(&buf, false, true)))

	err := rotation.LambdaHandler(h)(context.Background(), events.SecretsManagerSecretRotationEvent{
		Step:     "nope",
		SecretID: secretID,
	})
	require.Error(t, err)
	assert.NotContains(t, buf.String(), "[]")
}
