package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/credrotate/internal/backend"
	"github.com/systmms/credrotate/internal/secretstore"
)

func TestMetricsRecordDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	store := secretstore.NewMemory()
	require.NoError(t, store.CreateSecret("app", "v1", `{"username":"u","password":"p"}`))
	h := NewHandler(store, backend.RotationOnly{}, WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, h.Dispatch(ctx, Event{SecretID: "app", ClientRequestToken: "v2", Step: "createSecret"}))
	require.Error(t, h.Dispatch(ctx, Event{SecretID: "app", ClientRequestToken: "v2", Step: "bogus"}))
	require.Error(t, h.Dispatch(ctx, Event{SecretID: "missing", ClientRequestToken: "v2", Step: "finishSecret"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepTotal.WithLabelValues("createSecret", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepTotal.WithLabelValues("invalid", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepTotal.WithLabelValues("finishSecret", "error")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.stepTotal))
	assert.Equal(t, 3, testutil.CollectAndCount(m.stepDuration))
}

func TestNilMetricsIgnored(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(StepCreate, time.Now(), nil)
	})
}
