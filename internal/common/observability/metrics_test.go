package observability

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eweb-intent/internal/common/errors"
)

var legacyMetricName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

func TestObserveResolution_ExportsToRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New(Options{ServiceName: "eweb-intent-test", Registerer: reg})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.ObserveResolution(ctx, "SupplierStock", nil, 12*time.Millisecond)
	obs.ObserveResolution(ctx, "", apperrors.NewUnrecognizedIntentError("hi"), time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "intent_resolve_calls_total")
	assert.Contains(t, joined, "intent_resolve_latency")
	for _, name := range names {
		assert.Regexp(t, legacyMetricName, name)
	}
}

func TestNew_DefaultRegistryGathersWithPromautoCollectors(t *testing.T) {
	obs, err := New(Options{ServiceName: "eweb-intent-test"})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	obs.ObserveResolution(context.Background(), "SalesHistory", nil, time.Millisecond)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err, "otel and promauto families must not share a name")

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "intent_resolutions_total")
	assert.Contains(t, names, "intent_resolve_calls_total")
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability

	assert.NotPanics(t, func() {
		obs.ObserveResolution(context.Background(), "SalesHistory", stderrors.New("x"), time.Millisecond)
		obs.Shutdown(context.Background())
	})
	assert.NotNil(t, obs.Tracer("test"))
}

func TestTracer_WithoutJaeger(t *testing.T) {
	obs, err := New(Options{ServiceName: "eweb-intent-test", Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	_, span := obs.Tracer("test").Start(context.Background(), "op")
	span.End()
}
