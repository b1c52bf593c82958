package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "eweb-intent/internal/common/errors"
	"eweb-intent/internal/common/metrics"
)

// Observability owns the OpenTelemetry meter and tracer providers and records
// one measurement per resolved query.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	resolutions    otelmetric.Int64Counter
	duration       otelmetric.Float64Histogram
}

// Options configures New. A nil Registerer means the default Prometheus registry;
// an empty JaegerEndpoint disables span export.
type Options struct {
	ServiceName    string
	JaegerEndpoint string
	Registerer     promclient.Registerer
}

// New never fails: when an exporter cannot be built the corresponding signal is
// disabled and the error is returned alongside a usable Observability.
func New(opts Options) (*Observability, error) {
	o := &Observability{}

	promOpts := []prometheus.Option{}
	if opts.Registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		return o, err
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
	meter := o.meterProvider.Meter(opts.ServiceName)

	o.resolutions, _ = meter.Int64Counter(
		"intent_resolve_calls",
		otelmetric.WithDescription("Number of resolved queries"),
	)
	o.duration, _ = meter.Float64Histogram(
		"intent_resolve_latency",
		otelmetric.WithDescription("Query resolution duration"),
		otelmetric.WithUnit("ms"),
	)

	tp, err := newTracerProvider(opts.JaegerEndpoint)
	if err != nil {
		return o, err
	}
	o.tracerProvider = tp
	return o, nil
}

// Tracer returns a named tracer, or a no-op tracer when tracing is disabled.
func (o *Observability) Tracer(name string) trace.Tracer {
	if o == nil || o.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return o.tracerProvider.Tracer(name)
}

// ObserveResolution records a finished resolution. intent is empty when
// classification failed.
func (o *Observability) ObserveResolution(ctx context.Context, intent string, err error, d time.Duration) {
	label := intent
	if label == "" {
		label = "unknown"
	}
	outcome := metrics.OutcomeSuccess
	code := ""
	if err != nil {
		outcome = metrics.OutcomeFailure
		code = string(apperrors.CodeOf(err))
	}

	metrics.IntentResolutions.WithLabelValues(label, outcome, code).Inc()
	metrics.IntentResolutionDuration.WithLabelValues(label).Observe(d.Seconds())

	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", label),
		attribute.String("outcome", outcome),
	)
	if o.resolutions != nil {
		o.resolutions.Add(ctx, 1, attrs)
	}
	if o.duration != nil {
		o.duration.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
