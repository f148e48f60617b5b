package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricInvocations = "callback.invocations"
	MetricErrors      = "callback.errors"
	MetricDuration    = "callback.duration_ms"
	MetricFailures    = "instrumentation.failures"
)

// Metrics records callback and instrumentation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordInvocation records one instrumented callback invocation.
	RecordInvocation(ctx context.Context, name string, duration time.Duration, err error)

	// RecordFailure records a swallowed instrumentation failure in op.
	RecordFailure(ctx context.Context, op string, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	invocations metric.Int64Counter
	errors      metric.Int64Counter
	duration    metric.Float64Histogram
	failures    metric.Int64Counter
}

// NewMetrics creates the instrumentation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	invocations, err := meter.Int64Counter(
		MetricInvocations,
		metric.WithDescription("Total number of instrumented callback invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(
		MetricErrors,
		metric.WithDescription("Total number of callback invocations that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Callback duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		MetricFailures,
		metric.WithDescription("Instrumentation failures swallowed to protect callers"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		invocations: invocations,
		errors:      errs,
		duration:    duration,
		failures:    failures,
	}, nil
}

func (m *metricsImpl) RecordInvocation(ctx context.Context, name string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("callback.name", name))

	m.invocations.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordFailure(ctx context.Context, op string, err error) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("instrumentation.op", op)))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordInvocation(context.Context, string, time.Duration, error) {}
func (nopMetrics) RecordFailure(context.Context, string, error)                   {}
