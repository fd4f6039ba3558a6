package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records credential lifecycle activity.
type BusinessMetrics interface {
	// RecordOperation counts a lifecycle operation ("create_user_key", "rotate", ...)
	// with its status ("success" or "error").
	RecordOperation(ctx context.Context, operation, status string)

	// RecordDuration observes how long a lifecycle operation took, in seconds.
	RecordDuration(ctx context.Context, operation string, duration time.Duration, status string)

	// RecordAuthentication counts bearer credential checks by outcome
	// ("success", "invalid", "error").
	RecordAuthentication(ctx context.Context, outcome string)

	// RecordSweep counts keys revoked by one sweeper phase ("expired", "grace_period").
	RecordSweep(ctx context.Context, phase string, revoked int)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	authCounter      metric.Int64Counter
	sweepCounter     metric.Int64Counter
}

// NewBusinessMetrics creates the lifecycle instruments under namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of API key lifecycle operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of API key lifecycle operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	authCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_authentications_total", namespace),
		metric.WithDescription("Total number of API key authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authentication counter: %w", err)
	}

	sweepCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_swept_keys_total", namespace),
		metric.WithDescription("Total number of API keys revoked by the expiration sweeper"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		authCounter:      authCounter,
		sweepCounter:     sweepCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordAuthentication(ctx context.Context, outcome string) {
	b.authCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (b *businessMetrics) RecordSweep(ctx context.Context, phase string, revoked int) {
	if revoked <= 0 {
		return
	}
	b.sweepCounter.Add(ctx, int64(revoked), metric.WithAttributes(attribute.String("phase", phase)))
}

// NoOpBusinessMetrics discards everything. Used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordAuthentication(ctx context.Context, outcome string) {}

func (n *NoOpBusinessMetrics) RecordSweep(ctx context.Context, phase string, revoked int) {}
