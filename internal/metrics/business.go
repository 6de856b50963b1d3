package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Certificate lifecycle events counted by RecordCertificate.
const (
	CertificateIssued  = "issued"
	CertificateRevoked = "revoked"
)

// BusinessMetrics records counts and durations of trust core operations.
type BusinessMetrics interface {
	// RecordOperation counts one use case call. Domain is "seal" or "pki",
	// operation is e.g. "unseal" or "sign_csr", status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long the call took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordCertificate counts a certificate that was issued or revoked, by cert_type.
	RecordCertificate(ctx context.Context, certType, event string)
}

type businessMetrics struct {
	operationCounter   metric.Int64Counter
	durationHisto      metric.Float64Histogram
	certificateCounter metric.Int64Counter
}

// NewBusinessMetrics creates the trust core instruments on meterProvider. Metric
// names are prefixed with namespace (e.g. "trustcore_operations_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of seal and PKI operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of seal and PKI operations in seconds"),
		metric.WithUnit("s"),
		// RSA 4096 key generation dominates the upper buckets.
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	certificateCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_certificates_total", namespace),
		metric.WithDescription("Certificates issued or revoked, by certificate type"),
		metric.WithUnit("{certificate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate counter: %w", err)
	}

	return &businessMetrics{
		operationCounter:   operationCounter,
		durationHisto:      durationHisto,
		certificateCounter: certificateCounter,
	}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordCertificate(ctx context.Context, certType, event string) {
	b.certificateCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cert_type", certType),
		attribute.String("event", event),
	))
}

// NoOpBusinessMetrics discards everything; used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordCertificate(ctx context.Context, certType, event string) {}
