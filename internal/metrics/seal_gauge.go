package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// SealStateFunc reports the current seal state of the vault.
type SealStateFunc func() (initialized, sealed bool)

// RegisterSealStateGauges registers two observable gauges, <namespace>_initialized and
// <namespace>_sealed, which report 1 or 0 each time the exporter is scraped.
func RegisterSealStateGauges(meterProvider metric.MeterProvider, namespace string, state SealStateFunc) error {
	meter := meterProvider.Meter(namespace)

	initializedGauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_initialized", namespace),
		metric.WithDescription("Whether the vault has been initialized (1) or not (0)"),
	)
	if err != nil {
		return fmt.Errorf("failed to create initialized gauge: %w", err)
	}

	sealedGauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_sealed", namespace),
		metric.WithDescription("Whether the vault is sealed (1) or unsealed (0)"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sealed gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		initialized, sealed := state()
		o.ObserveInt64(initializedGauge, boolToInt64(initialized))
		o.ObserveInt64(sealedGauge, boolToInt64(sealed))
		return nil
	}, initializedGauge, sealedGauge)
	if err != nil {
		return fmt.Errorf("failed to register seal state callback: %w", err)
	}

	return nil
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
