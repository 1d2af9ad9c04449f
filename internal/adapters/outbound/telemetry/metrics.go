// Package telemetry provides OpenTelemetry-backed metrics recording.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

var _ outbound.MetricsRecorder = (*Metrics)(nil)

// Metrics implements the MetricsRecorder interface using OpenTelemetry.
type Metrics struct {
	reconstructionLatency metric.Float64Histogram
	cacheLookups          metric.Int64Counter
	degradedPrices        metric.Int64Counter
}

// NewMetrics creates a new OpenTelemetry metrics recorder.
// meterName should typically be the package name or service name.
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	latency, err := meter.Float64Histogram(
		"reconstruction_duration_seconds",
		metric.WithDescription("Time taken to reconstruct a wallet's positions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconstruction_duration_seconds histogram: %w", err)
	}

	lookups, err := meter.Int64Counter(
		"position_cache_lookups_total",
		metric.WithDescription("Total position cache lookups by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create position_cache_lookups_total counter: %w", err)
	}

	degraded, err := meter.Int64Counter(
		"degraded_prices_total",
		metric.WithDescription("Total price resolutions that degraded to zero"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create degraded_prices_total counter: %w", err)
	}

	return &Metrics{
		reconstructionLatency: latency,
		cacheLookups:          lookups,
		degradedPrices:        degraded,
	}, nil
}

// RecordReconstruction records the duration of a position reconstruction.
func (m *Metrics) RecordReconstruction(ctx context.Context, duration time.Duration, status string) {
	m.reconstructionLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordCacheLookup increments the cache lookup counter for an outcome
// (hit, miss, stale).
func (m *Metrics) RecordCacheLookup(ctx context.Context, outcome string) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordDegradedPrice increments the degraded price counter for a symbol.
func (m *Metrics) RecordDegradedPrice(ctx context.Context, symbol string) {
	m.degradedPrices.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", symbol)))
}
