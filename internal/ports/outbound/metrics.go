package outbound

import (
	"context"
	"time"
)

// MetricsRecorder lets the application layer record metrics without
// depending on a specific telemetry implementation.
type MetricsRecorder interface {
	// RecordReconstruction records the duration and outcome ("ok",
	// "degraded", "error") of one portfolio reconstruction.
	RecordReconstruction(ctx context.Context, duration time.Duration, status string)

	// RecordCacheLookup records a position-cache lookup outcome
	// ("hit", "miss", "stale").
	RecordCacheLookup(ctx context.Context, outcome string)

	// RecordDegradedPrice records a symbol whose USD price could not be
	// resolved from any source.
	RecordDegradedPrice(ctx context.Context, symbol string)
}

// NopMetrics is a MetricsRecorder that discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordReconstruction(context.Context, time.Duration, string) {}
func (NopMetrics) RecordCacheLookup(context.Context, string)                   {}
func (NopMetrics) RecordDegradedPrice(context.Context, string)                 {}
