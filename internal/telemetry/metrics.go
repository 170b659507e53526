package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMeterName is the instrumentation scope of the readme sync metrics
const SyncMeterName = "github.com/stacklok/readmesync/sync"

// SyncMetrics holds the instruments recorded for each readme sync
type SyncMetrics struct {
	syncDuration  metric.Float64Histogram
	syncsTotal    metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// NewSyncMetrics creates the sync instruments. A nil provider yields nil metrics,
// and every Record method is a no-op on a nil receiver.
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMeterName)

	syncDuration, err := meter.Float64Histogram(
		"readmesync_sync_duration_seconds",
		metric.WithDescription("Duration of readme syncs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	syncsTotal, err := meter.Int64Counter(
		"readmesync_syncs_total",
		metric.WithDescription("Total number of readme syncs by outcome"),
		metric.WithUnit("{sync}"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"readmesync_stage_duration_seconds",
		metric.WithDescription("Duration of each outbound call of a sync in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:  syncDuration,
		syncsTotal:    syncsTotal,
		stageDuration: stageDuration,
	}, nil
}

// RecordSync records a finished sync. outcome is "success" or the error kind.
func (m *SyncMetrics) RecordSync(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.syncDuration.Record(ctx, duration.Seconds(), attrs)
	m.syncsTotal.Add(ctx, 1, attrs)
}

// RecordStage records one outbound call of a sync
func (m *SyncMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", success),
	))
}
