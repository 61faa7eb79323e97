// Package telemetry provides OpenTelemetry instrumentation for the sync engine.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/dsimmons122/employee-management/sync"
)

// SyncMetrics holds the OpenTelemetry instruments for sync run metrics
type SyncMetrics struct {
	syncDuration  metric.Float64Histogram
	recordsSynced metric.Int64Counter
	recordsFailed metric.Int64Counter
	activeRuns    metric.Int64UpDownCounter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"empsync_run_duration_seconds",
		metric.WithDescription("Duration of sync runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	recordsSynced, err := meter.Int64Counter(
		"empsync_records_synced_total",
		metric.WithDescription("Number of records synced across all runs"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	recordsFailed, err := meter.Int64Counter(
		"empsync_records_failed_total",
		metric.WithDescription("Number of records that failed to sync across all runs"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	activeRuns, err := meter.Int64UpDownCounter(
		"empsync_active_runs",
		metric.WithDescription("Number of sync runs currently in flight"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:  syncDuration,
		recordsSynced: recordsSynced,
		recordsFailed: recordsFailed,
		activeRuns:    activeRuns,
	}, nil
}

// RecordRun records the outcome of one completed sync run
func (m *SyncMetrics) RecordRun(
	ctx context.Context,
	kind, status string,
	duration time.Duration,
	synced, failed int64,
) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("status", status),
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.recordsSynced.Add(ctx, synced, metric.WithAttributes(attribute.String("kind", kind)))
	m.recordsFailed.Add(ctx, failed, metric.WithAttributes(attribute.String("kind", kind)))
}

// RunStarted increments the in-flight run gauge
func (m *SyncMetrics) RunStarted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.activeRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RunFinished decrements the in-flight run gauge
func (m *SyncMetrics) RunFinished(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.activeRuns.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}
