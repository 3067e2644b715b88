package hub

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the hub's OTel instruments. A nil *Metrics is a valid
// no-op, so hosts that do not wire a meter pay nothing.
type Metrics struct {
	ingestBatches    metric.Int64Counter
	ingestRows       metric.Int64Counter
	schemaEvolutions metric.Int64Counter
	runDuration      metric.Float64Histogram
	recoveries       metric.Int64Counter
	qualityScore     metric.Float64Gauge
}

// NewMetrics registers the hub's instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.ingestBatches, err = meter.Int64Counter("hub_ingest_batches_total",
		metric.WithDescription("Batches accepted at the ingestion boundary"),
	); err != nil {
		return nil, fmt.Errorf("create ingest batches counter: %w", err)
	}
	if m.ingestRows, err = meter.Int64Counter("hub_ingest_rows_total",
		metric.WithDescription("Rows accepted at the ingestion boundary"),
	); err != nil {
		return nil, fmt.Errorf("create ingest rows counter: %w", err)
	}
	if m.schemaEvolutions, err = meter.Int64Counter("hub_schema_evolutions_total",
		metric.WithDescription("New columns observed per domain"),
	); err != nil {
		return nil, fmt.Errorf("create schema evolutions counter: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram("hub_run_duration_seconds",
		metric.WithDescription("Wall time of pipeline materialization"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create run duration histogram: %w", err)
	}
	if m.recoveries, err = meter.Int64Counter("hub_checkpoint_recoveries_total",
		metric.WithDescription("Runs that fell back to the last checkpoint"),
	); err != nil {
		return nil, fmt.Errorf("create recoveries counter: %w", err)
	}
	if m.qualityScore, err = meter.Float64Gauge("hub_quality_score",
		metric.WithDescription("Current audit quality score, 0-100"),
	); err != nil {
		return nil, fmt.Errorf("create quality score gauge: %w", err)
	}
	return m, nil
}

func (m *Metrics) recordIngest(ctx context.Context, dom string, rows, newColumns int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("domain", dom))
	m.ingestBatches.Add(ctx, 1, attrs)
	m.ingestRows.Add(ctx, int64(rows), attrs)
	if newColumns > 0 {
		m.schemaEvolutions.Add(ctx, int64(newColumns), attrs)
	}
}

func (m *Metrics) recordRun(ctx context.Context, seconds float64, outcome string) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome == "recovered" {
		m.recoveries.Add(ctx, 1)
	}
}

func (m *Metrics) recordQuality(ctx context.Context, score float64) {
	if m == nil {
		return
	}
	m.qualityScore.Record(ctx, score)
}
