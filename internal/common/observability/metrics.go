// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	batchCounter  otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	batchCounter, _ := meter.Int64Counter(
		"batches.scored",
		otelmetric.WithDescription("Number of scoring batches processed"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"batches.duration",
		otelmetric.WithDescription("Scoring batch duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		batchCounter:  batchCounter,
		batchDuration: batchDuration,
	}
}

func (o *Observability) RecordBatchScored(ctx context.Context, status string) {
	if o.batchCounter != nil {
		o.batchCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordBatchDuration(ctx context.Context, duration time.Duration, status string) {
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
