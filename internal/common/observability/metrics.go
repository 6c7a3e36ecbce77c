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
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	operationCounter  otelmetric.Int64Counter
	operationDuration otelmetric.Float64Histogram
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

	operationCounter, _ := meter.Int64Counter(
		"workflow.operations",
		otelmetric.WithDescription("Number of workflow operations processed"),
	)

	operationDuration, _ := meter.Float64Histogram(
		"workflow.operation.duration",
		otelmetric.WithDescription("Workflow operation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		operationCounter:  operationCounter,
		operationDuration: operationDuration,
	}
}

func (o *Observability) RecordOperation(ctx context.Context, operation, status string) {
	if o.operationCounter != nil {
		o.operationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordDuration(ctx context.Context, operation string, duration time.Duration) {
	if o.operationDuration != nil {
		o.operationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shut down meter provider: %v", err)
		}
	}
}
