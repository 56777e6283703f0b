package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

// NewConsoleMetricsExporter serves for test/dev environment.
// It installs the global meter provider and returns its shutdown.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusMetricsExporter serves for the product environment, the
// metrics are fetched by HTTP through the prometheus default registry.
func NewPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
