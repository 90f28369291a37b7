package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type ShutdownFunc func(ctx context.Context) error

// NewConsoleMetricsExporter serves for test/dev environment.
// The metrics are written periodically and flushed once more on shutdown.
func NewConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	opts := []stdoutmetric.Option{
		stdoutmetric.WithoutTimestamps(),
	}
	if w != nil {
		opts = append(opts, stdoutmetric.WithWriter(w))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusMetricsExporter registers into the prometheus default
// registerer, the metrics are fetched by HTTP (promhttp.Handler).
func NewPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
