package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xwavl/lib/infra"
)

type MetricsExporterType string

const (
	NoneExporter       MetricsExporterType = "none"
	ConsoleExporter    MetricsExporterType = "stdout"
	PrometheusExporter MetricsExporterType = "prometheus"
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

func ParseMetricsExporterType(name string) (MetricsExporterType, error) {
	switch typ := MetricsExporterType(strings.ToLower(strings.TrimSpace(name))); typ {
	case "", NoneExporter:
		return NoneExporter, nil
	case ConsoleExporter, PrometheusExporter:
		return typ, nil
	default:
	}
	return NoneExporter, infra.WrapErrorStackWithMessage(ErrUnknownMetricsExporter, name)
}

// ShutdownFunc flushes and stops the meter provider (and the metrics
// HTTP server for the prometheus exporter).
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(ctx context.Context) error { return nil }

type exporterCfg struct {
	out      io.Writer
	interval time.Duration
	timeout  time.Duration
	addr     string
}

type ExporterOption func(*exporterCfg)

// WithConsoleExporterWriter redirects the stdout exporter.
func WithConsoleExporterWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.out = w
	}
}

func WithConsoleExporterInterval(interval, timeout time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithPrometheusExporterAddr serves the /metrics endpoint on addr.
// Empty addr registers the collector without serving it.
func WithPrometheusExporterAddr(addr string) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.addr = addr
	}
}

// InitMetricsExporter installs the global otel meter provider of the
// exporter type.
func InitMetricsExporter(typ MetricsExporterType, opts ...ExporterOption) (ShutdownFunc, error) {
	cfg := &exporterCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	switch typ {
	case NoneExporter:
		return noopShutdown, nil
	case ConsoleExporter:
		stdoutOpts := make([]stdoutmetric.Option, 0, 2)
		if cfg.out != nil {
			stdoutOpts = append(stdoutOpts, stdoutmetric.WithWriter(cfg.out))
		}
		return newConsoleMetricsExporter(cfg.interval, cfg.timeout, stdoutOpts...)
	case PrometheusExporter:
		return newPrometheusMetricsExporter(cfg.addr)
	default:
	}
	return nil, infra.WrapErrorStackWithMessage(ErrUnknownMetricsExporter, string(typ))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
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

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(addr string) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	if len(addr) == 0 {
		return mp.Shutdown, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, infra.WrapErrorStack(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return func(ctx context.Context) error {
		return multierr.Combine(srv.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
