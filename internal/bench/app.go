package bench

import (
	"context"
	"io"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xwavl/lib/infra"
	"github.com/benz9527/xwavl/lib/xlog"
	"github.com/benz9527/xwavl/observability"
)

const (
	poolReleaseTimeout = 5 * time.Second
	appStopTimeout     = 10 * time.Second
)

// Output is where the reports are rendered.
type Output struct {
	Writer io.Writer
}

// Metrics tells whether an otel exporter is installed for this run.
type Metrics struct {
	exporter observability.MetricsExporterType
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.exporter != observability.NoneExporter
}

func NewLogger(lc fx.Lifecycle, cfg *Config) xlog.XLogger {
	enc, _ := xlog.ParseLogEncoder(cfg.Log.Encoder)
	logger := xlog.NewXLogger(
		xlog.WithXLoggerStrLevel(cfg.Log.Level),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerConsoleCore(),
		xlog.WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
		xlog.WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Syncing a terminal stderr fails on some platforms.
			_ = logger.Sync()
			return nil
		},
	})
	return logger
}

func NewMetrics(lc fx.Lifecycle, cfg *Config, out Output, logger xlog.XLogger) (*Metrics, error) {
	typ, err := observability.ParseMetricsExporterType(cfg.Metrics.Exporter)
	if err != nil {
		return nil, err
	}
	shutdown, err := observability.InitMetricsExporter(typ,
		observability.WithConsoleExporterWriter(out.Writer),
		observability.WithConsoleExporterInterval(cfg.Metrics.Interval, 0),
		observability.WithPrometheusExporterAddr(cfg.Metrics.Addr),
	)
	if err != nil {
		return nil, err
	}
	m := &Metrics{exporter: typ}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !m.Enabled() {
				return nil
			}
			logger.Info("metrics exporter installed",
				zap.String("exporter", string(typ)),
				zap.String("addr", cfg.Metrics.Addr),
			)
			return observability.InitAppStats("bench")
		},
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return m, nil
}

func NewWorkerPool(lc fx.Lifecycle, cfg *Config, logger xlog.XLogger) (*ants.Pool, error) {
	pool, err := ants.NewPool(cfg.Workers,
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPanicHandler(func(p any) {
			logger.ErrorStack(infra.NewErrorStack("task panicked outside an experiment"), "worker pool panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return pool.ReleaseTimeout(poolReleaseTimeout)
		},
	})
	return pool, nil
}

func fxLogger(logger xlog.XLogger) fxevent.Logger {
	return xlog.NewFxXLogger(logger)
}

// NewApp wires the bench dependencies. The caller owns Start and Stop.
func NewApp(cfg *Config, out io.Writer, runner **Runner) *fx.App {
	return fx.New(
		fx.Supply(cfg, Output{Writer: out}),
		fx.Provide(
			NewLogger,
			NewMetrics,
			NewWorkerPool,
			NewRunner,
		),
		fx.WithLogger(fxLogger),
		fx.Populate(runner),
	)
}

// Run starts the bench application, runs the bench of kind and stops
// the application. Start and stop errors are combined.
func Run(ctx context.Context, cfg *Config, kind Kind, out io.Writer) (err error) {
	var runner *Runner
	app := NewApp(cfg, out, &runner)
	if err = app.Err(); err != nil {
		return err
	}
	if err = app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), appStopTimeout)
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
	}()
	return runner.Run(ctx, kind)
}
