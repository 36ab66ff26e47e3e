package xlog

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func newTestFxLogger(t *testing.T) (XLogger, *FxXLogger, *testMemOutWriter) {
	parentLogger, w := newTestMemLogger(t,
		WithXLoggerConsoleCore(),
		WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	)
	return parentLogger, NewFxXLogger(parentLogger), w
}

// The events of a bench app lifetime, from the graph build to the stop.
func TestFxXLogger_AppLifetime(t *testing.T) {
	parentLogger, logger, w := newTestFxLogger(t)

	testcases := []struct {
		event fxevent.Event
		msg   string
		lvl   string
		check func(t *testing.T, line map[string]any)
	}{
		{
			event: &fxevent.Supplied{TypeName: "*bench.Config"},
			msg:   "supplied",
			lvl:   "DEBUG",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "*bench.Config", line["type"])
			},
		},
		{
			event: &fxevent.Provided{
				ConstructorName: "bench.NewLogger()",
				OutputTypeNames: []string{"xlog.XLogger"},
			},
			msg: "provided",
			lvl: "DEBUG",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "xlog.XLogger", line["type"])
				require.Equal(t, "bench.NewLogger()", line["constructor"])
			},
		},
		{
			event: &fxevent.Provided{
				ConstructorName: "bench.NewWorkerPool()",
				Err:             errors.New("invalid pool size"),
			},
			msg: "provide failed",
			lvl: "ERROR",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "invalid pool size", line["error"])
			},
		},
		{
			event: &fxevent.LoggerInitialized{ConstructorName: "bench.fxLogger()"},
			msg:   "custom logger initialized",
			lvl:   "DEBUG",
		},
		{
			event: &fxevent.Run{Name: "bench.NewRunner()", Kind: "provide"},
			msg:   "run",
			lvl:   "DEBUG",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "provide", line["kind"])
			},
		},
		{
			event: &fxevent.Invoking{FunctionName: "fx.Populate"},
			msg:   "invoking",
			lvl:   "DEBUG",
		},
		{
			event: &fxevent.OnStartExecuting{
				FunctionName: "bench.NewMetrics.func1()",
				CallerName:   "bench.NewMetrics",
			},
			msg: "hook OnStart executing",
			lvl: "DEBUG",
		},
		{
			event: &fxevent.OnStartExecuted{
				FunctionName: "bench.NewMetrics.func1()",
				CallerName:   "bench.NewMetrics",
				Runtime:      time.Millisecond,
			},
			msg: "hook OnStart executed",
			lvl: "DEBUG",
		},
		{
			event: &fxevent.Started{},
			msg:   "started",
			lvl:   "DEBUG",
		},
		{
			event: &fxevent.OnStopExecuting{
				FunctionName: "bench.NewWorkerPool.func2()",
				CallerName:   "bench.NewWorkerPool",
			},
			msg: "hook OnStop executing",
			lvl: "INFO",
		},
		{
			event: &fxevent.OnStopExecuted{
				FunctionName: "bench.NewWorkerPool.func2()",
				CallerName:   "bench.NewWorkerPool",
				Runtime:      5 * time.Second,
				Err:          errors.New("release timeout"),
			},
			msg: "hook OnStop failed",
			lvl: "ERROR",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "release timeout", line["error"])
				require.Equal(t, "bench.NewWorkerPool", line["caller"])
			},
		},
		{
			event: &fxevent.RollingBack{StartErr: errors.New("listen tcp: address in use")},
			msg:   "start failed, rolling back",
			lvl:   "WARN",
			check: func(t *testing.T, line map[string]any) {
				require.Equal(t, "listen tcp: address in use", line["error"])
			},
		},
	}
	for _, tc := range testcases {
		logger.LogEvent(tc.event)
	}
	// Successful invokes and stops log nothing.
	logger.LogEvent(&fxevent.Invoked{FunctionName: "fx.Populate"})
	logger.LogEvent(&fxevent.Stopped{})
	_ = parentLogger.Sync()

	lines := w.Lines(t)
	require.Len(t, lines, len(testcases))
	for i, tc := range testcases {
		require.Equal(t, tc.msg, lines[i]["msg"], "line %d", i)
		require.Equal(t, tc.lvl, lines[i]["lvl"], "line %d", i)
		require.Equal(t, "Fx", lines[i]["component"], "line %d", i)
		if tc.check != nil {
			tc.check(t, lines[i])
		}
	}
}

func TestFxXLogger_ParentLogLevelChanged(t *testing.T) {
	var logger *FxXLogger
	logger.LogEvent(&fxevent.Started{})
	NewFxXLogger(nil).LogEvent(&fxevent.Started{})

	parentLogger, logger, w := newTestFxLogger(t)
	parentLogger.IncreaseLogLevel(zapcore.InfoLevel)
	logger.LogEvent(&fxevent.LoggerInitialized{ConstructorName: "bench.fxLogger()"})
	logger.LogEvent(&fxevent.Stopping{Signal: os.Interrupt})
	parentLogger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.LogEvent(&fxevent.LoggerInitialized{ConstructorName: "bench.fxLogger()"})
	_ = parentLogger.Sync()

	lines := w.Lines(t)
	require.Len(t, lines, 2)
	require.Equal(t, "stopping", lines[0]["msg"])
	require.Equal(t, "INFO", lines[0]["lvl"])
	require.Equal(t, "interrupt", lines[0]["signal"])
	require.Equal(t, "custom logger initialized", lines[1]["msg"])
	require.Equal(t, "bench.fxLogger()", lines[1]["constructor"])
}
