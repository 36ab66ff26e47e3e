package xlog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xwavl/lib/infra"
)

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())

	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
	require.Equal(t, zapcore.InfoLevel, getLogLevelOrDefault(" info "))
	require.Equal(t, zapcore.WarnLevel, getLogLevelOrDefault("Warn"))
	require.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("ERROR"))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("trace"))
}

func TestParseLogEncoder(t *testing.T) {
	enc, ok := ParseLogEncoder("JSON")
	require.True(t, ok)
	require.Equal(t, JSON, enc)
	enc, ok = ParseLogEncoder("plaintext")
	require.True(t, ok)
	require.Equal(t, PlainText, enc)
	require.Equal(t, "plaintext", enc.String())
	enc, ok = ParseLogEncoder("yaml")
	require.False(t, ok)
	require.Equal(t, JSON, enc)
}

type testMemOutWriter struct {
	lock sync.Mutex
	data []byte
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testMemOutWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = make([]byte, 0, 4096)
}

// Lines returns the decoded JSON log lines.
func (w *testMemOutWriter) Lines(t *testing.T) []map[string]any {
	w.lock.Lock()
	defer w.lock.Unlock()
	lines := make([]map[string]any, 0, 8)
	for _, line := range strings.Split(strings.TrimSpace(string(w.data)), "\n") {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		lines = append(lines, m)
	}
	return lines
}

func newTestMemLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	setOutWriterByType(testMemAsOut, zapcore.AddSync(w))
	t.Cleanup(func() {
		writerLock.Lock()
		delete(writerMap, testMemAsOut)
		writerLock.Unlock()
	})
	opts = append([]XLoggerOption{
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
	}, opts...)
	return NewXLogger(opts...), w
}

func TestXLogger_LevelChanged(t *testing.T) {
	logger, w := newTestMemLogger(t)
	require.Equal(t, "debug", logger.Level())

	logger.Debug("debug msg", zap.Int("n", 1))
	logger.Info("info msg")
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	require.Equal(t, "warn", logger.Level())
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("warn msg")
	logger.Error(errors.New("boom"), "error msg")
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 4)
	require.Equal(t, "debug msg", lines[0]["msg"])
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, float64(1), lines[0]["n"])
	require.Equal(t, "info msg", lines[1]["msg"])
	require.Equal(t, "warn msg", lines[2]["msg"])
	require.Equal(t, "error msg", lines[3]["msg"])
	require.Equal(t, "boom", lines[3]["error"])
	require.Contains(t, lines[3]["callAt"], "xlog_test.go")
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, w := newTestMemLogger(t)

	err := infra.NewErrorStack("stack error")
	logger.ErrorStack(err, "error stack msg", zap.String("k", "v"))
	logger.ErrorStack(errors.New("plain"), "plain error msg")
	logger.ErrorStack(nil, "nil error msg")
	logger.ErrorStackf(infra.WrapErrorStackWithMessage(errors.New("inner"), "outer"), "formatted %d", 7)
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 4)
	require.Equal(t, "stack error", lines[0]["error"])
	require.Equal(t, "v", lines[0]["k"])
	frames, ok := lines[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)

	require.Equal(t, "plain", lines[1]["error"])
	_, ok = lines[1]["errorStack"]
	require.False(t, ok)

	_, ok = lines[2]["error"]
	require.False(t, ok)

	require.Equal(t, "formatted 7", lines[3]["msg"])
	require.Contains(t, lines[3]["error"], "outer")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := newTestMemLogger(t,
		WithXLoggerContextFieldExtract("traceId"),
		WithXLoggerContextFieldExtract("experiment", "exp"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)

	ctx := context.WithValue(context.Background(), ContextKey("traceId"), "abc")
	ctx = context.WithValue(ctx, ContextKey("secret"), "xyz")
	logger.InfoContext(ctx, "info ctx")
	logger.DebugContext(ctx, "debug ctx")
	logger.WarnContext(context.WithValue(ctx, ContextKey("experiment"), "wavl"), "warn ctx")
	logger.ErrorContext(ctx, errors.New("ctx error"), "error ctx")
	logger.ErrorStackContext(ctx, infra.NewErrorStack("ctx stack"), "error stack ctx")
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 5)
	for _, line := range lines {
		require.Equal(t, "abc", line["traceId"])
		_, ok := line["secret"]
		require.False(t, ok)
	}
	require.Equal(t, "nil", lines[0]["exp"])
	require.Equal(t, "wavl", lines[2]["exp"])
	require.Equal(t, "ctx error", lines[3]["error"])
	require.Equal(t, "ctx stack", lines[4]["error"])
}

func TestXLogger_Logf(t *testing.T) {
	logger, w := newTestMemLogger(t, WithXLoggerLevel(LogLevelInfo))
	logger.Logf(zapcore.DebugLevel, "dropped %s", "debug")
	logger.Logf(zapcore.InfoLevel, "kept %s %d", "info", 1)
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 1)
	require.Equal(t, "kept info 1", lines[0]["msg"])
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xwavl\"}"
}

func (b testBanner) PlainText() string {
	return `
__  ____      ___  __   ___
\ \/ /\ \    / / \ \ \ / / |
 >  <  \ \/\/ / _ \ \ V /| |__
/_/\_\  \_/\_/_/ \_\ \_/ |____|
`
}

func TestXLogger_Banner(t *testing.T) {
	logger, w := newTestMemLogger(t)
	logger.Banner(nil)
	logger.Banner(testBanner{})
	// Printed once per process.
	logger.Banner(testBanner{})
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 1)
	require.Equal(t, "{\"app\":\"xwavl\"}", lines[0]["banner"])
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.NotPanics(t, func() {
		l := NewXLogger(
			nil,
			WithXLoggerStrLevel("warn"),
			WithXLoggerWriter(StdErr),
			WithXLoggerConsoleCore(),
			WithXLoggerLevelEncoder(nil),
			WithXLoggerTimeEncoder(nil),
		)
		require.Equal(t, "warn", l.Level())
	})
}
