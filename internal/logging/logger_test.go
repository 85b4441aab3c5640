package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.NotNil(t, logger.zap)
	assert.Equal(t, cfg, logger.config)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be")
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithRoute(ctx, "/categories")

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
	}{
		{"trace", func() { logger.Trace(ctx, "msg") }, TraceLevel},
		{"debug", func() { logger.Debug(ctx, "msg") }, zapcore.DebugLevel},
		{"info", func() { logger.Info(ctx, "msg") }, zapcore.InfoLevel},
		{"warn", func() { logger.Warn(ctx, "msg") }, zapcore.WarnLevel},
		{"error", func() { logger.Error(ctx, "msg") }, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed.TakeAll()
			tt.logFunc()

			logs := observed.TakeAll()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			fields := logs[0].ContextMap()
			assert.Equal(t, "req-42", fields["request.id"])
			assert.Equal(t, "/categories", fields["route"])
		})
	}
}

func TestLogger_WithAndNamed(t *testing.T) {
	tl := NewTestLogger()

	child := tl.Named("api").With(zap.String("component", "client"))
	child.Info(context.Background(), "hello")

	entries := tl.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "api", entries[0].LoggerName)
	assert.Equal(t, "client", entries[0].ContextMap()["component"])
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()), "missing logger falls back to nop")

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Info(ctx, "via context")
	tl.AssertLogged(t, zapcore.InfoLevel, "via context")
}

func TestLevelFromString(t *testing.T) {
	lvl, err := LevelFromString("trace")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, lvl)

	lvl, err = LevelFromString("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	lvl, err = LevelFromString(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = LevelFromString("loud")
	assert.Error(t, err)
}

func TestEncoder_TraceLevelName(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = TraceLevel
	cfg.Sampling.Enabled = false
	var buf bytes.Buffer
	core, err := newDualCore(cfg, zapcore.AddSync(&buf), nil)
	require.NoError(t, err)

	(&Logger{zap: zap.New(core), config: cfg}).Trace(context.Background(), "response body")
	assert.Contains(t, buf.String(), `"level":"trace"`)
}

func TestSampling_ErrorsAlwaysPass(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{Enabled: true, Tick: time.Minute, Initial: 1, Thereafter: 1000})
	logger := &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		logger.Info(ctx, "categories loaded")
		logger.Error(ctx, "backend request failed")
	}

	assert.Equal(t, 1, observed.FilterMessage("categories loaded").Len())
	assert.Equal(t, 5, observed.FilterMessage("backend request failed").Len())
}

func newBufferedLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Sampling.Enabled = false
	var buf bytes.Buffer
	core, err := newDualCore(cfg, zapcore.AddSync(&buf), nil)
	require.NoError(t, err)
	return &Logger{zap: zap.New(core), config: cfg}, &buf
}

func TestRedaction_CallSiteFields(t *testing.T) {
	logger, buf := newBufferedLogger(t)

	logger.Info(context.Background(), "login",
		zap.String("access_token", "eyJhbGciOi.payload.sig"),
		zap.String("header", "Bearer eyJhbGciOi.payload.sig"),
		zap.Error(errors.New("upstream said Bearer abc.def rejected")),
		zap.String("username", "admin"),
	)

	out := buf.String()
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.NotContains(t, out, "abc.def")
	assert.Contains(t, out, `"access_token":"[REDACTED]"`)
	assert.Contains(t, out, `"header":"[REDACTED:pattern]"`)
	assert.Contains(t, out, `"username":"admin"`)
}

func TestRedaction_WithFieldsAndMessage(t *testing.T) {
	logger, buf := newBufferedLogger(t)

	logger.With(zap.String("password", "hunter2")).
		Warn(context.Background(), "retrying with Bearer xyz")

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "xyz")
	assert.Contains(t, out, "[REDACTED]")
}

func TestRedactedString(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "secret", RedactedString("client_secret", "abcdef"))
	tl.AssertField(t, "secret", "client_secret", "[REDACTED:6]")
}

func TestTestLogger_AssertNoSecrets(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "request sent", zap.String("path", "/v1/admin/categories"))
	tl.AssertNoSecrets(t, "tok-123")

	leaky := NewTestLogger()
	leaky.Info(context.Background(), "oops", zap.String("detail", "tok-123"))
	rec := &recordingTB{}
	leaky.AssertNoSecrets(rec, "tok-123")
	assert.True(t, rec.failed)
}

type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(string, ...interface{}) { r.failed = true }
