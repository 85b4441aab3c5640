package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/vocabadmin/internal/config"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "disabled skips checks", modify: func(c *Config) { c.Endpoint = "" }},
		{name: "enabled local insecure", modify: func(c *Config) { c.Enabled = true }},
		{
			name:    "missing endpoint",
			modify:  func(c *Config) { c.Enabled = true; c.Endpoint = "" },
			wantErr: "endpoint is required",
		},
		{
			name:    "missing service name",
			modify:  func(c *Config) { c.Enabled = true; c.ServiceName = "" },
			wantErr: "service_name is required",
		},
		{
			name:    "unknown protocol",
			modify:  func(c *Config) { c.Enabled = true; c.Protocol = "udp" },
			wantErr: "unsupported protocol",
		},
		{
			name:    "insecure remote",
			modify:  func(c *Config) { c.Enabled = true; c.Endpoint = "otel.example.com:4317" },
			wantErr: "loopback collector",
		},
		{
			name:   "tls remote",
			modify: func(c *Config) { c.Enabled = true; c.Insecure = false; c.Endpoint = "otel.example.com:4317" },
		},
		{
			name:    "sample rate above one",
			modify:  func(c *Config) { c.Enabled = true; c.SampleRate = 1.5 },
			wantErr: "sample rate",
		},
		{
			name:    "zero metrics interval",
			modify:  func(c *Config) { c.Enabled = true; c.MetricsInterval = 0 },
			wantErr: "metrics interval",
		},
		{
			name:    "zero shutdown timeout",
			modify:  func(c *Config) { c.Enabled = true; c.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.2:4318", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"http://localhost:4318", true},
		{"otel.example.com:4317", false},
		{"10.0.0.5:4317", false},
		{"https://collector.internal", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, isLocalEndpoint(tt.endpoint))
		})
	}
}

func TestFromObservability(t *testing.T) {
	cfg := FromObservability(config.ObservabilityConfig{
		EnableTelemetry: true,
		ServiceName:     "vocabadmin-staging",
		Endpoint:        "collector:4318",
		Protocol:        ProtocolHTTP,
		SampleRate:      0.25,
	}, "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "vocabadmin-staging", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.InDelta(t, 0.25, cfg.SampleRate, 1e-9)
	assert.False(t, cfg.Insecure)
	assert.Equal(t, 15*time.Second, cfg.MetricsInterval)

	defaults := FromObservability(config.ObservabilityConfig{}, "")
	assert.False(t, defaults.Enabled)
	assert.Equal(t, "vocabadmin", defaults.ServiceName)
	assert.Equal(t, "dev", defaults.ServiceVersion)
	assert.Equal(t, ProtocolGRPC, defaults.Protocol)
}

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.False(t, tel.IsEnabled())
	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))

	health := tel.Health()
	assert.True(t, health.Healthy)
	assert.False(t, health.Degraded)
	assert.Empty(t, health.Reasons)

	require.NoError(t, tel.ForceFlush(context.Background()))
	require.NoError(t, tel.Shutdown(context.Background()))
	assert.False(t, tel.Health().Healthy)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = ""

	tel, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestTelemetry_SetDegradedLogsReason(t *testing.T) {
	tl := logging.NewTestLogger()
	tel := &Telemetry{config: NewDefaultConfig(), logger: tl.Logger}
	tel.healthy.Store(true)

	tel.setDegraded(context.Background(), "meter provider", errors.New("dial refused"))

	health := tel.Health()
	assert.True(t, health.Healthy)
	assert.True(t, health.Degraded)
	assert.Equal(t, []string{"meter provider: dial refused"}, health.Reasons)
	tl.AssertLogged(t, zapcore.WarnLevel, "telemetry degraded")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.NotNil(t, tel.Tracer("test"))
	assert.NotNil(t, tel.Meter("test"))
	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Degraded)
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
}

func TestTestTelemetry_RecordsSpansAndMetrics(t *testing.T) {
	ctx := context.Background()
	tt := NewTestTelemetry()
	t.Cleanup(func() { _ = tt.Shutdown(ctx) })

	_, span := tt.Tracer("vocabadmin/test").Start(ctx, "categories.load")
	span.End()
	tt.AssertSpanExists(t, "categories.load")
	assert.Nil(t, tt.SpanByName("words.load"))

	counter, err := tt.Meter("vocabadmin/test").Int64Counter("vocabadmin.test.loads")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	names, err := tt.MetricNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "vocabadmin.test.loads")
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4318", stripScheme("https://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("http://collector:4318"))
	assert.Equal(t, "collector:4317", stripScheme("collector:4317"))
}
