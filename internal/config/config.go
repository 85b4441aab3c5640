// Package config provides configuration loading for vocabadmin.
//
// Configuration is read from an optional YAML file and then overridden by
// environment variables. See LoadWithFile for precedence and the variable names.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the complete vocabadmin configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Backend       BackendConfig       `koanf:"backend"`
	Session       SessionConfig       `koanf:"session"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds admin console HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool `koanf:"secure_cookies"`
	// CSRF enables double-submit CSRF protection on form posts.
	CSRF *bool `koanf:"csrf"`
}

// CSRFEnabled reports whether CSRF protection is on. Defaults to true.
func (s ServerConfig) CSRFEnabled() bool {
	return s.CSRF == nil || *s.CSRF
}

// BackendConfig describes the vocabulary backend and its OAuth2 client.
// These are deploy-time constants; nothing is negotiated at runtime.
type BackendConfig struct {
	BaseURL      string `koanf:"base_url"`
	TokenURL     string `koanf:"token_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret Secret `koanf:"client_secret"`
	Scope        string `koanf:"scope"`
	// RequestTimeout bounds each backend call. Zero leaves the transport default.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// Scopes splits Scope on whitespace.
func (b BackendConfig) Scopes() []string {
	return strings.Fields(b.Scope)
}

// SessionConfig controls where the bearer token is persisted.
type SessionConfig struct {
	CookieName string `koanf:"cookie_name"`
	// TokenFile is used by vocabctl. Empty means ~/.config/vocabadmin/token.
	TokenFile string `koanf:"token_file"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"endpoint"`
	// Protocol is "grpc" or "http/protobuf".
	Protocol string `koanf:"protocol"`
	// Insecure sends OTLP in plaintext. Only allowed for loopback collectors.
	Insecure   bool    `koanf:"insecure"`
	SampleRate float64 `koanf:"sample_rate"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - Backend base or token URL is missing or not absolute
//   - Service name is empty (when telemetry is enabled)
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if err := validateAbsoluteURL("backend base_url", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("backend token_url", c.Backend.TokenURL); err != nil {
		return err
	}
	if c.Backend.RequestTimeout < 0 {
		return errors.New("backend request_timeout cannot be negative")
	}

	if c.Session.CookieName == "" {
		return errors.New("session cookie_name cannot be empty")
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

func validateAbsoluteURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: missing host", name)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	// The token endpoint lives on the API host unless configured otherwise.
	if cfg.Backend.TokenURL == "" {
		cfg.Backend.TokenURL = cfg.Backend.BaseURL + "/connect/token"
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "vocabadmin_token"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "vocabadmin"
	}
	if cfg.Observability.Endpoint == "" {
		cfg.Observability.Endpoint = "localhost:4317"
	}
	if cfg.Observability.Protocol == "" {
		cfg.Observability.Protocol = "grpc"
	}
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 1.0
	}
}
