// Vocabadmin serves the vocabulary admin console.
//
// Configuration comes from ~/.config/vocabadmin/config.yaml (optional) and
// environment variables. See internal/config for the variable names.
//
// Usage:
//
//	# Start the console against a local backend
//	vocabadmin serve
//
//	# Point at another backend
//	BACKEND_BASE_URL=https://api.example.com BACKEND_CLIENT_SECRET=... vocabadmin serve
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/auth"
	"github.com/fyrsmithlabs/vocabadmin/internal/config"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/telemetry"
	"github.com/fyrsmithlabs/vocabadmin/internal/web"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vocabadmin",
		Short:        "Vocabulary admin console",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/vocabadmin/config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the admin console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd)
		},
	})
	return root
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "vocabadmin by Fyrsmith Labs\n")
	fmt.Fprintf(out, "Version:    %s\n", version)
	fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(out, "Build Date: %s\n", buildDate)
}

// run wires the console and blocks until ctx is cancelled:
//  1. Loads and validates configuration
//  2. Initializes logger and telemetry
//  3. Builds the backend client factory and HTTP server
//  4. Serves until a signal arrives, then shuts down within the configured timeout
func run(ctx context.Context) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability, version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	backend := &web.Backend{
		BaseURL: cfg.Backend.BaseURL,
		Auth: auth.Config{
			TokenURL:     cfg.Backend.TokenURL,
			ClientID:     cfg.Backend.ClientID,
			ClientSecret: cfg.Backend.ClientSecret.Value(),
			Scopes:       cfg.Backend.Scopes(),
		},
		HTTP:        &http.Client{},
		Timeout:     cfg.Backend.RequestTimeout,
		AuthMetrics: auth.NewMetrics(),
	}

	srv, err := web.NewServer(backend, logger, &web.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		CookieName:    cfg.Session.CookieName,
		SecureCookies: cfg.Server.SecureCookies,
		CSRF:          cfg.Server.CSRFEnabled(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info(ctx, "starting vocabadmin",
		zap.String("version", version),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("telemetry", tel.IsEnabled()),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if serveErr != nil {
		errs = append(errs, serveErr)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	logger.Info(shutdownCtx, "vocabadmin stopped")
	return errors.Join(errs...)
}

// newLogger builds the process logger from the logging config section.
func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	lc := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = cfg.Format
	return logging.NewLogger(lc, nil)
}
