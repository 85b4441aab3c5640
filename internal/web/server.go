// Package web is the server-rendered admin console.
//
// Every route maps to one screen. Guards run before the handler, the token
// lives in an HttpOnly cookie, and each request gets its own Session, API
// client and list view, so a fetch never outlives the request that started it.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/guard"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
)

// Config holds console server configuration.
type Config struct {
	Host          string
	Port          int
	CookieName    string
	SecureCookies bool
	CSRF          bool
}

// Server serves the admin console.
type Server struct {
	echo    *echo.Echo
	backend *Backend
	logger  *logging.Logger
	config  *Config
	csrf    echo.MiddlewareFunc
}

// NewServer creates the console server.
func NewServer(backend *Backend, logger *logging.Logger, cfg *Config) (*Server, error) {
	if err := backend.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:       "localhost",
			Port:       3000,
			CookieName: "vocabadmin_token",
			CSRF:       true,
		}
	}
	if cfg.CookieName == "" {
		return nil, fmt.Errorf("cookie name cannot be empty")
	}

	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r

	s := &Server{
		echo:    e,
		backend: backend,
		logger:  logger,
		config:  cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logging.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(s.requestLogger())
	e.Use(NewHTTPMetrics(logger).Middleware())

	if cfg.CSRF {
		s.csrf = middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:" + csrfField,
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.SecureCookies,
			CookieSameSite: http.SameSiteLaxMode,
		})
	}
	s.registerRoutes()

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	public := s.pageMiddleware(guard.Middleware(guard.RequireAnonymous, SessionFrom))
	s.echo.GET("/", s.handleLoginPage, public...)
	s.echo.GET(guard.LoginPath, s.handleLoginPage, public...)
	s.echo.POST(guard.LoginPath, s.handleLogin, public...)

	protected := s.pageMiddleware(guard.Middleware(guard.RequireAuthenticated, SessionFrom))
	s.echo.GET(guard.HomePath, s.handleHome, protected...)
	s.echo.GET("/categories", s.handleCategories, protected...)
	s.echo.GET("/categories/:categoryId/words", s.handleWords, protected...)
	s.echo.GET("/invite", s.handleInvitePage, protected...)
	s.echo.POST("/invite", s.handleInvite, protected...)
	s.echo.POST("/logout", s.handleLogout, protected...)
}

// pageMiddleware returns the chain for a screen: CSRF protection on forms,
// the cookie-backed session, then the route's guard.
func (s *Server) pageMiddleware(routeGuard echo.MiddlewareFunc) []echo.MiddlewareFunc {
	var mw []echo.MiddlewareFunc
	if s.config.CSRF {
		mw = append(mw, s.csrf)
	}
	return append(mw, s.sessionMiddleware(), routeGuard)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the console server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting console", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down console")
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := logging.WithRoute(c.Request().Context(), c.Path())
			c.SetRequest(c.Request().WithContext(logging.WithLogger(ctx, s.logger)))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			s.logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
