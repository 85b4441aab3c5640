// Package auth exchanges console credentials for a bearer token using the
// backend's OAuth2 password grant, and owns the session's login and logout
// transitions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

// User-facing login messages. Backend detail is never shown.
const (
	MsgMissingFields = "Please fill in all fields"
	MsgLoginFailed   = "Login failed. Please check your credentials."
)

// ErrAuth matches every *AuthError via errors.Is.
var ErrAuth = errors.New("authentication failed")

// AuthError is returned by Login. Message is safe to show to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAuth) true for every AuthError.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// Config holds the OAuth2 client credentials for the token endpoint.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Service performs login and logout against one session.
type Service struct {
	oauth   *oauth2.Config
	session *session.Session
	http    *http.Client
	logger  *logging.Logger
	metrics *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the login outcome counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService returns a Service that establishes tokens on sess.
func NewService(cfg Config, sess *session.Session, opts ...Option) (*Service, error) {
	if cfg.TokenURL == "" {
		return nil, errors.New("token URL cannot be empty")
	}
	if sess == nil {
		return nil, errors.New("session cannot be nil")
	}

	s := &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		session: sess,
		http:    http.DefaultClient,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login exchanges username and password for a bearer token and establishes it
// on the session. On any failure the session is left untouched and the
// returned error is an *AuthError.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		s.metrics.observe(outcomeInvalid)
		return &AuthError{Message: MsgMissingFields}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)
	tok, err := s.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		s.metrics.observe(outcomeRejected)
		s.logger.Warn(ctx, "login rejected", zap.String("username", username), zap.Error(err))
		return &AuthError{Message: MsgLoginFailed, Err: err}
	}
	if tok.AccessToken == "" {
		s.metrics.observe(outcomeRejected)
		return &AuthError{Message: MsgLoginFailed, Err: errors.New("token response missing access_token")}
	}

	if err := s.session.Establish(tok.AccessToken); err != nil {
		s.metrics.observe(outcomeError)
		s.logger.Error(ctx, "failed to establish session", zap.Error(err))
		return &AuthError{Message: MsgLoginFailed, Err: err}
	}

	s.metrics.observe(outcomeSuccess)
	s.logger.Info(ctx, "login succeeded", zap.String("username", username))
	return nil
}

// Logout forgets the session's token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Teardown(); err != nil {
		s.logger.Error(ctx, "failed to clear session", zap.Error(err))
		return err
	}
	s.logger.Info(ctx, "logged out")
	return nil
}
