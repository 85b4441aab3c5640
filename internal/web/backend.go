package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/vocabadmin/internal/api"
	"github.com/fyrsmithlabs/vocabadmin/internal/auth"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

// Backend builds the per-request API client and auth service over a shared
// HTTP transport.
type Backend struct {
	BaseURL     string
	Auth        auth.Config
	HTTP        *http.Client
	Timeout     time.Duration
	AuthMetrics *auth.Metrics
}

func (b *Backend) validate() error {
	if b == nil {
		return errors.New("backend cannot be nil")
	}
	if b.BaseURL == "" {
		return errors.New("backend base URL cannot be empty")
	}
	if b.Auth.TokenURL == "" {
		return errors.New("backend token URL cannot be empty")
	}
	return nil
}

func (b *Backend) httpClient() *http.Client {
	if b.HTTP != nil {
		return b.HTTP
	}
	return http.DefaultClient
}

func (b *Backend) client(sess *session.Session, logger *logging.Logger) (*api.Client, error) {
	return api.New(b.BaseURL, sess,
		api.WithHTTPClient(b.httpClient()),
		api.WithTimeout(b.Timeout),
		api.WithLogger(logger),
	)
}

func (b *Backend) auth(sess *session.Session, logger *logging.Logger) (*auth.Service, error) {
	return auth.NewService(b.Auth, sess,
		auth.WithHTTPClient(b.httpClient()),
		auth.WithLogger(logger),
		auth.WithMetrics(b.AuthMetrics),
	)
}
