package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/vocabadmin/internal/guard"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

// tokenEndpoint stubs the backend's password grant. It accepts admin/hunter2
// and rejects everything else with 400 invalid_grant.
func tokenEndpoint(t *testing.T, respond func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"), "credentials travel in the body")
		assert.NoError(t, r.ParseForm())

		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "console", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "api offline_access", r.PostForm.Get("scope"))

		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "hunter2" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		respond(w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func grantToken(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"access_token":"tok-abc","token_type":"Bearer","expires_in":3600}`))
}

func newTestService(t *testing.T, srv *httptest.Server, store session.TokenStore) (*Service, *session.Session, *logging.TestLogger) {
	t.Helper()
	sess := session.Init(store)
	tl := logging.NewTestLogger()
	svc, err := NewService(Config{
		TokenURL:     srv.URL + "/connect/token",
		ClientID:     "console",
		ClientSecret: "s3cret",
		Scopes:       []string{"api", "offline_access"},
	}, sess, WithHTTPClient(srv.Client()), WithLogger(tl.Logger))
	require.NoError(t, err)
	return svc, sess, tl
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{}, session.Init(session.NewMemoryStore()))
	assert.Error(t, err)

	_, err = NewService(Config{TokenURL: "http://localhost/connect/token"}, nil)
	assert.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	srv := tokenEndpoint(t, grantToken)
	store := session.NewMemoryStore()
	svc, sess, tl := newTestService(t, srv, store)

	require.NoError(t, svc.Login(context.Background(), "admin", "hunter2"))

	token, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", token)
	assert.True(t, guard.RequireAuthenticated(sess).Allowed(), "guarded route is reachable after login")
	assert.False(t, guard.RequireAnonymous(sess).Allowed())

	tl.AssertLogged(t, zapcore.InfoLevel, "login succeeded")
	tl.AssertNoSecrets(t, "hunter2", "s3cret", "tok-abc")
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		respond  func(w http.ResponseWriter)
		wantMsg  string
	}{
		{name: "wrong password", username: "admin", password: "nope", respond: grantToken, wantMsg: MsgLoginFailed},
		{
			name: "missing access_token", username: "admin", password: "hunter2",
			respond: func(w http.ResponseWriter) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
			},
			wantMsg: MsgLoginFailed,
		},
		{
			name: "server error", username: "admin", password: "hunter2",
			respond: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantMsg: MsgLoginFailed,
		},
		{name: "empty username", username: "  ", password: "hunter2", respond: grantToken, wantMsg: MsgMissingFields},
		{name: "empty password", username: "admin", password: "", respond: grantToken, wantMsg: MsgMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tokenEndpoint(t, tt.respond)
			store := session.NewMemoryStore()
			svc, sess, tl := newTestService(t, srv, store)

			err := svc.Login(context.Background(), tt.username, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuth)

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tt.wantMsg, authErr.Message)

			_, ok := store.Get()
			assert.False(t, ok, "store stays empty")
			assert.False(t, sess.Authenticated())
			assert.False(t, guard.RequireAuthenticated(sess).Allowed())
			tl.AssertNoSecrets(t, tt.password, "s3cret")
		})
	}
}

func TestLogin_MissingFieldsSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc, _, _ := newTestService(t, srv, session.NewMemoryStore())
	err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrAuth)
	assert.False(t, called)
}

type brokenStore struct{ session.MemoryStore }

func (b *brokenStore) Set(string) error { return errors.New("read-only filesystem") }

func TestLogin_StoreFailure(t *testing.T) {
	srv := tokenEndpoint(t, grantToken)
	svc, sess, tl := newTestService(t, srv, &brokenStore{})

	err := svc.Login(context.Background(), "admin", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.False(t, sess.Authenticated())
	tl.AssertLogged(t, zapcore.ErrorLevel, "failed to establish session")
}

func TestLogout(t *testing.T) {
	srv := tokenEndpoint(t, grantToken)
	store := session.NewMemoryStore()
	svc, sess, _ := newTestService(t, srv, store)

	require.NoError(t, svc.Login(context.Background(), "admin", "hunter2"))
	require.NoError(t, svc.Logout(context.Background()))

	assert.False(t, sess.Authenticated())
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Equal(t, guard.DenyRedirect(guard.LoginPath), guard.RequireAuthenticated(sess))
}

func TestMetrics_CountOutcomes(t *testing.T) {
	m := NewMetrics()
	assert.Same(t, m, NewMetrics(), "registered once")

	before := counterValue(t, m, outcomeSuccess)

	srv := tokenEndpoint(t, grantToken)
	svc, _, _ := newTestService(t, srv, session.NewMemoryStore())
	svc.metrics = m
	require.NoError(t, svc.Login(context.Background(), "admin", "hunter2"))

	assert.Equal(t, before+1, counterValue(t, m, outcomeSuccess))
}

func counterValue(t *testing.T, m *Metrics, outcome string) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, m.LoginsTotal.WithLabelValues(outcome).Write(&metric))
	return metric.GetCounter().GetValue()
}
