package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

func sessionWith(t *testing.T, token string) *session.Session {
	t.Helper()
	store := session.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.Set(token))
	}
	return session.Init(store)
}

func TestGuards(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		check     Check
		wantAllow bool
		wantPath  string
	}{
		{name: "authenticated route without token", check: RequireAuthenticated, wantPath: LoginPath},
		{name: "authenticated route with token", token: "tok", check: RequireAuthenticated, wantAllow: true},
		{name: "anonymous route without token", check: RequireAnonymous, wantAllow: true},
		{name: "anonymous route with token", token: "tok", check: RequireAnonymous, wantPath: HomePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.check(sessionWith(t, tt.token))
			assert.Equal(t, tt.wantAllow, res.Allowed())

			path, deny := res.Redirect()
			assert.Equal(t, !tt.wantAllow, deny)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestGuards_AreComplements(t *testing.T) {
	for _, token := range []string{"", "tok"} {
		s := sessionWith(t, token)
		assert.NotEqual(t, RequireAuthenticated(s).Allowed(), RequireAnonymous(s).Allowed(), "token=%q", token)
	}
}

func TestGuards_NilSessionIsAnonymous(t *testing.T) {
	assert.False(t, RequireAuthenticated(nil).Allowed())
	assert.True(t, RequireAnonymous(nil).Allowed())
}

func TestGuards_FollowSessionTransitions(t *testing.T) {
	s := sessionWith(t, "")
	assert.False(t, RequireAuthenticated(s).Allowed())

	require.NoError(t, s.Establish("tok"))
	assert.True(t, RequireAuthenticated(s).Allowed())
	assert.False(t, RequireAnonymous(s).Allowed())

	require.NoError(t, s.Teardown())
	assert.False(t, RequireAuthenticated(s).Allowed())
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "allow", Allow().String())
	assert.Equal(t, "redirect /login", DenyRedirect("/login").String())
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		check        Check
		wantCode     int
		wantLocation string
	}{
		{name: "protected without token redirects to login", check: RequireAuthenticated, wantCode: http.StatusSeeOther, wantLocation: LoginPath},
		{name: "protected with token renders", token: "tok", check: RequireAuthenticated, wantCode: http.StatusOK},
		{name: "public with token redirects home", token: "tok", check: RequireAnonymous, wantCode: http.StatusSeeOther, wantLocation: HomePath},
		{name: "public without token renders", check: RequireAnonymous, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/page", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			sess := sessionWith(t, tt.token)
			called := false
			handler := func(c echo.Context) error {
				called = true
				return c.String(http.StatusOK, "rendered")
			}

			h := Middleware(tt.check, func(echo.Context) *session.Session { return sess })(handler)
			require.NoError(t, h(c))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
			assert.Equal(t, tt.wantCode == http.StatusOK, called, "handler runs only when allowed")
		})
	}
}
