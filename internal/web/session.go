package web

import (
	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

const (
	sessionKey = "session"
	csrfField  = "_csrf"
	csrfKey    = "csrf"
)

// sessionMiddleware initialises the request's Session from its cookie.
func (s *Server) sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := session.NewCookieStore(s.config.CookieName, s.config.SecureCookies, c.Response(), c.Request())
			c.Set(sessionKey, session.Init(store))
			return next(c)
		}
	}
}

// SessionFrom returns the request's Session. Requests that did not pass
// through the session middleware get nil, which reads as anonymous.
func SessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionKey).(*session.Session)
	return sess
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(csrfKey).(string)
	return token
}
