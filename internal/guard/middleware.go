package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

// SessionFunc returns the session for the request being served.
type SessionFunc func(c echo.Context) *session.Session

// Middleware evaluates check before the handler runs and turns a denial into
// a 303 See Other redirect.
//
// Example usage:
//
//	protected := e.Group("", guard.Middleware(guard.RequireAuthenticated, web.SessionFrom))
//	protected.GET("/home", h.home)
func Middleware(check Check, sessionFrom SessionFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := check(sessionFrom(c))
			if path, deny := res.Redirect(); deny {
				return c.Redirect(http.StatusSeeOther, path)
			}
			return next(c)
		}
	}
}
