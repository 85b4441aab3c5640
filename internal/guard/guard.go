// Package guard decides whether a route may render for the current session.
//
// Guards are pure predicates over session state: no network call and no
// freshness check, so a token the backend no longer accepts still reads as
// present. The outcome is returned as a Result value that the routing layer
// inspects before rendering.
package guard

import "github.com/fyrsmithlabs/vocabadmin/internal/session"

// Landing paths used by the guards.
const (
	LoginPath = "/login"
	HomePath  = "/home"
)

// Result is the outcome of a guard: either Allow or a redirect.
type Result struct {
	redirect string
}

// Allow lets the route render.
func Allow() Result {
	return Result{}
}

// DenyRedirect refuses the route and sends the user to path.
func DenyRedirect(path string) Result {
	return Result{redirect: path}
}

// Allowed reports whether the route may render.
func (r Result) Allowed() bool {
	return r.redirect == ""
}

// Redirect returns the target path of a denied result.
func (r Result) Redirect() (string, bool) {
	return r.redirect, r.redirect != ""
}

func (r Result) String() string {
	if r.Allowed() {
		return "allow"
	}
	return "redirect " + r.redirect
}

// Check is a guard evaluated against a session.
type Check func(*session.Session) Result

// RequireAuthenticated allows sessions holding a token and sends everyone
// else to the login page.
func RequireAuthenticated(s *session.Session) Result {
	if s.Authenticated() {
		return Allow()
	}
	return DenyRedirect(LoginPath)
}

// RequireAnonymous allows sessions without a token and sends signed-in users
// to the landing page.
func RequireAnonymous(s *session.Session) Result {
	if !s.Authenticated() {
		return Allow()
	}
	return DenyRedirect(HomePath)
}
