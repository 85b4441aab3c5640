package session

import (
	"encoding/base64"
	"net/http"
	"time"
)

// cookieMaxAge keeps the cookie across browser restarts. The token itself is
// never expired client-side.
const cookieMaxAge = 30 * 24 * time.Hour

// CookieStore keeps the token in a persistent, HttpOnly cookie scoped to the
// console's origin. It is bound to one request/response pair.
type CookieStore struct {
	name   string
	secure bool
	req    *http.Request
	w      http.ResponseWriter

	// written tracks a Set or Clear made during this request so Get reflects it.
	written bool
	token   string
}

// NewCookieStore binds a store to the request being served.
func NewCookieStore(name string, secure bool, w http.ResponseWriter, req *http.Request) *CookieStore {
	return &CookieStore{name: name, secure: secure, req: req, w: w}
}

func (c *CookieStore) Get() (string, bool) {
	if c.written {
		return c.token, c.token != ""
	}
	cookie, err := c.req.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (c *CookieStore) Set(token string) error {
	http.SetCookie(c.w, c.cookie(base64.RawURLEncoding.EncodeToString([]byte(token)), int(cookieMaxAge.Seconds())))
	c.written, c.token = true, token
	return nil
}

func (c *CookieStore) Clear() error {
	http.SetCookie(c.w, c.cookie("", -1))
	c.written, c.token = true, ""
	return nil
}

func (c *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
