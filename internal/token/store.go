// Package token holds the per-request credential store. Each inbound request
// gets its own Store bound to that request's cookies and response writer, so
// nothing about a session leaks across requests.
package token

import (
	"net/http"
	"sync"

	"github.com/pickspot/vendor-portal/pkg/config"
)

// Store reads the access token from the request cookie and stages cookie
// writes on the response. The access cookie is client-readable; the refresh
// cookie is HTTP-only and owned by the upstream auth service, the portal only
// forwards or clears it.
type Store struct {
	mu     sync.Mutex
	cfg    config.CookieConfig
	w      http.ResponseWriter
	access string
	loaded bool
	req    *http.Request
}

// NewStore builds a store bound to a single request/response pair.
func NewStore(cfg config.CookieConfig, w http.ResponseWriter, r *http.Request) *Store {
	return &Store{cfg: cfg, w: w, req: r}
}

// Get returns the current access token, loading it from the request cookie on
// first use. Later Set calls take precedence over the cookie value.
func (s *Store) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.access
}

// Set replaces the in-memory token and stages the access cookie on the
// response so the browser picks up the new value.
func (s *Store) Set(tokenValue string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	s.access = tokenValue
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.cfg.AccessName,
		Value:    tokenValue,
		Path:     "/",
		Domain:   s.cfg.Domain,
		MaxAge:   int(s.cfg.TTL().Seconds()),
		Secure:   s.cfg.Secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear drops the in-memory token and expires both credential cookies.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.access = ""
	for _, name := range []string{s.cfg.AccessName, s.cfg.RefreshName} {
		http.SetCookie(s.w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.cfg.Domain,
			MaxAge:   -1,
			Secure:   s.cfg.Secure,
			HttpOnly: name == s.cfg.RefreshName,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// RefreshCookie returns the raw refresh cookie header value for forwarding to
// the upstream auth service, or an empty string when absent.
func (s *Store) RefreshCookie() string {
	if s.req == nil {
		return ""
	}
	c, err := s.req.Cookie(s.cfg.RefreshName)
	if err != nil {
		return ""
	}
	return c.Value
}

// HasRefreshCookie reports whether the request carried a refresh cookie.
func (s *Store) HasRefreshCookie() bool {
	return s.RefreshCookie() != ""
}

// ApplySetCookies copies upstream Set-Cookie headers onto the response. The
// upstream owns the refresh cookie, so its attributes pass through untouched.
func (s *Store) ApplySetCookies(cookies []string) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, raw := range cookies {
		if raw == "" {
			continue
		}
		s.w.Header().Add("Set-Cookie", raw)
	}
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.req == nil {
		return
	}
	if c, err := s.req.Cookie(s.cfg.AccessName); err == nil {
		s.access = c.Value
	}
}
