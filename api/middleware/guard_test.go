package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/pkg/config"
)

type scriptedExchanger struct {
	calls int32
	token string
	err   error
}

func (s *scriptedExchanger) Exchange(ctx context.Context, refreshCookie string) (*session.ExchangeResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &session.ExchangeResult{
		AccessToken: s.token,
		SetCookies:  []string{"refresh_token=rotated; Path=/; HttpOnly"},
	}, nil
}

func cookieConfig() config.CookieConfig {
	return config.CookieConfig{AccessName: "access_token", RefreshName: "refresh_token", TTLDays: 7}
}

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{RefreshInterval: 13 * time.Minute, AccessTokenTTL: 15 * time.Minute}
}

func mintToken(t *testing.T, role string, suspended bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"vendorId":    "v-1",
		"firstName":   "Ada",
		"lastName":    "Mensah",
		"phoneNumber": "+233200000001",
		"role":        role,
		"suspended":   suspended,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(15 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func guardedHandler(t *testing.T, exchanger session.Exchanger) (http.Handler, *int32) {
	t.Helper()
	coord := session.NewCoordinator(exchanger, sessionConfig(), nil, nil)
	var served int32
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&served, 1)
		w.WriteHeader(http.StatusOK)
	})
	handler := WithSession(cookieConfig(), coord)(Guard("/", nil)(inner))
	return handler, &served
}

func TestGuardAllowsAccessTokenThrough(t *testing.T) {
	exchanger := &scriptedExchanger{token: "unused"}
	handler, served := guardedHandler(t, exchanger)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: mintToken(t, "vendor", false)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
	if atomic.LoadInt32(served) != 1 {
		t.Fatal("handler was not reached")
	}
	if got := atomic.LoadInt32(&exchanger.calls); got != 0 {
		t.Fatalf("no refresh expected, got %d calls", got)
	}
}

func TestGuardRefreshesWithOnlyRefreshCookie(t *testing.T) {
	exchanger := &scriptedExchanger{token: mintToken(t, "vendor", false)}
	handler, served := guardedHandler(t, exchanger)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected page to be served after refresh, got %d", rec.Code)
	}
	if atomic.LoadInt32(served) != 1 {
		t.Fatal("handler was not reached")
	}
	if got := atomic.LoadInt32(&exchanger.calls); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}

	var sawAccess bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" && c.Value == exchanger.token {
			sawAccess = true
		}
	}
	if !sawAccess {
		t.Fatal("response must carry the new access cookie")
	}
}

func TestGuardRedirectsWithoutCredentials(t *testing.T) {
	handler, served := guardedHandler(t, &scriptedExchanger{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("expected redirect to entry page, got %q", got)
	}
	if atomic.LoadInt32(served) != 0 {
		t.Fatal("handler must not run for denied requests")
	}
}

func TestGuardRedirectsWhenRefreshRejected(t *testing.T) {
	handler, served := guardedHandler(t, &scriptedExchanger{err: session.ErrSessionExpired})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "dead"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if atomic.LoadInt32(served) != 0 {
		t.Fatal("handler must not run after failed refresh")
	}

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	if !cleared["access_token"] || !cleared["refresh_token"] {
		t.Fatalf("expected credentials cleared, got %v", cleared)
	}
}

func TestGuardKeepsCookiesOnTransientRefreshFailure(t *testing.T) {
	handler, served := guardedHandler(t, &scriptedExchanger{err: errors.New("upstream unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "still-good"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if atomic.LoadInt32(served) != 0 {
		t.Fatal("handler must not run while the upstream is down")
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			t.Fatalf("transient failure must not destroy the %s cookie", c.Name)
		}
	}
}

func TestRedirectAuthenticatedKeepsSignedInUsersOffEntry(t *testing.T) {
	coord := session.NewCoordinator(&scriptedExchanger{}, sessionConfig(), nil, nil)
	handler := WithSession(cookieConfig(), coord)(RedirectAuthenticated("/dashboard")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: mintToken(t, "vendor", false)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to landing page, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, anon)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous visitor should see the entry page, got %d", rec.Code)
	}
}
