package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/pkg/config"
)

type staticCredentials struct {
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int32
}

func (s *staticCredentials) Token() string { return s.token }

func (s *staticCredentials) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&s.refreshCalls, 1)
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return s.refreshed, nil
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, nil, nil)
}

func TestCallSendsBearerAndReturnsRawData(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"vendors":[{"id":"v-1"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	creds := &staticCredentials{token: "tok-1"}
	result := client.Call(context.Background(), http.MethodGet, "/user/all-vendors", nil, creds)

	if !result.OK || result.Status != http.StatusOK {
		t.Fatalf("unexpected result %+v", result)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if string(result.Data) != `{"vendors":[{"id":"v-1"}]}` {
		t.Fatalf("payload was rewritten: %s", result.Data)
	}
}

func TestCallRefreshesOnceOn401(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			if got := r.Header.Get("Authorization"); got != "Bearer stale" {
				t.Errorf("first call auth %q", got)
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("retry auth %q", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	creds := &staticCredentials{token: "stale", refreshed: "fresh"}
	result := client.Call(context.Background(), http.MethodGet, "/user/all-redeemed-users", nil, creds)

	if !result.OK {
		t.Fatalf("expected retry to recover, got %+v", result)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected exactly two upstream calls, got %d", got)
	}
	if got := atomic.LoadInt32(&creds.refreshCalls); got != 1 {
		t.Fatalf("expected a single refresh, got %d", got)
	}
}

func TestCallSurfaces401WhenRefreshFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"nope"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	creds := &staticCredentials{token: "stale", refreshErr: session.ErrSessionExpired}
	result := client.Call(context.Background(), http.MethodGet, "/user/all-vendors", nil, creds)

	if result.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 to surface, got %d", result.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("failed refresh must not retry, got %d calls", got)
	}
}

func TestCallNetworkErrorYieldsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	result := client.Call(context.Background(), http.MethodGet, "/user/all-vendors", nil, nil)

	if result.Status != 0 || result.OK {
		t.Fatalf("expected status 0 network failure, got %+v", result)
	}
	if result.Message == "" {
		t.Fatal("expected a failure message")
	}
}

func TestCallExtractsErrorMessagePriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"err wins", `{"err":"bad phone","message":"other"}`, "bad phone"},
		{"message next", `{"message":"wrong password"}`, "wrong password"},
		{"error next", `{"error":"suspended"}`, "suspended"},
		{"status text fallback", `not json`, "Bad Request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			result := newTestClient(srv.URL).Call(context.Background(), http.MethodPost, "/auth/vendors/login", nil, nil)
			if result.Message != tc.want {
				t.Fatalf("expected message %q, got %q", tc.want, result.Message)
			}
		})
	}
}

func TestEmptyListOnNotFound(t *testing.T) {
	notFound := Result{Status: http.StatusNotFound, Message: "no redemptions"}
	converted := notFound.EmptyListOnNotFound()
	if !converted.OK || converted.Status != http.StatusOK {
		t.Fatalf("expected empty success, got %+v", converted)
	}
	if string(converted.Data) != "[]" {
		t.Fatalf("expected empty list, got %s", converted.Data)
	}

	ok := Result{Status: http.StatusOK, OK: true, Data: json.RawMessage(`[1]`)}
	if got := ok.EmptyListOnNotFound(); string(got.Data) != "[1]" {
		t.Fatalf("successful result must pass through, got %+v", got)
	}
}

func TestRefreshClientExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/vendors/refresh" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		cookie, err := r.Cookie("refresh_token")
		if err != nil || cookie.Value != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"missing refresh"}`))
			return
		}
		w.Header().Add("Set-Cookie", "refresh_token=rotated; Path=/; HttpOnly")
		w.Write([]byte(`{"message":"ok","accessToken":"fresh-token"}`))
	}))
	defer srv.Close()

	refresher := NewRefreshClient(newTestClient(srv.URL), config.CookieConfig{RefreshName: "refresh_token"})

	result, err := refresher.Exchange(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if result.AccessToken != "fresh-token" {
		t.Fatalf("unexpected token %q", result.AccessToken)
	}
	if len(result.SetCookies) != 1 || result.SetCookies[0] != "refresh_token=rotated; Path=/; HttpOnly" {
		t.Fatalf("expected rotated cookie to pass through, got %v", result.SetCookies)
	}
}

func TestRefreshClientExchangeExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid refresh token"}`))
	}))
	defer srv.Close()

	refresher := NewRefreshClient(newTestClient(srv.URL), config.CookieConfig{RefreshName: "refresh_token"})
	if _, err := refresher.Exchange(context.Background(), "dead"); !errors.Is(err, session.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestRefreshClientExchangeTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"upstream down"}`))
	}))
	defer srv.Close()

	refresher := NewRefreshClient(newTestClient(srv.URL), config.CookieConfig{RefreshName: "refresh_token"})
	_, err := refresher.Exchange(context.Background(), "refresh-1")
	if err == nil || errors.Is(err, session.ErrSessionExpired) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
