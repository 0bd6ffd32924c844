package controllers

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/pkg/auth"
)

type fakeExchanger struct {
	calls int32
	token string
	err   error
}

func (f *fakeExchanger) Exchange(ctx context.Context, refreshCookie string) (*session.ExchangeResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	tokenValue := f.token
	if tokenValue == "" {
		tokenValue = "refreshed-token"
	}
	return &session.ExchangeResult{AccessToken: tokenValue}, nil
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

// withIdentity seeds the context with a decoded identity, like RequireIdentity does.
func withIdentity(t *testing.T, r *http.Request, role string) *http.Request {
	t.Helper()
	claims, err := auth.DecodeAccessToken(mintToken(t, role, false))
	if err != nil {
		t.Fatalf("decoding test token: %v", err)
	}
	identity := claims.Identity()
	return r.WithContext(middleware.WithIdentity(r.Context(), &identity))
}
