package session

import (
	"context"
	"errors"

	"github.com/pickspot/vendor-portal/internal/token"
)

// RequestCredentials adapts a per-request token store and the shared
// coordinator into the credential surface the upstream client consumes.
// Refresh results are written back to the request's cookies as a side effect.
type RequestCredentials struct {
	Store *token.Store
	Coord *Coordinator
}

// Token returns the current access token, which may be empty.
func (c *RequestCredentials) Token() string {
	if c == nil || c.Store == nil {
		return ""
	}
	return c.Store.Get()
}

// Refresh exchanges the request's refresh cookie for a new access token and
// stages the resulting cookies on the response. A rejected refresh credential
// is unrecoverable, so both cookies are cleared on the spot; transient
// failures leave them alone.
func (c *RequestCredentials) Refresh(ctx context.Context) (string, error) {
	if c == nil || c.Store == nil || c.Coord == nil {
		return "", ErrNoRefreshCredential
	}
	cookie := c.Store.RefreshCookie()
	if cookie == "" {
		return "", ErrNoRefreshCredential
	}
	result, err := c.Coord.Refresh(ctx, cookie)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			c.Store.Clear()
		}
		return "", err
	}
	c.Store.Set(result.AccessToken)
	c.Store.ApplySetCookies(result.SetCookies)
	return result.AccessToken, nil
}
