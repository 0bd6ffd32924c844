package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/pkg/config"
)

// RefreshClient exchanges a refresh cookie for a new access token. It
// implements the exchanger the session coordinator drives.
type RefreshClient struct {
	client      *Client
	refreshName string
}

// NewRefreshClient builds a refresh exchanger on top of the upstream client.
func NewRefreshClient(client *Client, cookies config.CookieConfig) *RefreshClient {
	return &RefreshClient{client: client, refreshName: cookies.RefreshName}
}

// Exchange posts the refresh cookie to the upstream auth service. A 401 or
// 403 means the session is gone for good; anything else failing is transient.
func (r *RefreshClient) Exchange(ctx context.Context, refreshCookie string) (*session.ExchangeResult, error) {
	result := r.client.Call(ctx, http.MethodPost, "/auth/vendors/refresh", nil, nil,
		WithCookie(r.refreshName, refreshCookie))

	switch {
	case result.Status == http.StatusUnauthorized || result.Status == http.StatusForbidden:
		return nil, session.ErrSessionExpired
	case !result.OK:
		return nil, fmt.Errorf("refresh exchange failed: status %d: %s", result.Status, result.Message)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(result.Data, &payload); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing access token")
	}

	return &session.ExchangeResult{
		AccessToken: payload.AccessToken,
		SetCookies:  result.Cookies,
	}, nil
}
