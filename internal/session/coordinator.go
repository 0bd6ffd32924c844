// Package session coordinates access-token refreshes against the upstream
// auth service. One Coordinator is shared by the whole server; concurrent
// refreshes for the same browser session collapse into a single upstream
// exchange whose result fans out to every waiter.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/logger"
	"github.com/pickspot/vendor-portal/pkg/metrics"
)

// ErrSessionExpired signals that the upstream rejected the refresh credential
// and the session cannot be recovered without a fresh login.
var ErrSessionExpired = errors.New("session expired")

// ErrNoRefreshCredential signals a refresh attempt without a refresh cookie.
var ErrNoRefreshCredential = errors.New("no refresh credential")

// ExchangeResult carries the outcome of one upstream refresh exchange.
type ExchangeResult struct {
	AccessToken string
	// SetCookies holds raw upstream Set-Cookie headers, most importantly the
	// rotated refresh cookie, to be forwarded to the browser verbatim.
	SetCookies []string
}

// Exchanger swaps a refresh credential for a new access token.
// Implementations return ErrSessionExpired when the credential is rejected;
// any other error is treated as transient.
type Exchanger interface {
	Exchange(ctx context.Context, refreshCookie string) (*ExchangeResult, error)
}

type sessionState struct {
	refreshCookie string
	result        ExchangeResult
	refreshedAt   time.Time
	lastSeen      time.Time
}

// Coordinator deduplicates refresh exchanges and keeps a short-lived cache of
// the freshest token per session so scheduled refreshes reach the browser on
// its next request.
type Coordinator struct {
	exchanger Exchanger
	logg      *logger.Logger
	metrics   *metrics.SessionMetrics
	interval  time.Duration
	maxIdle   time.Duration
	now       func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewCoordinator builds a coordinator around the given exchanger.
func NewCoordinator(exchanger Exchanger, cfg config.SessionConfig, logg *logger.Logger, m *metrics.SessionMetrics) *Coordinator {
	return &Coordinator{
		exchanger: exchanger,
		logg:      logg,
		metrics:   m,
		interval:  cfg.RefreshInterval,
		maxIdle:   cfg.AccessTokenTTL * 4,
		now:       time.Now,
		sessions:  make(map[string]*sessionState),
	}
}

// Refresh exchanges the refresh cookie for a new access token. Concurrent
// callers holding the same cookie share a single upstream exchange; every
// caller receives the winner's result rather than a failure.
func (c *Coordinator) Refresh(ctx context.Context, refreshCookie string) (*ExchangeResult, error) {
	return c.refresh(ctx, refreshCookie, "on_demand")
}

func (c *Coordinator) refresh(ctx context.Context, refreshCookie, trigger string) (*ExchangeResult, error) {
	if refreshCookie == "" {
		return nil, ErrNoRefreshCredential
	}
	key := sessionKey(refreshCookie)
	// The exchange outcome is shared by every waiter, so it must not die with
	// the winning caller's request context.
	exchangeCtx := context.WithoutCancel(ctx)
	value, err, _ := c.group.Do(key, func() (any, error) {
		start := c.now()
		result, err := c.exchanger.Exchange(exchangeCtx, refreshCookie)
		c.metrics.ObserveRefreshDuration(trigger, c.now().Sub(start))
		if err != nil {
			if errors.Is(err, ErrSessionExpired) {
				c.metrics.IncRefresh("expired")
				c.evict(key)
			} else {
				c.metrics.IncRefresh("error")
			}
			return nil, err
		}
		c.metrics.IncRefresh("success")
		c.remember(key, refreshCookie, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*ExchangeResult), nil
}

// Cached returns the freshest known result for the session when it was
// refreshed within the scheduled interval, so a proactive refresh can reach
// the browser without another upstream round trip.
func (c *Coordinator) Cached(refreshCookie string) (*ExchangeResult, bool) {
	if refreshCookie == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.sessions[sessionKey(refreshCookie)]
	if !ok {
		return nil, false
	}
	state.lastSeen = c.now()
	if c.now().Sub(state.refreshedAt) >= c.interval {
		return nil, false
	}
	result := state.result
	return &result, true
}

// Forget drops the session from the refresh schedule, for logout.
func (c *Coordinator) Forget(refreshCookie string) {
	if refreshCookie == "" {
		return
	}
	c.evict(sessionKey(refreshCookie))
}

// AutoRefresh periodically re-exchanges every tracked session so tokens stay
// ahead of their expiry while a session is active. It blocks until ctx is
// cancelled.
func (c *Coordinator) AutoRefresh(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshDue(ctx)
		}
	}
}

func (c *Coordinator) refreshDue(ctx context.Context) {
	now := c.now()
	c.mu.Lock()
	due := make([]string, 0, len(c.sessions))
	for key, state := range c.sessions {
		if now.Sub(state.lastSeen) > c.maxIdle {
			delete(c.sessions, key)
			continue
		}
		if now.Sub(state.refreshedAt) >= c.interval {
			due = append(due, state.refreshCookie)
		}
	}
	c.mu.Unlock()

	for _, cookie := range due {
		if cookie == "" {
			continue
		}
		if _, err := c.refresh(ctx, cookie, "scheduled"); err != nil && c.logg != nil {
			if !errors.Is(err, ErrSessionExpired) {
				c.logg.Warn(ctx, "session.auto_refresh_failed")
			}
		}
	}
}

func (c *Coordinator) remember(key, refreshCookie string, result *ExchangeResult) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.sessions[key]
	if !ok {
		state = &sessionState{}
		c.sessions[key] = state
	}
	state.refreshCookie = refreshCookie
	state.result = *result
	state.result.SetCookies = append([]string(nil), result.SetCookies...)
	state.refreshedAt = now
	state.lastSeen = now
}

func (c *Coordinator) evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, key)
}

func sessionKey(refreshCookie string) string {
	sum := sha256.Sum256([]byte(refreshCookie))
	return hex.EncodeToString(sum[:])
}
