package middleware

import (
	"context"

	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/token"
	"github.com/pickspot/vendor-portal/pkg/auth"
)

type contextKey string

const (
	ctxIdentity    contextKey = "identity"
	ctxTokenStore  contextKey = "token_store"
	ctxCoordinator contextKey = "session_coordinator"
)

// WithIdentity injects the decoded token identity into the context.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the decoded identity, or nil when unauthenticated.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*auth.Identity); ok {
		return v
	}
	return nil
}

// WithTokenStore injects the per-request cookie-backed token store.
func WithTokenStore(ctx context.Context, store *token.Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTokenStore, store)
}

// TokenStoreFromContext returns the request's token store, or nil.
func TokenStoreFromContext(ctx context.Context) *token.Store {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTokenStore).(*token.Store); ok {
		return v
	}
	return nil
}

// WithCoordinator injects the refresh coordinator bound to the request's store.
func WithCoordinator(ctx context.Context, coord *session.Coordinator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCoordinator, coord)
}

// CoordinatorFromContext returns the request's refresh coordinator, or nil.
func CoordinatorFromContext(ctx context.Context) *session.Coordinator {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCoordinator).(*session.Coordinator); ok {
		return v
	}
	return nil
}
