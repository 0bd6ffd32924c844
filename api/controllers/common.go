package controllers

import (
	"context"
	"net/http"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/upstream"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// requestCredentials binds the request's cookie store and the shared refresh
// coordinator into the credential surface the upstream client consumes.
func requestCredentials(ctx context.Context) *session.RequestCredentials {
	return &session.RequestCredentials{
		Store: middleware.TokenStoreFromContext(ctx),
		Coord: middleware.CoordinatorFromContext(ctx),
	}
}

// relay forwards an upstream result to the browser: successful payloads pass
// through verbatim, failures are mapped onto the portal's error envelope.
func relay(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, result upstream.Result) {
	if result.OK {
		responses.WriteRaw(w, result.Status, result.Data)
		return
	}
	responses.WriteError(ctx, logg, w, upstreamError(result))
}

func upstreamError(result upstream.Result) *pkgerrors.Error {
	code := pkgerrors.CodeUpstream
	switch result.Status {
	case http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case http.StatusConflict:
		code = pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		code = pkgerrors.CodeRateLimit
	}
	return pkgerrors.New(code, result.Message)
}
