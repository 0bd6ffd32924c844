package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/api/validators"
	"github.com/pickspot/vendor-portal/internal/upstream"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// Redeem marks a digital handle as collected on behalf of the signed-in
// vendor. A 404 here is a real miss (unknown handle), not an empty list.
func Redeem(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		handle := strings.ToLower(validators.SanitizeString(chi.URLParam(r, "handle"), 64))
		if handle == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "digital handle is required"))
			return
		}

		result := client.Call(r.Context(), http.MethodPatch, "/user/redeem/"+url.PathEscape(handle), nil, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result)
	}
}

// ListRedemptions returns the vendor's redemption history. The upstream
// answers 404 when there is none yet, which renders as an empty list.
func ListRedemptions(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		result := client.Call(r.Context(), http.MethodGet, "/user/all-redeemed-users", nil, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result.EmptyListOnNotFound())
	}
}
