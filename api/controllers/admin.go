package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/api/validators"
	"github.com/pickspot/vendor-portal/internal/upstream"
	"github.com/pickspot/vendor-portal/pkg/enums"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// minVendorPayout is the smallest payout the platform accepts for vendors.
var minVendorPayout = decimal.NewFromInt(100)

type payUsersRequest struct {
	VendorID    string          `json:"vendorId" validate:"required"`
	TotalPayout decimal.Decimal `json:"totalPayout" validate:"required"`
	VendorRole  string          `json:"vendorRole" validate:"omitempty,oneof=vendor agent admin"`
}

type createVendorRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=80"`
	LastName    string `json:"lastName" validate:"required,max=80"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Password    string `json:"password" validate:"required"`
	Agent       string `json:"agent,omitempty"`
}

// ListVendors returns every vendor on the platform.
func ListVendors(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		result := client.Call(r.Context(), http.MethodGet, "/user/all-vendors", nil, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result.EmptyListOnNotFound())
	}
}

// VendorRedemptions returns one vendor's redemption history for the admin
// detail view, with the usual 404-as-empty convention.
func VendorRedemptions(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		vendorID := validators.SanitizeString(chi.URLParam(r, "vendorID"), 64)
		if vendorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required"))
			return
		}

		result := client.Call(r.Context(), http.MethodGet, "/user/all-redeemed-users-per-vendor/"+url.PathEscape(vendorID), nil, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result.EmptyListOnNotFound())
	}
}

// PayUsers settles outstanding payouts for a vendor's redeemed users. The
// upstream answers 404 when the vendor has no unpaid users, which stays an
// error here so the admin sees why nothing happened.
func PayUsers(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body payUsersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.TotalPayout.LessThanOrEqual(decimal.Zero) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payout must be positive"))
			return
		}
		if body.VendorRole == enums.RoleVendor.String() && body.TotalPayout.LessThan(minVendorPayout) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "minimum payout for vendors is 100"))
			return
		}

		payload := map[string]any{
			"vendorId":    body.VendorID,
			"totalPayout": body.TotalPayout,
		}
		result := client.Call(r.Context(), http.MethodPost, "/user/pay-users", payload, requestCredentials(r.Context()))
		if result.IsNotFound() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no unpaid users for this vendor"))
			return
		}
		relay(r.Context(), logg, w, result)
	}
}

// SuspendVendor flips a vendor into the suspended state.
func SuspendVendor(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		vendorID := validators.SanitizeString(chi.URLParam(r, "vendorID"), 64)
		if vendorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required"))
			return
		}

		result := client.Call(r.Context(), http.MethodPatch, "/user/suspend?vendorId="+url.QueryEscape(vendorID), nil, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result)
	}
}

// CreateVendor registers a vendor account on behalf of an agent or admin.
// Agent-created vendors carry the creating agent's id.
func CreateVendor(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body createVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ValidatePassword(body.Password); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.FirstName = validators.SanitizeString(body.FirstName, 80)
		body.LastName = validators.SanitizeString(body.LastName, 80)
		body.PhoneNumber = validators.SanitizeString(body.PhoneNumber, 20)

		if identity := middleware.IdentityFromContext(r.Context()); identity != nil && identity.Role == enums.RoleAgent {
			body.Agent = identity.VendorID
		}

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/create-vendor", body, requestCredentials(r.Context()))
		relay(r.Context(), logg, w, result)
	}
}
