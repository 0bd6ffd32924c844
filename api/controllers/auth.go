package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/api/validators"
	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/upstream"
	"github.com/pickspot/vendor-portal/pkg/config"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Password    string `json:"password" validate:"required"`
}

type signupRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=80"`
	LastName    string `json:"lastName" validate:"required,max=80"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Password    string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
}

type verifyResetCodeRequest struct {
	ResetCode string `json:"resetCode" validate:"required,max=12"`
}

type resetPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// Login proxies the credential exchange and plants the session cookies: the
// access token goes into the client-readable cookie, the upstream's HTTP-only
// refresh cookie is forwarded untouched.
func Login(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.PhoneNumber = validators.SanitizeString(body.PhoneNumber, 20)

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/login", body, nil)
		if !result.OK {
			relay(r.Context(), logg, w, result)
			return
		}

		var payload struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.Unmarshal(result.Data, &payload); err != nil || payload.AccessToken == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUpstream, "login response missing access token"))
			return
		}

		store := middleware.TokenStoreFromContext(r.Context())
		if store != nil {
			store.Set(payload.AccessToken)
			store.ApplySetCookies(result.Cookies)
		}

		responses.WriteRaw(w, result.Status, result.Data)
	}
}

// Logout invalidates the upstream refresh state and clears local credentials.
// Clearing happens regardless of the upstream verdict, so repeated calls all
// land in the same signed-out state.
func Logout(client *upstream.Client, coord *session.Coordinator, cookies config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := middleware.TokenStoreFromContext(ctx)

		refreshCookie := ""
		if store != nil {
			refreshCookie = store.RefreshCookie()
		}

		if client != nil && refreshCookie != "" {
			result := client.Call(ctx, http.MethodPost, "/auth/vendors/logout", nil, nil,
				upstream.WithCookie(cookies.RefreshName, refreshCookie))
			if !result.OK && logg != nil {
				logg.Warn(ctx, "auth.logout.upstream_failed")
			}
		}

		if coord != nil {
			coord.Forget(refreshCookie)
		}
		if store != nil {
			store.Clear()
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// Signup proxies vendor registration after enforcing the password rules
// locally, keeping malformed requests off the upstream.
func Signup(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body signupRequest
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

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/signup", body, nil)
		relay(r.Context(), logg, w, result)
	}
}

// ForgotPassword starts the reset flow for the given phone number.
func ForgotPassword(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body forgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.PhoneNumber = validators.SanitizeString(body.PhoneNumber, 20)

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/forgot-password", body, nil)
		relay(r.Context(), logg, w, result)
	}
}

// VerifyResetCode checks the one-time code sent to the user.
func VerifyResetCode(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body verifyResetCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/verify-reset-code", body, nil)
		relay(r.Context(), logg, w, result)
	}
}

// ResetPassword completes the reset flow with a new compliant password.
func ResetPassword(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		var body resetPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ValidatePassword(body.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.PhoneNumber = validators.SanitizeString(body.PhoneNumber, 20)

		result := client.Call(r.Context(), http.MethodPost, "/auth/vendors/reset-password", body, nil)
		relay(r.Context(), logg, w, result)
	}
}
