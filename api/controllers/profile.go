package controllers

import (
	"net/http"
	"time"

	"github.com/pickspot/vendor-portal/api/middleware"
	"github.com/pickspot/vendor-portal/api/responses"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

type profileResponse struct {
	VendorID    string    `json:"vendorId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	Suspended   bool      `json:"suspended"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Me returns the identity decoded from the caller's access token.
func Me(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		responses.WriteSuccess(w, profileResponse{
			VendorID:    identity.VendorID,
			FirstName:   identity.FirstName,
			LastName:    identity.LastName,
			PhoneNumber: identity.PhoneNumber,
			Role:        identity.Role.String(),
			Suspended:   identity.Suspended(),
			IssuedAt:    identity.IssuedAt,
			ExpiresAt:   identity.ExpiresAt,
		})
	}
}
