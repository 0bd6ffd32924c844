package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pickspot/vendor-portal/pkg/enums"
)

// AccessTokenClaims mirrors the payload the platform embeds in access tokens.
type AccessTokenClaims struct {
	VendorID    string     `json:"vendorId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PhoneNumber string     `json:"phoneNumber"`
	Role        enums.Role `json:"role"`
	Suspended   bool       `json:"suspended,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the read-only projection of the access token used for routing
// and display. It is recomputed whenever the token changes and never stored.
type Identity struct {
	VendorID    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        enums.Role
	Status      enums.AccountStatus
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Suspended reports whether the account is locked out of the normal surfaces.
func (i Identity) Suspended() bool {
	return i.Status == enums.AccountSuspended
}

// Identity projects the claims into the UI-facing shape.
func (c *AccessTokenClaims) Identity() Identity {
	status := enums.AccountActive
	if c.Suspended {
		status = enums.AccountSuspended
	}

	identity := Identity{
		VendorID:    c.VendorID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Role:        c.Role,
		Status:      status,
	}
	if c.IssuedAt != nil {
		identity.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}
	return identity
}
