package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeAccessToken parses the JWT payload without verifying the signature.
// The portal never treats the decoded claims as a security boundary: every
// data call is re-validated by the platform API, and the decode exists only
// so the UI can route on role and render the vendor's name. A token that
// does not decode is treated the same as no token at all.
func DecodeAccessToken(tokenString string) (*AccessTokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("empty access token")
	}

	claims := &AccessTokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}

	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("unknown role %q in access token", claims.Role)
	}

	return claims, nil
}
