package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type CredentialKind string

const (
	CredentialAccess  CredentialKind = "access"
	CredentialRefresh CredentialKind = "refresh"
)

// CredentialPair is the short-lived access token plus the longer-lived
// refresh token obtained at login. The refresh token is only ever sent to
// the token renewal endpoint.
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RoleFromToken reads the reviewer role from the access token's claims.
// The signature is not verified here: the clinic API is the verifier, this
// side only needs the embedded claim.
func RoleFromToken(access string) (Role, error) {
	claims, err := unverifiedClaims(access)
	if err != nil {
		return "", err
	}
	raw, ok := claims["role"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("access token carries no role claim")
	}
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("access token carries unknown role %q", raw)
	}
	return role, nil
}

// TokenExpiresAt reads the exp claim from an access token.
func TokenExpiresAt(access string) (time.Time, error) {
	claims, err := unverifiedClaims(access)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token carries no exp claim")
	}
	return exp.Time, nil
}

func unverifiedClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}
