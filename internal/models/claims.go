package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the JWT claims carried by a family member's access token.
// FamilyID scopes every ledger operation; UserID identifies the member for
// audit attribution.
type AccessClaims struct {
	jwt.RegisteredClaims
	FamilyID string `json:"family_id"`
	UserID   string `json:"user_id"`
}
