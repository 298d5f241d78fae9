package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the identity provider.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// RequesterID returns UserID, falling back to the registered "sub" claim.
func (c *JWTClaims) RequesterID() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}
