package domain

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims carried by access and refresh tokens.
// The username lives in the standard Subject claim.
type Claims struct {
	jwt.RegisteredClaims
}
