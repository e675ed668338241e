package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from a bearer token without the
// signing key. None of it is trusted; it is only shown to the user.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Expired reports whether the token's exp claim is in the past at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the token's payload without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	return c, nil
}
