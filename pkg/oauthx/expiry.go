package oauthx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry resolves when a token becomes invalid. It prefers the
// expires_in hint from the token endpoint and falls back to the exp claim of
// the JWT itself. The parse is unverified on purpose: signature checking is
// the provider introspection endpoint's job, this is only a display hint.
func TokenExpiry(t TokenData, issuedAt time.Time) time.Time {
	if t.ExpiresIn > 0 {
		return issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(t.AccessToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
