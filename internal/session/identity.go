package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller's credential token plus the claims the
// client needs locally. The token is otherwise opaque; only the service
// verifies it.
type Identity struct {
	Token     string    `json:"token"`
	Principal string    `json:"principal"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (id Identity) IsZero() bool {
	return id.Token == ""
}

func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// IdentityFromToken extracts the principal and expiry from an identity token.
// The signature is not verified here; the client has no signing key and the
// service re-verifies every call.
func IdentityFromToken(token string) (Identity, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("identity token has no subject")
	}
	id := Identity{Token: token, Principal: claims.Subject}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
