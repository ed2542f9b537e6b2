package auth

import (
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
)

// NewTokenAuth creates the HS256 token authority shared by the login
// handler and the Verifier middleware.
func NewTokenAuth(signingKey []byte) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", signingKey, nil)
}

// IssueToken mints an access token for an authenticated user.
func IssueToken(tokens *jwtauth.JWTAuth, user *User, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"username": user.Username,
		"jti":      uuid.NewString(),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, ttl)

	_, tokenString, err := tokens.Encode(claims)
	return tokenString, err
}
