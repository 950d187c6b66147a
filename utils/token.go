package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GenerateToken mints the opaque session token handed out by login. It is a
// signed JWT so it survives casual inspection, but the server treats it as
// opaque: validity is decided by comparing it against the stored session, not
// by the claims. The jti claim makes every mint unique, so logging in twice
// produces a different token and the first one stops matching.
func GenerateToken(secret, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"iat":      time.Now().Unix(),
		"jti":      uuid.NewString(),
	})
	return token.SignedString([]byte(secret))
}
