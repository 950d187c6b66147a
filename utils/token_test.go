package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_UniquePerMint(t *testing.T) {
	first, err := GenerateToken("secret", "alice")
	require.NoError(t, err)
	second, err := GenerateToken("secret", "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two mints for the same user must differ")
}

func TestGenerateToken_CarriesUsername(t *testing.T) {
	token, err := GenerateToken("secret", "alice")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "alice", claims["username"])
	assert.NotEmpty(t, claims["jti"])
}
