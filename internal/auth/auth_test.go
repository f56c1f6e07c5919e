package auth

import (
	"testing"
	"time"

	"cambistas-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", ExpirationHours: 1, Issuer: "cambistas-backend"}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	token, expiresAt, err := m.GenerateToken("jailson")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jailson", claims.Username)
}

func TestValidateTokenRejects(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	token, _, err := m.GenerateToken("jailson")
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "other"
	_, err = NewJWTManager(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other = testJWTConfig()
	other.Issuer = "someone-else"
	_, err = NewJWTManager(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "jailson",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cambistas-backend",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("121212")
	require.NoError(t, err)

	assert.True(t, IsHash(hash))
	assert.False(t, IsHash("121212"))
	assert.True(t, VerifyPassword(hash, "121212"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
