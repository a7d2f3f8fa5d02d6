package jwt

import (
	"testing"
	"time"

	"vetclinic-portal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken_WithSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "shared"})
	token := sign(t, "shared", Claims{
		UserID:           FormatUserID(5),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "5", claims.Identity())
	assert.Greater(t, svc.TokenTTL(claims), 59*time.Minute)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "shared"})
	token := sign(t, "other", Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})

	_, err := svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_UnverifiedChecksExpiry(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{})

	live := sign(t, "backend-only", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "12",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	claims, err := svc.ValidateToken(live)
	require.NoError(t, err)
	assert.Equal(t, "12", claims.Identity())

	expired := sign(t, "backend-only", Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Missing(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{})

	_, err := svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
