package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifetime(t *testing.T) {
	issued := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := issued
	issuer := NewTokenIssuer([]byte("secret"), 0).WithClock(func() time.Time { return clock })
	assert.Equal(t, DefaultTokenTTL, issuer.TTL())

	token, err := issuer.GenerateJWT("user-1", "clinic-1")
	require.NoError(t, err)

	clock = issued.Add(6 * 24 * time.Hour)
	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "clinic-1", claims.ClinicID)
	assert.NotEmpty(t, claims.ID)

	clock = issued.Add(8 * 24 * time.Hour)
	_, err = issuer.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateJWTRejects(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	_, err := issuer.GenerateJWT("  ", "")
	assert.Error(t, err)

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not.a.token",
	} {
		_, err := issuer.ValidateJWT(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}

	foreign, err := NewTokenIssuer([]byte("other"), time.Hour).GenerateJWT("user-1", "")
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Same key, different algorithm.
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Valid signature but no expiry.
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
	assert.False(t, CheckPasswordHash("hunter22", ""))

	_, err = HashPassword("")
	assert.Error(t, err)
}
