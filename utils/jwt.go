// utils/jwt.go
package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID   string `json:"user_id"`
	ClinicID string `json:"clinic_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *t
	cp.now = now
	return &cp
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

func (t *TokenIssuer) GenerateJWT(userID, clinicID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("userID is required")
	}
	now := t.now().UTC()
	claims := Claims{
		UserID:   userID,
		ClinicID: clinicID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// ValidateJWT checks signature, algorithm and expiry against the issuer's clock.
func (t *TokenIssuer) ValidateJWT(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	now := t.now().UTC()
	if claims.ExpiresAt == nil || !claims.VerifyExpiresAt(now, true) {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
