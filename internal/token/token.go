// Package token issues and verifies the signed bearer tokens that carry a
// user identity between requests. Tokens are self-contained JWTs; nothing is
// persisted server-side, so a token stays valid until it expires or the
// client discards it.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for every unusable token: expired, malformed,
// or signed with the wrong key. Callers must not be able to tell these cases
// apart.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims embedded in issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Service signs and verifies bearer tokens with a process-wide secret.
type Service struct {
	signingSecret []byte
	tokenTTL      time.Duration
}

// New creates a token Service with the given HMAC signing secret and
// token lifetime.
func New(signingSecret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		signingSecret: signingSecret,
		tokenTTL:      tokenTTL,
	}
}

// Issue produces a signed token embedding the user ID and an expiry.
func (s *Service) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// Verify validates the token's signature and expiry and returns the embedded
// user ID. Any failure is reported as ErrInvalidToken.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingSecret, nil
		},
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
