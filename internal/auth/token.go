// Package auth extracts a verified user identity from the JWT issued by
// the MedEasy backend (a Spring service signing HS256 tokens with a
// shared secret). The server never issues tokens itself — it only needs
// the user id out of one, and rejects anything it cannot verify.
package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Errors returned by Decode. All of them mean "treat the caller as
// unauthenticated" — identity extraction fails closed.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrNoUserID     = errors.New("token has no userId claim")
)

// Decoder verifies backend-issued tokens and extracts the user id.
type Decoder struct {
	secret []byte
}

// NewDecoder creates a Decoder for the given HS256 secret. The secret
// must match the backend issuer's token.secret.key.
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Decode verifies the token signature and expiry and returns the userId
// claim as a string. The backend encodes userId as a JSON number, so
// both numeric and string claims are accepted.
func (d *Decoder) Decode(token string) (string, error) {
	if len(d.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	switch v := claims["userId"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case string:
		if v == "" {
			return "", ErrNoUserID
		}
		return v, nil
	default:
		return "", ErrNoUserID
	}
}
