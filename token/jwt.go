// Package token issues and verifies the JSON Web Tokens used for API authentication.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CodeExpiredToken = "EXPIRED_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"

	minSecretKeySize = 16
)

// JWTMaker is a JSON Web Token maker signing with HMAC-SHA256.
type JWTMaker struct {
	secretKey string
}

// NewJWTMaker creates a new JWTMaker.
func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, errx.New(fmt.Sprintf("invalid key size: must be at least %d characters", minSecretKeySize))
	}
	return &JWTMaker{secretKey}, nil
}

// CreateToken issues a signed token for the subject with the given lifetime.
// Custom claims are carried alongside the standard ones.
func (maker *JWTMaker) CreateToken(
	sub string,
	duration time.Duration,
	customClaims map[string]any,
) (string, *Payload, error) {
	payload, err := NewPayload(sub, duration)
	if err != nil {
		return "", nil, errx.Wrap(err)
	}

	for key, value := range customClaims {
		payload = payload.WithCustomClaim(key, value)
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	token, err := jwtToken.SignedString([]byte(maker.secretKey))
	if err != nil {
		return "", nil, errx.Wrap(err)
	}

	return token, payload, nil
}

// VerifyToken parses and validates a token, returning its payload.
func (maker *JWTMaker) VerifyToken(token string) (*Payload, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, errx.New("unexpected signing method", errx.WithCode(CodeInvalidToken))
		}
		return []byte(maker.secretKey), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &Payload{}, keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errx.New("token is expired", errx.WithCode(CodeExpiredToken))
		}
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidToken))
	}

	payload, ok := jwtToken.Claims.(*Payload)
	if !ok {
		return nil, errx.New("invalid token claims", errx.WithCode(CodeInvalidToken))
	}

	if !payload.Valid() {
		return nil, errx.New("token is invalid", errx.WithCode(CodeInvalidToken))
	}

	return payload, nil
}
