package token

import (
	"time"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Payload contains the payload data of the token.
type Payload struct {
	ID        uuid.UUID        `json:"jti"`
	Subject   string           `json:"sub"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	NotBefore *jwt.NumericDate `json:"nbf,omitempty"`
	Issuer    string           `json:"iss,omitempty"`
	Audience  []string         `json:"aud,omitempty"`

	CustomClaims map[string]any `json:"custom_claims,omitempty"`
}

// NewPayload creates a new token payload for the subject with the given lifetime.
func NewPayload(sub string, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	now := time.Now()
	payload := &Payload{
		ID:           tokenID,
		Subject:      sub,
		IssuedAt:     jwt.NewNumericDate(now),
		ExpiresAt:    jwt.NewNumericDate(now.Add(duration)),
		NotBefore:    jwt.NewNumericDate(now),
		CustomClaims: make(map[string]any),
	}
	return payload, nil
}

// WithCustomClaim adds a custom claim to the token payload.
func (payload *Payload) WithCustomClaim(key string, value any) *Payload {
	if payload.CustomClaims == nil {
		payload.CustomClaims = make(map[string]any)
	}
	payload.CustomClaims[key] = value
	return payload
}

// CustomClaim returns a custom claim value, or nil when absent.
func (payload *Payload) CustomClaim(key string) any {
	return payload.CustomClaims[key]
}

// Valid checks if the token payload is valid at the current time.
func (payload *Payload) Valid() bool {
	now := time.Now()

	if payload.ExpiresAt != nil && now.After(payload.ExpiresAt.Time) {
		return false
	}

	if payload.NotBefore != nil && now.Before(payload.NotBefore.Time) {
		return false
	}

	return true
}

// GetExpirationTime implements jwt.Claims.
func (payload *Payload) GetExpirationTime() (*jwt.NumericDate, error) {
	return payload.ExpiresAt, nil
}

// GetIssuedAt implements jwt.Claims.
func (payload *Payload) GetIssuedAt() (*jwt.NumericDate, error) {
	return payload.IssuedAt, nil
}

// GetNotBefore implements jwt.Claims.
func (payload *Payload) GetNotBefore() (*jwt.NumericDate, error) {
	return payload.NotBefore, nil
}

// GetIssuer implements jwt.Claims.
func (payload *Payload) GetIssuer() (string, error) {
	return payload.Issuer, nil
}

// GetSubject implements jwt.Claims.
func (payload *Payload) GetSubject() (string, error) {
	return payload.Subject, nil
}

// GetAudience implements jwt.Claims.
func (payload *Payload) GetAudience() (jwt.ClaimStrings, error) {
	return payload.Audience, nil
}
