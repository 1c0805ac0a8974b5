package token_test

import (
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/order-inventory-platform/token"
)

const testSecret = "test-secret-key-0123456789"

func TestNewJWTMaker(t *testing.T) {
	_, err := token.NewJWTMaker("short")
	require.Error(t, err)

	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)
	assert.NotNil(t, maker)
}

func TestCreateAndVerifyToken(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	signed, payload, err := maker.CreateToken("42", time.Minute, map[string]any{"role": "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.Equal(t, "42", payload.Subject)

	verified, err := maker.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, payload.ID, verified.ID)
	assert.Equal(t, "42", verified.Subject)
	assert.Equal(t, "admin", verified.CustomClaim("role"))
	assert.WithinDuration(t, payload.ExpiresAt.Time, verified.ExpiresAt.Time, time.Second)
}

func TestVerifyExpiredToken(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	signed, _, err := maker.CreateToken("42", -time.Minute, nil)
	require.NoError(t, err)

	_, err = maker.VerifyToken(signed)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, token.CodeExpiredToken))
}

func TestVerifyTamperedToken(t *testing.T) {
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)

	otherMaker, err := token.NewJWTMaker("another-secret-key-xyz")
	require.NoError(t, err)

	signed, _, err := otherMaker.CreateToken("42", time.Minute, nil)
	require.NoError(t, err)

	_, err = maker.VerifyToken(signed)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, token.CodeInvalidToken))
}
