package hasher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/order-inventory-platform/hasher"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, hasher.Compare("s3cret-pass", hash))
	assert.False(t, hasher.Compare("wrong-pass", hash))
	assert.False(t, hasher.Compare("s3cret-pass", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
