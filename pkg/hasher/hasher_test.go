package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := New(bcrypt.MinCost)

	digest, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))

	ok, err := h.Verify("secret123", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	h := New(bcrypt.MinCost)

	digest, err := h.Hash("secret123")
	require.NoError(t, err)

	ok, err := h.Verify("wrong-password", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	h := New(bcrypt.MinCost)

	d1, err := h.Hash("secret123")
	require.NoError(t, err)
	d2, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)

	for _, d := range []string{d1, d2} {
		ok, err := h.Verify("secret123", d)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := New(bcrypt.MinCost)

	for _, digest := range []string{"", "not-a-digest", "$2a$garbage"} {
		ok, err := h.Verify("secret123", digest)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformedDigest)
	}
}

func TestNewClampsCost(t *testing.T) {
	digest, err := New(-1).Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
