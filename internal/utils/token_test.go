package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, false, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestSessionTokenCarriesAdminFlag(t *testing.T) {
	tok, err := NewSessionToken("secret", 7, true, 60)
	require.NoError(t, err)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", 1, false, 60)
	require.NoError(t, err)

	_, err = ParseSessionToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenExpired(t *testing.T) {
	tok, err := NewSessionToken("secret", 1, false, -1)
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenGarbage(t *testing.T) {
	_, err := ParseSessionToken("secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
}

func TestNewResetToken(t *testing.T) {
	tok, err := NewResetToken(10 * time.Minute)
	require.NoError(t, err)

	assert.Len(t, tok.Raw, 64) // 32 bytes hex encoded
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), tok.Exp, 2*time.Second)

	other, err := NewResetToken(10 * time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)
}

func TestHashResetRawIsDeterministicOneWay(t *testing.T) {
	h1 := HashResetRaw("raw-token")
	h2 := HashResetRaw("raw-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashResetRaw("other-token"))
	assert.NotContains(t, h1, "raw-token")
}
