package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetToken is a password-reset token pair: the raw value handed to the
// notification sender (and never persisted or logged) and its UTC expiry.
// Only the SHA-256 hash of Raw is stored, so a leaked database row cannot
// be replayed as a reset link.
type ResetToken struct {
	Raw string
	Exp time.Time
}

// NewResetToken returns a 32-byte random token encoded as hex (64 chars)
// together with its expiry, ttl from now.
func NewResetToken(ttl time.Duration) (ResetToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(ttl),
	}, nil
}

// HashResetRaw returns the SHA-256 hash of the raw reset token as a hex
// string; this is the only form that ever reaches the database.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
