package cryptoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const (
	// ReferenceLength is the total length of a public booking reference.
	ReferenceLength = 8
	// ReferenceSentinel is the fixed first character of every reference.
	ReferenceSentinel = 'W'

	// referenceAlphabet excludes visually confusable glyphs (I, O, 0, 1).
	referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Hash returns the hex-encoded SHA-256 digest of salt+data. The digest is
// deterministic and always 64 characters; pass an empty salt for plain
// fingerprinting.
func Hash(data, salt string) string {
	sum := sha256.Sum256([]byte(salt + data))
	return hex.EncodeToString(sum[:])
}

// GenerateSecureToken returns 2*byteLength hex characters of
// cryptographically random data.
func GenerateSecureToken(byteLength int) string {
	buf := make([]byte, byteLength)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// GenerateReferenceNumber returns an 8-character public booking code: the
// sentinel letter followed by 7 random characters from the confusable-free
// alphabet. 256 is a multiple of the alphabet size, so the modulo draw
// stays uniform.
func GenerateReferenceNumber() string {
	buf := make([]byte, ReferenceLength-1)
	_, _ = rand.Read(buf)

	code := make([]byte, ReferenceLength)
	code[0] = ReferenceSentinel
	for i, b := range buf {
		code[i+1] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(code)
}

// TimingSafeCompare reports whether a and b are equal using a constant-time
// comparison. Inputs of different lengths return false immediately, which
// leaks length via timing; kept intentionally, callers compare fixed-length
// digests.
func TimingSafeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
