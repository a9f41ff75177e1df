// Package protocol implements the challenge-response primitives shared by
// the central station and worker stations. Both sides prove knowledge of a
// secret by hashing it together with a fresh nonce.
package protocol

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewChallenge returns a fresh nonce: 16 random bytes, hex-encoded
// uppercase.
func NewChallenge() (string, error) {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", fmt.Errorf("generate challenge: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(seed[:])), nil
}

// Response computes the expected reply to a challenge:
// hex(SHA256(secret || challenge)), uppercase.
func Response(secret, challenge string) string {
	sum := sha256.Sum256([]byte(secret + challenge))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify reports whether response answers challenge under secret. The
// comparison is constant-time and case-insensitive on the hex digits.
func Verify(secret, challenge, response string) bool {
	expected := Response(secret, challenge)
	got := strings.ToUpper(response)
	if len(got) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
