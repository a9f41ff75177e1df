package protocol

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChallengeShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		challenge, err := NewChallenge()
		require.NoError(t, err)
		assert.Len(t, challenge, 32)
		_, err = hex.DecodeString(challenge)
		assert.NoError(t, err)
		assert.False(t, seen[challenge], "challenge repeated")
		seen[challenge] = true
	}
}

func TestResponseMatchesDigestDefinition(t *testing.T) {
	sum := sha256.Sum256([]byte("secret" + "00112233445566778899AABBCCDDEEFF"))
	expected := strings.ToUpper(hex.EncodeToString(sum[:]))
	assert.Equal(t, expected, Response("secret", "00112233445566778899AABBCCDDEEFF"))
}

func TestVerify(t *testing.T) {
	challenge, err := NewChallenge()
	require.NoError(t, err)

	good := Response("secret", challenge)
	assert.True(t, Verify("secret", challenge, good))
	assert.True(t, Verify("secret", challenge, strings.ToLower(good)), "hex case must not matter")

	assert.False(t, Verify("secret", challenge, Response("wrong", challenge)))
	assert.False(t, Verify("secret", challenge, ""))
	assert.False(t, Verify("secret", challenge, good[:len(good)-1]))
	otherChallenge, err := NewChallenge()
	require.NoError(t, err)
	assert.False(t, Verify("secret", otherChallenge, good))
}
