package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateSolanaKeypair returns a new random account keypair.
func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return key
}

// GenerateSolanaKeys returns n random account addresses.
func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, 0, n)
	for len(keys) < n {
		keys = append(keys, GenerateSolanaKeypair(t).Public().(ed25519.PublicKey))
	}
	return keys
}
