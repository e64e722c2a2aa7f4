package tokenmetadata

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataAccount_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	expected := &MetadataAccount{
		UpdateAuthority: keys[0],
		Mint:            keys[1],
		Data: Data{
			Name:                 "Tipsea",
			Symbol:               "TIP",
			Uri:                  "https://tipsea.example/metadata/1.json",
			SellerFeeBasisPoints: 300,
			Creators: []Creator{
				{Address: keys[2], Share: 100},
				{Address: keys[3], Share: 0},
			},
		},
		PrimarySaleHappened: false,
		IsMutable:           false,
	}

	data := expected.Marshal()
	assert.Len(t, data, MetadataAccountSize)
	assert.True(t, IsMetadataAccount(data))

	var actual MetadataAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
	assert.True(t, actual.Data.HasCreator(keys[2]))
	assert.False(t, actual.Data.HasCreator(keys[0]))

	expected.Data.Creators = nil
	expected.IsMutable = true
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, &actual)
}

func TestMetadataAccount_MaxLengths(t *testing.T) {
	keys := generateKeys(t, 2+MaxCreators)

	expected := &MetadataAccount{
		UpdateAuthority: keys[0],
		Mint:            keys[1],
		Data: Data{
			Name:   strings.Repeat("n", MaxNameLength),
			Symbol: strings.Repeat("s", MaxSymbolLength),
			Uri:    strings.Repeat("u", MaxUriLength),
		},
	}
	for i := 0; i < MaxCreators; i++ {
		expected.Data.Creators = append(expected.Data.Creators, Creator{Address: keys[2+i], Share: 20})
	}

	var actual MetadataAccount
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, &actual)
}

func TestMetadataAccount_InvalidData(t *testing.T) {
	var actual MetadataAccount
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(nil))

	data := make([]byte, MetadataAccountSize)
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data))
	assert.False(t, IsMetadataAccount(data))

	edition := (&MasterEditionAccount{}).Marshal()
	assert.False(t, IsMetadataAccount(edition))
}

func TestMasterEditionAccount_RoundTrip(t *testing.T) {
	var maxSupply uint64

	expected := &MasterEditionAccount{
		MaxSupply: &maxSupply,
	}

	var actual MasterEditionAccount
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, &actual)

	expected = &MasterEditionAccount{Supply: 10}
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, &actual)

	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(make([]byte, MasterEditionAccountSize)))
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(make([]byte, MasterEditionAccountSize-1)))
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
