package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rustGenerated is the serialized transaction from the Solana SDK's own
// transaction tests.
const rustGenerated = "AUc7Cbu+gZalFSGeSFdukHhP7oSGaSdmdNEd5ZokaSysdoMWfIOzjrAbdaBZZuDMAfyNAogAJdrhgVya+jthsgoBAAEDnON0wdcmjhYIDuXvd10F2qEjAyEAJGSe/CGhYbk+WWMBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

// rustGeneratedAdjusted is rustGenerated signed by a keypair whose public half
// matches its seed.
const rustGeneratedAdjusted = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.PrivateKey{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75, 156, 227, 116, 193, 215, 38, 142, 22, 8,
		14, 229, 239, 119, 93, 5, 218, 161, 35, 3, 33, 0, 36, 100, 158, 252, 33, 161, 97, 185,
		62, 89, 99}
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))

	generated, err := base64.StdEncoding.DecodeString(rustGenerated)
	require.NoError(t, err)
	assert.Equal(t, generated, tx.Marshal())
}

func TestTransaction_GenerateValidCrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, rustGeneratedAdjusted, base64.StdEncoding.EncodeToString(tx.Marshal()))
}

func TestTransaction_SingleInstruction(t *testing.T) {
	keys := generateKeys(t, 2)
	payer := keys[0]
	program := keys[1]

	keys = generateKeys(t, 4)
	data := []byte{1, 2, 3}

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewReadonlyAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[1]), false),
			NewAccountMeta(public(keys[2]), false),
			NewAccountMeta(public(keys[3]), true),
		),
	)

	// Intentionally sign out of order to ensure ordering is fixed.
	assert.NoError(t, tx.Sign(keys[0], keys[3], payer))

	require.Len(t, tx.Signatures, 3)
	require.Len(t, tx.Message.Accounts, 6)
	assert.EqualValues(t, 3, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 2, tx.Message.Header.NumReadOnly)

	message := tx.Message.Marshal()

	assert.True(t, ed25519.Verify(public(payer), message, tx.Signatures[0][:]))
	assert.True(t, ed25519.Verify(public(keys[3]), message, tx.Signatures[1][:]))
	assert.True(t, ed25519.Verify(public(keys[0]), message, tx.Signatures[2][:]))

	assert.Equal(t, public(payer), tx.Message.Accounts[0])
	assert.Equal(t, public(keys[3]), tx.Message.Accounts[1])
	assert.Equal(t, public(keys[0]), tx.Message.Accounts[2])
	assert.Equal(t, public(keys[2]), tx.Message.Accounts[3])
	assert.Equal(t, public(keys[1]), tx.Message.Accounts[4])
	assert.Equal(t, public(program), tx.Message.Accounts[5])

	assert.Equal(t, byte(5), tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, data, tx.Message.Instructions[0].Data)
	assert.Equal(t, []byte{2, 4, 3, 1}, tx.Message.Instructions[0].Accounts)
}

func TestTransaction_MarshalRoundTrip(t *testing.T) {
	keys := generateKeys(t, 3)

	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			[]byte{4, 5, 6},
			NewAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[2]), false),
		),
	)
	tx.SetBlockhash(Blockhash{1, 2, 3})
	require.NoError(t, tx.Sign(keys[0]))

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx.Marshal(), rtt.Marshal())
	assert.NoError(t, rtt.VerifySignatures())
}

func TestTransaction_InvalidAccounts(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			nil,
			NewAccountMeta(public(keys[0]), true),
		),
	)
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, tx.Unmarshal(tx.Marshal()))
}

func TestMessage_UnmarshalInvalid(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(public(keys[1]), []byte{1, 2, 3}, NewAccountMeta(public(keys[0]), true)),
	)
	encoded := tx.Message.Marshal()

	var m Message
	require.NoError(t, m.Unmarshal(encoded))
	assert.Equal(t, tx.Message, m)

	for i := 0; i < len(encoded); i++ {
		assert.Error(t, m.Unmarshal(encoded[:i]), "truncated at %d", i)
	}

	versioned := append([]byte{0x80}, encoded...)
	assert.EqualError(t, m.Unmarshal(versioned), "versioned messages not supported")

	tx.Message.Instructions[0].Accounts = []byte{7}
	assert.Error(t, m.Unmarshal(tx.Message.Marshal()))
}

func TestTransaction_VerifySignatures(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, owner, other := keys[0], keys[1], keys[2], keys[3]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{1},
			NewAccountMeta(public(owner), true),
		),
	)

	require.NoError(t, tx.Sign(payer))
	assert.True(t, errors.Is(tx.VerifySignatures(), ErrMissingSignature))

	require.NoError(t, tx.Sign(owner))
	assert.NoError(t, tx.VerifySignatures())

	tx.Message.Instructions[0].Data = []byte{2}
	assert.True(t, errors.Is(tx.VerifySignatures(), ErrInvalidSignature))

	assert.Error(t, tx.Sign(other))
}

func TestMessage_Permissions(t *testing.T) {
	keys := generateKeys(t, 6)
	payer, program := keys[0], keys[1]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			nil,
			NewReadonlyAccountMeta(public(keys[2]), true),
			NewAccountMeta(public(keys[3]), true),
			NewAccountMeta(public(keys[4]), false),
			NewReadonlyAccountMeta(public(keys[5]), false),
		),
	)

	for i, account := range tx.Message.Accounts {
		switch {
		case bytes.Equal(account, public(payer)), bytes.Equal(account, public(keys[3])):
			assert.True(t, tx.Message.IsSigner(i))
			assert.True(t, tx.Message.IsWritable(i))
		case bytes.Equal(account, public(keys[2])):
			assert.True(t, tx.Message.IsSigner(i))
			assert.False(t, tx.Message.IsWritable(i))
		case bytes.Equal(account, public(keys[4])):
			assert.False(t, tx.Message.IsSigner(i))
			assert.True(t, tx.Message.IsWritable(i))
		default:
			assert.False(t, tx.Message.IsSigner(i))
			assert.False(t, tx.Message.IsWritable(i))
		}
	}
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
