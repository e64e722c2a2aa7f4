package testutil

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/ledger/native"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/program"
)

// NewTestBank returns a bank over in memory stores serving the native
// programs and the tipsea program.
func NewTestBank(t *testing.T, overrides *program.Overrides) *ledger.Bank {
	bank, err := ledger.NewBank(context.Background(), ledger.WithOverrides(&ledger.Overrides{}), data.NewTestDataProvider())
	require.NoError(t, err)

	if overrides == nil {
		overrides = &program.Overrides{}
	}

	native.Register(bank)
	program.New(program.WithOverrides(overrides)).Register(bank)

	return bank
}

// NewFundedKeypair returns a new keypair holding the provided lamports.
func NewFundedKeypair(t *testing.T, bank *ledger.Bank, lamports uint64) ed25519.PrivateKey {
	key := GenerateSolanaKeypair(t)
	_, err := bank.Airdrop(context.Background(), key.Public().(ed25519.PublicKey), lamports)
	require.NoError(t, err)
	return key
}
