package client_test

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/memo"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/testutil"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/client"
)

type scriptedLedger struct {
	sync.Mutex

	results   []error
	processed []solana.Transaction
}

func (l *scriptedLedger) GetLatestBlockhash() solana.Blockhash {
	return solana.Blockhash{1}
}

func (l *scriptedLedger) GetAccount(_ context.Context, _ ed25519.PublicKey) (*ledger.Account, error) {
	return nil, ledger.ErrAccountNotFound
}

func (l *scriptedLedger) ProcessTransaction(_ context.Context, txn solana.Transaction) error {
	l.Lock()
	defer l.Unlock()

	l.processed = append(l.processed, txn)
	if len(l.results) == 0 {
		return nil
	}

	err := l.results[0]
	l.results = l.results[1:]
	return err
}

func (l *scriptedLedger) Airdrop(_ context.Context, _ ed25519.PublicKey, _ uint64) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func newTestClient(t *testing.T, l client.Ledger) *client.Client {
	c, err := client.New(
		context.Background(),
		client.WithOverrides(&client.Overrides{
			MaxSubmitAttempts: 3,
			MinRetryDelay:     time.Millisecond,
			MaxRetryDelay:     time.Millisecond,
			AddressCacheSize:  8,
		}),
		l,
	)
	require.NoError(t, err)
	return c
}

func TestSubmit_RetriesAccountInUse(t *testing.T) {
	l := &scriptedLedger{
		results: []error{
			solana.NewTransactionError(solana.TransactionErrorAccountInUse),
			solana.NewTransactionError(solana.TransactionErrorAccountInUse),
		},
	}
	c := newTestClient(t, l)

	signer := testutil.GenerateSolanaKeypair(t)
	sig, err := c.Submit(context.Background(), []ed25519.PrivateKey{signer}, memo.Instruction("retry"))
	require.NoError(t, err)
	require.Len(t, l.processed, 3)
	assert.EqualValues(t, l.processed[2].Signature(), sig[:])
	assert.NoError(t, l.processed[2].VerifySignatures())
}

func TestSubmit_GivesUpAfterMaxAttempts(t *testing.T) {
	inUse := solana.NewTransactionError(solana.TransactionErrorAccountInUse)
	l := &scriptedLedger{
		results: []error{inUse, inUse, inUse, inUse},
	}
	c := newTestClient(t, l)

	_, err := c.Submit(context.Background(), []ed25519.PrivateKey{testutil.GenerateSolanaKeypair(t)}, memo.Instruction("retry"))
	testutil.AssertTransactionError(t, err, solana.TransactionErrorAccountInUse)
	assert.Len(t, l.processed, 3)
}

func TestSubmit_ProgramErrorsAreFinal(t *testing.T) {
	txnErr, err := solana.TransactionErrorFromInstructionError(solana.NewInstructionError(0, tipsea.ErrorFundMismatch))
	require.NoError(t, err)

	l := &scriptedLedger{
		results: []error{txnErr},
	}
	c := newTestClient(t, l)

	_, err = c.Submit(context.Background(), []ed25519.PrivateKey{testutil.GenerateSolanaKeypair(t)}, memo.Instruction("once"))
	testutil.AssertInstructionError(t, err, 0, tipsea.ErrorFundMismatch)
	assert.Len(t, l.processed, 1)
}

func TestSubmit_NoSigners(t *testing.T) {
	c := newTestClient(t, &scriptedLedger{})

	_, err := c.Submit(context.Background(), nil, memo.Instruction("none"))
	assert.Equal(t, client.ErrNoSigners, err)
}

func TestAddresses(t *testing.T) {
	c := newTestClient(t, &scriptedLedger{})

	keys := testutil.GenerateSolanaKeys(t, 3)
	mint, owner, claimMint := keys[0], keys[1], keys[2]

	fund, bump, err := c.FundAddress(mint)
	require.NoError(t, err)
	expectedFund, expectedBump, err := tipsea.GetFundAddress(&tipsea.GetFundAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.EqualValues(t, expectedFund, fund)
	assert.Equal(t, expectedBump, bump)

	// Cached lookups return the same derivation
	fund, bump, err = c.FundAddress(mint)
	require.NoError(t, err)
	assert.EqualValues(t, expectedFund, fund)
	assert.Equal(t, expectedBump, bump)

	vault, err := c.VaultAddress(mint)
	require.NoError(t, err)
	expectedVault, err := token.GetAssociatedAccount(fund, mint)
	require.NoError(t, err)
	assert.EqualValues(t, expectedVault, vault)

	tip, err := c.TipAddress(claimMint)
	require.NoError(t, err)
	expectedTip, _, err := tipsea.GetTipAddress(&tipsea.GetTipAddressArgs{ClaimMint: claimMint})
	require.NoError(t, err)
	assert.EqualValues(t, expectedTip, tip)

	ata, err := c.AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	expectedAta, err := token.GetAssociatedAccount(owner, mint)
	require.NoError(t, err)
	assert.EqualValues(t, expectedAta, ata)

	// Distinct inputs never collide in the cache
	otherAta, err := c.AssociatedTokenAddress(mint, owner)
	require.NoError(t, err)
	assert.NotEqualValues(t, ata, otherAta)
}

func TestQueries_MissingAccounts(t *testing.T) {
	c := newTestClient(t, &scriptedLedger{})
	ctx := context.Background()

	key := testutil.GenerateSolanaKeys(t, 1)[0]

	_, err := c.GetFund(ctx, key)
	assert.Equal(t, client.ErrFundNotFound, err)

	_, err = c.GetTip(ctx, key)
	assert.Equal(t, client.ErrTipNotFound, err)

	_, err = c.GetMint(ctx, key)
	assert.Equal(t, client.ErrMintNotFound, err)

	_, err = c.GetFundBalance(ctx, key)
	assert.Equal(t, client.ErrFundNotFound, err)

	balance, err := c.GetTokenBalance(ctx, key, key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, balance)

	lamports, err := c.GetLamports(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, lamports)
}

func TestFormatAmount(t *testing.T) {
	for _, tc := range []struct {
		amount   uint64
		decimals byte
		expected string
	}{
		{0, 0, "0"},
		{1, 0, "1"},
		{100, 2, "1.00"},
		{123_456_789, 6, "123.456789"},
		{5, 6, "0.000005"},
		{18_446_744_073_709_551_615, 9, "18446744073.709551615"},
	} {
		assert.Equal(t, tc.expected, client.FormatAmount(tc.amount, tc.decimals))
	}
}
