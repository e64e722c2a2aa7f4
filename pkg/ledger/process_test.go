package ledger

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	prom_testutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data"
)

func TestSanitize(t *testing.T) {
	payer, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	newTxn := func() solana.Transaction {
		return solana.NewTransaction(payer, solana.NewInstruction(program, []byte{1}))
	}

	assert.NoError(t, sanitize(newTxn()))

	txn := newTxn()
	txn.Signatures = nil
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorSanitizeFailure)

	txn = newTxn()
	txn.Message.Header.NumReadonlySigned = txn.Message.Header.NumSignatures
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorSanitizeFailure)

	txn = newTxn()
	txn.Message.Header.NumReadOnly = 5
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorSanitizeFailure)

	txn = newTxn()
	txn.Message.Instructions[0].ProgramIndex = 0
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorSanitizeFailure)

	txn = newTxn()
	txn.Message.Instructions[0].Accounts = []byte{9}
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorSanitizeFailure)

	txn = newTxn()
	txn.Message.Accounts[1] = payer
	assertTransactionErrorKey(t, sanitize(txn), solana.TransactionErrorAccountLoadedTwice)
}

func TestToInstructionError(t *testing.T) {
	err := toInstructionError(2, errors.Wrap(solana.CustomError(0x1770), "wrapped"))
	assert.Equal(t, 2, err.Index)
	assert.Equal(t, solana.CustomError(0x1770), err.Err)

	err = toInstructionError(0, solana.InstructionErrorMissingRequiredSignature)
	assert.Equal(t, solana.InstructionErrorMissingRequiredSignature, err.Err)

	err = toInstructionError(1, errors.New("unexpected"))
	assert.Equal(t, solana.InstructionErrorGenericError, err.Err)
}

func TestBank_RecordsInstructionFailures(t *testing.T) {
	ctx := context.Background()

	bank, err := NewBank(ctx, WithOverrides(&Overrides{FaucetSeed: "process-test"}), data.NewTestDataProvider())
	require.NoError(t, err)

	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	bank.RegisterProgram(program, ProgramFunc(func(ctx *InvokeContext) error {
		return solana.CustomError(7)
	}))

	counter := instructionFailuresCounter.WithLabelValues(base58.Encode(program), string(solana.InstructionErrorCustom))
	processed := transactionsProcessedCounter.WithLabelValues("failure")
	before := prom_testutil.ToFloat64(processed)

	txn := solana.NewTransaction(bank.FaucetKey(), solana.NewInstruction(program, nil))
	txn.SetBlockhash(bank.GetLatestBlockhash())
	require.NoError(t, txn.Sign(bank.faucet))

	assertTransactionErrorKey(t, bank.ProcessTransaction(ctx, txn), solana.TransactionErrorInstructionError)
	assert.EqualValues(t, 1, prom_testutil.ToFloat64(counter))
	assert.EqualValues(t, before+1, prom_testutil.ToFloat64(processed))
}

func assertTransactionErrorKey(t *testing.T, err error, key solana.TransactionErrorKey) {
	require.Error(t, err)
	txnErr, ok := err.(*solana.TransactionError)
	require.True(t, ok)
	assert.Equal(t, key, txnErr.ErrorKey())
}
