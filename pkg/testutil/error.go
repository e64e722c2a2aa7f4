package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

// AssertTransactionError verifies that the provided error is a transaction
// error with the provided key.
func AssertTransactionError(t *testing.T, err error, key solana.TransactionErrorKey) {
	require.Error(t, err)
	txnErr, ok := err.(*solana.TransactionError)
	require.True(t, ok, "unexpected error type: %T (%v)", err, err)
	assert.Equal(t, key, txnErr.ErrorKey())
}

// AssertInstructionError verifies that the provided error is a failure of the
// instruction at the provided index with the expected program error.
func AssertInstructionError(t *testing.T, err error, index int, expected error) {
	AssertTransactionError(t, err, solana.TransactionErrorInstructionError)

	instructionErr := err.(*solana.TransactionError).InstructionError()
	require.NotNil(t, instructionErr)
	assert.Equal(t, index, instructionErr.Index)
	assert.Equal(t, expected, instructionErr.Err, "got %v", instructionErr.Err)
}
