package solana

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionError_Encoding(t *testing.T) {
	custom, err := TransactionErrorFromInstructionError(NewInstructionError(2, CustomError(3)))
	require.NoError(t, err)
	keyed, err := TransactionErrorFromInstructionError(NewInstructionError(1, InstructionErrorMissingRequiredSignature))
	require.NoError(t, err)

	for _, tc := range []struct {
		err     *TransactionError
		encoded string
	}{
		{NewTransactionError(TransactionErrorDuplicateSignature), `"DuplicateSignature"`},
		{custom, `{"InstructionError":[2,{"Custom":3}]}`},
		{keyed, `{"InstructionError":[1,"MissingRequiredSignature"]}`},
	} {
		encoded, err := tc.err.JSONString()
		require.NoError(t, err)
		assert.Equal(t, tc.encoded, encoded)

		decoded, err := ParseTransactionError(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.err.ErrorKey(), decoded.ErrorKey())
		assert.Equal(t, tc.err.Error(), decoded.Error())
		assert.Equal(t, tc.err.InstructionError(), decoded.InstructionError())
	}
}

func TestTransactionError_InstructionDetails(t *testing.T) {
	e, err := ParseTransactionError(`{"InstructionError":[2,{"Custom":3}]}`)
	require.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())
	assert.Equal(t, "Error processing Instruction 2: custom program error: 3", e.Error())

	e, err = ParseTransactionError(`{"InstructionError":[0,"InvalidArgument"]}`)
	require.NoError(t, err)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().Err)
	assert.Nil(t, e.InstructionError().CustomError())

	e, err = ParseTransactionError(`"AccountInUse"`)
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorAccountInUse, e.ErrorKey())
	assert.Nil(t, e.InstructionError())
}

func TestTransactionError_Invalid(t *testing.T) {
	for _, encoded := range []string{
		`12`,
		`{"InstructionError":[1]}`,
		`{"InstructionError":["a","InvalidArgument"]}`,
		`{"InstructionError":[1,{"Other":3}]}`,
		`{"InstructionError":[1,"InvalidArgument"],"Other":1}`,
	} {
		_, err := ParseTransactionError(encoded)
		assert.Error(t, err, encoded)
	}

	_, err := TransactionErrorFromInstructionError(NewInstructionError(0, nil))
	assert.Error(t, err)
}

func TestTransactionError_EmbeddedInJSON(t *testing.T) {
	e := NewTransactionError(TransactionErrorBlockhashNotFound)

	b, err := json.Marshal(struct {
		Err *TransactionError `json:"err"`
	}{e})
	require.NoError(t, err)
	assert.JSONEq(t, `{"err":"BlockhashNotFound"}`, string(b))
}
