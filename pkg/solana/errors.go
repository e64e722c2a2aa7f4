package solana

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// TransactionErrorKey names a transaction level failure, using the runtime's
// names so recorded results read the same as those of a real cluster.
type TransactionErrorKey string

const (
	TransactionErrorInternal                TransactionErrorKey = "Internal"
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountLoadedTwice      TransactionErrorKey = "AccountLoadedTwice"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorProgramAccountNotFound  TransactionErrorKey = "ProgramAccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
	TransactionErrorMissingSignatureForFee  TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorInvalidAccountIndex     TransactionErrorKey = "InvalidAccountIndex"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure         TransactionErrorKey = "SanitizeFailure"
	TransactionErrorInvalidWritableAccount  TransactionErrorKey = "InvalidWritableAccount"
)

// InstructionErrorKey names a failure of a single instruction. Keys are errors
// themselves so programs can return them directly.
type InstructionErrorKey string

const (
	InstructionErrorGenericError                InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument             InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData      InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData          InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall         InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds           InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID          InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature    InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized   InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount        InstructionErrorKey = "UninitializedAccount"
	InstructionErrorUnbalancedInstruction       InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorModifiedProgramID           InstructionErrorKey = "ModifiedProgramId"
	InstructionErrorExternalAccountLamportSpend InstructionErrorKey = "ExternalAccountLamportSpend"
	InstructionErrorExternalAccountDataModified InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorReadonlyLamportChange       InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorReadonlyDataModified        InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorExecutableModified          InstructionErrorKey = "ExecutableModified"
	InstructionErrorNotEnoughAccountKeys        InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                      InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID        InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorCallDepth                   InstructionErrorKey = "CallDepth"
	InstructionErrorMissingAccount              InstructionErrorKey = "MissingAccount"
	InstructionErrorReentrancyNotAllowed        InstructionErrorKey = "ReentrancyNotAllowed"
	InstructionErrorMaxSeedLengthExceeded       InstructionErrorKey = "MaxSeedLengthExceeded"
	InstructionErrorInvalidSeeds                InstructionErrorKey = "InvalidSeeds"
	InstructionErrorPrivilegeEscalation         InstructionErrorKey = "PrivilegeEscalation"
)

func (k InstructionErrorKey) Error() string {
	return string(k)
}

// CustomError is the numeric error code of a program specific failure.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError is the failure of the instruction at Index. Err is either
// an InstructionErrorKey or a CustomError.
type InstructionError struct {
	Index int
	Err   error
}

func NewInstructionError(index int, err error) *InstructionError {
	return &InstructionError{
		Index: index,
		Err:   err,
	}
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	switch err := i.Err.(type) {
	case nil:
		return ""
	case CustomError:
		return InstructionErrorCustom
	case InstructionErrorKey:
		return err
	default:
		return InstructionErrorKey(err.Error())
	}
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

// MarshalJSON encodes the error as the runtime's [index, reason] tuple, where
// the reason is the key or {"Custom": code}.
func (i InstructionError) MarshalJSON() ([]byte, error) {
	var reason interface{} = string(i.ErrorKey())
	if ce := i.CustomError(); ce != nil {
		reason = map[string]int{string(InstructionErrorCustom): int(*ce)}
	}
	return json.Marshal([]interface{}{i.Index, reason})
}

func (i *InstructionError) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return errors.Wrap(err, "unexpected instruction error format")
	}
	if len(tuple) != 2 {
		return errors.Errorf("invalid InstructionError tuple size: %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &i.Index); err != nil {
		return errors.Wrap(err, "non numeric index in InstructionError tuple")
	}

	var key string
	if err := json.Unmarshal(tuple[1], &key); err == nil {
		i.Err = InstructionErrorKey(key)
		return nil
	}

	var custom map[string]int
	if err := json.Unmarshal(tuple[1], &custom); err != nil {
		return errors.Wrap(err, "unexpected instruction error reason")
	}
	code, ok := custom[string(InstructionErrorCustom)]
	if !ok || len(custom) != 1 {
		return errors.New("unhandled InstructionError reason")
	}
	i.Err = CustomError(code)
	return nil
}

// TransactionError is the result of a failed transaction. Instruction
// failures carry the InstructionError that caused them.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
}

// NewTransactionError returns a transaction level error that isn't attributed
// to a specific instruction.
func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key}
}

// TransactionErrorFromInstructionError wraps an instruction failure.
func TransactionErrorFromInstructionError(err *InstructionError) (*TransactionError, error) {
	if err == nil || err.Err == nil {
		return nil, errors.New("instruction error is required")
	}

	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: err,
	}, nil
}

// ParseTransactionError decodes a result recorded by JSONString.
func ParseTransactionError(encoded string) (*TransactionError, error) {
	var t TransactionError
	if err := json.Unmarshal([]byte(encoded), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// MarshalJSON encodes the error as "Key", or {"InstructionError": [...]} for
// instruction failures.
func (t TransactionError) MarshalJSON() ([]byte, error) {
	if t.instructionError != nil {
		return json.Marshal(map[string]*InstructionError{
			string(TransactionErrorInstructionError): t.instructionError,
		})
	}
	return json.Marshal(string(t.key))
}

func (t *TransactionError) UnmarshalJSON(b []byte) error {
	var key string
	if err := json.Unmarshal(b, &key); err == nil {
		*t = TransactionError{key: TransactionErrorKey(key)}
		return nil
	}

	var wrapped map[string]*InstructionError
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return errors.Wrap(err, "unhandled transaction error")
	}

	instructionErr, ok := wrapped[string(TransactionErrorInstructionError)]
	if !ok || len(wrapped) != 1 || instructionErr == nil {
		return errors.Errorf("invalid transaction error: %s", b)
	}

	*t = TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: instructionErr,
	}
	return nil
}

func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t)
	return string(b), err
}
