package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

const (
	// MaxInvokeDepth is the deepest chain of cross-program invocations allowed
	// below a top level instruction.
	MaxInvokeDepth = 4
)

// InvokeContext is the view a program has of a single invocation: the
// instruction data, the accounts passed to it and the means to invoke other
// programs.
type InvokeContext struct {
	ctx  context.Context
	log  *logrus.Entry
	bank *Bank
	slot uint64

	program  ed25519.PublicKey
	data     []byte
	accounts []*AccountInfo

	pre   map[string]Account
	stack []ed25519.PublicKey
}

func newInvokeContext(ctx context.Context, log *logrus.Entry, bank *Bank, slot uint64, program ed25519.PublicKey, data []byte, accounts []*AccountInfo, stack []ed25519.PublicKey) *InvokeContext {
	invokeCtx := &InvokeContext{
		ctx:  ctx,
		log:  log.WithField("program", base58.Encode(program)),
		bank: bank,
		slot: slot,

		program:  program,
		data:     data,
		accounts: accounts,

		stack: append(append([]ed25519.PublicKey(nil), stack...), program),
	}
	invokeCtx.snapshot()
	return invokeCtx
}

// Context returns the context of the transaction being processed.
func (c *InvokeContext) Context() context.Context {
	return c.ctx
}

// Program returns the id of the executing program.
func (c *InvokeContext) Program() ed25519.PublicKey {
	return c.program
}

// Data returns the instruction data.
func (c *InvokeContext) Data() []byte {
	return c.data
}

// Accounts returns the accounts passed to the instruction, in order.
func (c *InvokeContext) Accounts() []*AccountInfo {
	return c.accounts
}

// Instruction returns the instruction being executed, with the privileges each
// account was passed with.
func (c *InvokeContext) Instruction() solana.Instruction {
	metas := make([]solana.AccountMeta, len(c.accounts))
	for i, info := range c.accounts {
		metas[i] = solana.AccountMeta{
			PublicKey:  info.Address,
			IsSigner:   info.IsSigner,
			IsWritable: info.IsWritable,
		}
	}

	return solana.Instruction{
		Program:  c.program,
		Data:     c.data,
		Accounts: metas,
	}
}

// Account returns the account at the provided instruction index.
func (c *InvokeContext) Account(index int) (*AccountInfo, error) {
	if index < 0 || index >= len(c.accounts) {
		return nil, solana.InstructionErrorNotEnoughAccountKeys
	}
	return c.accounts[index], nil
}

// Slot returns the slot the transaction executes in.
func (c *InvokeContext) Slot() uint64 {
	return c.slot
}

// Depth returns how many cross-program invocations deep the executing program is.
func (c *InvokeContext) Depth() int {
	return len(c.stack) - 1
}

// Log emits a program log line.
func (c *InvokeContext) Log(format string, args ...interface{}) {
	c.log.WithField("depth", c.Depth()).Debugf("Program log: %s", fmt.Sprintf(format, args...))
}

// Invoke executes an instruction against another program using the accounts
// already passed to the executing program. Privileges can only be passed
// down: an account may be writable only if it is writable here, and a signer
// only if it signed here or it is an address the executing program derives
// from one of the signer seed sets.
func (c *InvokeContext) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if c.Depth() >= MaxInvokeDepth {
		return solana.InstructionErrorCallDepth
	}

	program, ok := c.bank.getProgram(ix.Program)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}
	if c.find(ix.Program) == nil {
		return solana.InstructionErrorMissingAccount
	}

	for i, caller := range c.stack {
		if !bytes.Equal(caller, ix.Program) {
			continue
		}

		// Only direct self recursion is permitted.
		if i != len(c.stack)-1 {
			return solana.InstructionErrorReentrancyNotAllowed
		}
	}

	var signers []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		signer, err := solana.CreateProgramAddress(c.program, seeds...)
		switch err {
		case nil:
		case solana.ErrMaxSeedLengthExceeded:
			return solana.InstructionErrorMaxSeedLengthExceeded
		default:
			return solana.InstructionErrorInvalidSeeds
		}

		signers = append(signers, signer)
	}

	accounts := make([]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		info := c.find(meta.PublicKey)
		if info == nil {
			c.Log("account %s missing from invocation of %s", base58.Encode(meta.PublicKey), base58.Encode(ix.Program))
			return solana.InstructionErrorMissingAccount
		}

		if meta.IsWritable && !info.IsWritable {
			c.Log("%s writable privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}

		if meta.IsSigner && !info.IsSigner && !containsKey(signers, meta.PublicKey) {
			c.Log("%s signer privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}

		accounts[i] = &AccountInfo{
			Account:    info.Account,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
	}

	if err := c.verify(); err != nil {
		return err
	}

	callee := newInvokeContext(c.ctx, c.log, c.bank, c.slot, ix.Program, ix.Data, accounts, c.stack)
	if err := program.Process(callee); err != nil {
		return err
	}
	if err := callee.verify(); err != nil {
		return err
	}

	// Changes made by the callee are attributed to the callee.
	c.snapshot()

	return nil
}

func (c *InvokeContext) find(address ed25519.PublicKey) *AccountInfo {
	var found *AccountInfo
	for _, info := range c.accounts {
		if !bytes.Equal(info.Address, address) {
			continue
		}

		if found == nil {
			found = &AccountInfo{Account: info.Account}
		}
		found.IsSigner = found.IsSigner || info.IsSigner
		found.IsWritable = found.IsWritable || info.IsWritable
	}
	return found
}

func (c *InvokeContext) snapshot() {
	c.pre = make(map[string]Account, len(c.accounts))
	for _, info := range c.accounts {
		c.pre[string(info.Address)] = info.Clone()
	}
}

// verify checks the executing program only made the account changes its
// privileges allow since the last snapshot.
func (c *InvokeContext) verify() error {
	var preTotal, postTotal uint64

	seen := make(map[string]struct{}, len(c.accounts))
	for _, info := range c.accounts {
		key := string(info.Address)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		writable := c.find(info.Address).IsWritable
		pre := c.pre[key]
		post := info.Account

		if pre.Executable != post.Executable || (pre.Executable && !pre.equals(post)) {
			return solana.InstructionErrorExecutableModified
		}

		if !bytes.Equal(pre.Owner, post.Owner) {
			if !writable || !pre.IsOwnedBy(c.program) || !isZeroed(post.Data) {
				return solana.InstructionErrorModifiedProgramID
			}
		}

		if pre.Lamports != post.Lamports {
			if !writable {
				return solana.InstructionErrorReadonlyLamportChange
			}
			if post.Lamports < pre.Lamports && !pre.IsOwnedBy(c.program) {
				return solana.InstructionErrorExternalAccountLamportSpend
			}
		}

		if !bytes.Equal(pre.Data, post.Data) {
			if !writable {
				return solana.InstructionErrorReadonlyDataModified
			}
			if !pre.IsOwnedBy(c.program) {
				return solana.InstructionErrorExternalAccountDataModified
			}
		}

		preTotal += pre.Lamports
		postTotal += post.Lamports
	}

	if preTotal != postTotal {
		return solana.InstructionErrorUnbalancedInstruction
	}

	return nil
}

// toInstructionError normalizes a program failure into the error reported for
// the instruction at the provided index.
func toInstructionError(index int, err error) *solana.InstructionError {
	switch cause := errors.Cause(err).(type) {
	case solana.CustomError:
		return solana.NewInstructionError(index, cause)
	case solana.InstructionErrorKey:
		return solana.NewInstructionError(index, cause)
	default:
		return solana.NewInstructionError(index, solana.InstructionErrorGenericError)
	}
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
