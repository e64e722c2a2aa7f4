// Package native provides the built-in programs a ledger.Bank needs to run
// token issuance: system, SPL token, associated token account, token metadata
// and memo.
package native

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/memo"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
)

// maxPermittedDataLength is the largest account the system program will
// allocate.
const maxPermittedDataLength = 10 * 1024 * 1024

// Register makes every native program available on the registry.
func Register(registry ledger.ProgramRegistry) {
	registry.RegisterProgram(system.ProgramKey[:], ledger.ProgramFunc(processSystem))
	registry.RegisterProgram(token.ProgramKey, ledger.ProgramFunc(processToken))
	registry.RegisterProgram(token.AssociatedTokenAccountProgramKey, ledger.ProgramFunc(processAssociatedTokenAccount))
	registry.RegisterProgram(tokenmetadata.PROGRAM_ID, ledger.ProgramFunc(processTokenMetadata))
	registry.RegisterProgram(memo.ProgramKey, ledger.ProgramFunc(processMemo))

	logrus.StandardLogger().WithField("type", "ledger/native").Debug("registered native programs")
}

// invalidInstruction maps a decompilation failure to the error reported to
// the caller, keeping the cause for logs.
func invalidInstruction(err error) error {
	return errors.Wrap(solana.InstructionErrorInvalidInstructionData, err.Error())
}

func requireSigner(info *ledger.AccountInfo) error {
	if !info.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	return nil
}

func processMemo(ctx *ledger.InvokeContext) error {
	decompiled, err := memo.DecompileMemo(ctx.Instruction())
	if err != nil {
		return invalidInstruction(err)
	}

	for _, info := range ctx.Accounts() {
		if err := requireSigner(info); err != nil {
			return err
		}
	}

	ctx.Log("Memo (len %d): %q", len(decompiled.Data), string(decompiled.Data))
	return nil
}
