package native

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
)

func processSystem(ctx *ledger.InvokeContext) error {
	ix := ctx.Instruction()

	cmd, err := system.GetCommand(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	switch cmd {
	case system.CommandCreateAccount:
		return processCreateAccount(ctx, ix)
	case system.CommandAssign:
		return processAssign(ctx, ix)
	case system.CommandTransfer:
		return processTransfer(ctx, ix)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func processCreateAccount(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := system.DecompileCreateAccount(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	funder, address := ctx.Accounts()[0], ctx.Accounts()[1]
	if err := requireSigner(funder); err != nil {
		return err
	}
	if err := requireSigner(address); err != nil {
		return err
	}

	if address.Lamports > 0 || len(address.Data) > 0 || !address.IsOwnedBy(system.ProgramKey[:]) {
		ctx.Log("Create Account: account %s already in use", base58.Encode(address.Address))
		return system.ErrorAccountAlreadyInUse
	}
	if decompiled.Size > maxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}
	if err := debit(ctx, funder, decompiled.Lamports); err != nil {
		return err
	}

	address.Lamports = decompiled.Lamports
	address.Data = make([]byte, decompiled.Size)
	address.Owner = append(ed25519.PublicKey(nil), decompiled.Owner...)
	return nil
}

func processAssign(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := system.DecompileAssign(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	address := ctx.Accounts()[0]
	if address.IsOwnedBy(decompiled.Owner) {
		return nil
	}
	if err := requireSigner(address); err != nil {
		return err
	}

	address.Owner = decompiled.Owner
	return nil
}

func processTransfer(ctx *ledger.InvokeContext, ix solana.Instruction) error {
	decompiled, err := system.DecompileTransfer(ix)
	if err != nil {
		return invalidInstruction(err)
	}

	from, to := ctx.Accounts()[0], ctx.Accounts()[1]
	if err := requireSigner(from); err != nil {
		return err
	}
	if err := debit(ctx, from, decompiled.Lamports); err != nil {
		return err
	}

	if to.Lamports+decompiled.Lamports < to.Lamports {
		return solana.InstructionErrorInvalidArgument
	}
	to.Lamports += decompiled.Lamports
	return nil
}

// debit removes lamports from a system account that carries no data.
func debit(ctx *ledger.InvokeContext, from *ledger.AccountInfo, lamports uint64) error {
	if len(from.Data) > 0 {
		ctx.Log("Transfer: `from` must not carry data")
		return solana.InstructionErrorInvalidArgument
	}
	if from.Lamports < lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return system.ErrorResultWithNegativeLamports
	}

	from.Lamports -= lamports
	return nil
}
