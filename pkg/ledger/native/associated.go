package native

import (
	"bytes"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

func processAssociatedTokenAccount(ctx *ledger.InvokeContext) error {
	decompiled, err := token.DecompileCreateAssociatedAccount(ctx.Instruction())
	if err != nil {
		return invalidInstruction(err)
	}

	address, bump, err := token.GetAssociatedAccountAndBump(decompiled.Owner, decompiled.Mint)
	if err != nil {
		return solana.InstructionErrorInvalidSeeds
	}
	if !bytes.Equal(address, decompiled.Address) {
		ctx.Log("Error: associated address does not match seed derivation")
		return solana.InstructionErrorInvalidSeeds
	}

	info := ctx.Accounts()[1]
	if decompiled.Idempotent && info.IsOwnedBy(token.ProgramKey) {
		existing, err := loadTokenAccount(info)
		if err != nil {
			return err
		}
		if !bytes.Equal(existing.Owner, decompiled.Owner) {
			return token.ErrorOwnerMismatch
		}
		if !bytes.Equal(existing.Mint, decompiled.Mint) {
			return token.ErrorMintMismatch
		}
		return nil
	}

	ctx.Log("Create")

	seeds := [][]byte{decompiled.Owner, token.ProgramKey, decompiled.Mint, {bump}}
	err = ctx.Invoke(
		system.CreateAccount(
			decompiled.Subsidizer,
			decompiled.Address,
			token.ProgramKey,
			system.RentExemptBalance(token.AccountSize),
			token.AccountSize,
		),
		seeds,
	)
	if err != nil {
		return err
	}

	return ctx.Invoke(token.InitializeAccount(decompiled.Address, decompiled.Mint, decompiled.Owner))
}
