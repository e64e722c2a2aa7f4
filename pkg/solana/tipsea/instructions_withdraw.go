package tipsea

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var withdrawInstructionDiscriminator = []byte{
	183, 18, 70, 156, 148, 109, 161, 34,
}

const (
	WithdrawInstructionArgsSize = (1 + // fund_bump
		8) // amount

	WithdrawInstructionAccountsSize = 5
)

type WithdrawInstructionArgs struct {
	FundBump uint8
	Amount   uint64
}

type WithdrawInstructionAccounts struct {
	Authority ed25519.PublicKey
	To        ed25519.PublicKey
	Fund      ed25519.PublicKey
	Vault     ed25519.PublicKey
}

func NewWithdrawInstruction(
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(withdrawInstructionDiscriminator)+
			WithdrawInstructionArgsSize)

	putDiscriminator(data, withdrawInstructionDiscriminator, &offset)
	putUint8(data, args.FundBump, &offset)
	putUint64(data, args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.To,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Fund,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func WithdrawInstructionFromInstruction(i solana.Instruction) (*WithdrawInstructionArgs, *WithdrawInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, nil, ErrInvalidProgram
	}

	if len(i.Data) != len(withdrawInstructionDiscriminator)+WithdrawInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(i.Data, &discriminator, &offset)
	if !bytes.Equal(discriminator, withdrawInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	if len(i.Accounts) < WithdrawInstructionAccountsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	var args WithdrawInstructionArgs
	var accounts WithdrawInstructionAccounts

	// Instruction Args
	getUint8(i.Data, &args.FundBump, &offset)
	getUint64(i.Data, &args.Amount, &offset)

	// Instruction Accounts
	accounts.Authority = i.Accounts[0].PublicKey
	accounts.To = i.Accounts[1].PublicKey
	accounts.Fund = i.Accounts[2].PublicKey
	accounts.Vault = i.Accounts[3].PublicKey

	return &args, &accounts, nil
}
