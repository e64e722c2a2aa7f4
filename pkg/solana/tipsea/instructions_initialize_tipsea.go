package tipsea

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var initializeTipseaInstructionDiscriminator = []byte{
	32, 197, 156, 142, 181, 117, 219, 142,
}

const (
	InitializeTipseaInstructionArgsSize = 0

	InitializeTipseaInstructionAccountsSize = 8
)

type InitializeTipseaInstructionArgs struct {
}

type InitializeTipseaInstructionAccounts struct {
	Initializer ed25519.PublicKey
	Fund        ed25519.PublicKey
	Vault       ed25519.PublicKey
	Mint        ed25519.PublicKey
}

func NewInitializeTipseaInstruction(
	accounts *InitializeTipseaInstructionAccounts,
	args *InitializeTipseaInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(initializeTipseaInstructionDiscriminator)+
			InitializeTipseaInstructionArgsSize)

	putDiscriminator(data, initializeTipseaInstructionDiscriminator, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Initializer,
				IsWritable: true,
				IsSigner:   true,
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
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func InitializeTipseaInstructionFromInstruction(i solana.Instruction) (*InitializeTipseaInstructionArgs, *InitializeTipseaInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, nil, ErrInvalidProgram
	}

	if len(i.Data) != len(initializeTipseaInstructionDiscriminator)+InitializeTipseaInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(i.Data, &discriminator, &offset)
	if !bytes.Equal(discriminator, initializeTipseaInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	if len(i.Accounts) < InitializeTipseaInstructionAccountsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	var args InitializeTipseaInstructionArgs
	var accounts InitializeTipseaInstructionAccounts

	// Instruction Accounts
	accounts.Initializer = i.Accounts[0].PublicKey
	accounts.Fund = i.Accounts[1].PublicKey
	accounts.Vault = i.Accounts[2].PublicKey
	accounts.Mint = i.Accounts[3].PublicKey

	return &args, &accounts, nil
}
