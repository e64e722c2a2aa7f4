package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

type CreateMasterEditionInstructionArgs struct {
	MaxSupply *uint64 // optional
}

type CreateMasterEditionInstructionAccounts struct {
	Edition         ed25519.PublicKey
	Mint            ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	Metadata        ed25519.PublicKey
}

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/instruction/edition.rs
func NewCreateMasterEditionInstruction(
	accounts *CreateMasterEditionInstructionAccounts,
	args *CreateMasterEditionInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	size := 1 + 1
	if args.MaxSupply != nil {
		size += 8
	}
	data := make([]byte, size)

	putInstructionType(data, InstructionTypeCreateMasterEditionV3, &offset)
	putOptionalUint64(data, args.MaxSupply, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Edition,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
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

func CreateMasterEditionInstructionFromInstruction(i solana.Instruction) (*CreateMasterEditionInstructionArgs, *CreateMasterEditionInstructionAccounts, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(i.Data) < 2 || InstructionType(i.Data[0]) != InstructionTypeCreateMasterEditionV3 {
		return nil, nil, ErrInvalidInstructionData
	}
	if i.Data[1] == 0 && len(i.Data) != 2 {
		return nil, nil, ErrInvalidInstructionData
	}
	if i.Data[1] == 1 && len(i.Data) != 10 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) < 8 {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := 1

	var args CreateMasterEditionInstructionArgs
	getOptionalUint64(i.Data, &args.MaxSupply, &offset)

	accounts := &CreateMasterEditionInstructionAccounts{
		Edition:         i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		UpdateAuthority: i.Accounts[2].PublicKey,
		MintAuthority:   i.Accounts[3].PublicKey,
		Payer:           i.Accounts[4].PublicKey,
		Metadata:        i.Accounts[5].PublicKey,
	}

	return &args, accounts, nil
}
