package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

type CreateMetadataAccountInstructionArgs struct {
	Data      Data
	IsMutable bool
}

type CreateMetadataAccountInstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/instruction/metadata.rs
func NewCreateMetadataAccountInstruction(
	accounts *CreateMetadataAccountInstructionAccounts,
	args *CreateMetadataAccountInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		1+ // instruction type
			dataSize(&args.Data)+
			2+ // collection, uses
			1+ // is_mutable
			1) // collection_details

	putInstructionType(data, InstructionTypeCreateMetadataAccountV3, &offset)
	putData(data, &args.Data, &offset)
	putUint8(data, 0, &offset) // collection
	putUint8(data, 0, &offset) // uses
	putBool(data, args.IsMutable, &offset)
	putUint8(data, 0, &offset) // collection_details

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
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
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
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

func CreateMetadataAccountInstructionFromInstruction(i solana.Instruction) (*CreateMetadataAccountInstructionArgs, *CreateMetadataAccountInstructionAccounts, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(i.Data) == 0 || InstructionType(i.Data[0]) != InstructionTypeCreateMetadataAccountV3 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) < 6 {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := 1

	var args CreateMetadataAccountInstructionArgs
	if err := getData(i.Data, &args.Data, &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}

	// Collections, uses and collection details are not supported, so each
	// option must be absent.
	if len(i.Data) != offset+4 {
		return nil, nil, ErrInvalidInstructionData
	}
	if i.Data[offset] != 0 || i.Data[offset+1] != 0 || i.Data[offset+3] != 0 {
		return nil, nil, ErrInvalidInstructionData
	}
	offset += 2
	getBool(i.Data, &args.IsMutable, &offset)

	accounts := &CreateMetadataAccountInstructionAccounts{
		Metadata:        i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		MintAuthority:   i.Accounts[2].PublicKey,
		Payer:           i.Accounts[3].PublicKey,
		UpdateAuthority: i.Accounts[4].PublicKey,
	}

	return &args, accounts, nil
}
