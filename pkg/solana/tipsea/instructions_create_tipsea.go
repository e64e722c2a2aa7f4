package tipsea

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var createTipseaInstructionDiscriminator = []byte{
	9, 143, 228, 60, 96, 191, 157, 39,
}

const (
	CreateTipseaInstructionAccountsSize = 15
)

type CreateTipseaInstructionArgs struct {
	Uri     string
	Name    string
	Symbol  string
	Creator ed25519.PublicKey
	Amount  uint64
}

type CreateTipseaInstructionAccounts struct {
	MintAuthority  ed25519.PublicKey
	ClaimMint      ed25519.PublicKey
	RecipientToken ed25519.PublicKey
	Metadata       ed25519.PublicKey
	MasterEdition  ed25519.PublicKey
	From           ed25519.PublicKey
	Fund           ed25519.PublicKey
	Vault          ed25519.PublicKey
	Tip            ed25519.PublicKey
	Payer          ed25519.PublicKey
	Creator        ed25519.PublicKey
}

func NewCreateTipseaInstruction(
	accounts *CreateTipseaInstructionAccounts,
	args *CreateTipseaInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(createTipseaInstructionDiscriminator)+
			4+len(args.Uri)+
			4+len(args.Name)+
			4+len(args.Symbol)+
			32+ // creator
			8) // amount

	putDiscriminator(data, createTipseaInstructionDiscriminator, &offset)
	putString(data, args.Uri, &offset)
	putString(data, args.Name, &offset)
	putString(data, args.Symbol, &offset)
	putKey(data, args.Creator, &offset)
	putUint64(data, args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.ClaimMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RecipientToken,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MasterEdition,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.From,
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
				PublicKey:  accounts.Tip,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Creator,
				IsWritable: true,
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
				PublicKey:  TOKEN_METADATA_PROGRAM_ID,
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

func CreateTipseaInstructionFromInstruction(i solana.Instruction) (*CreateTipseaInstructionArgs, *CreateTipseaInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, nil, ErrInvalidProgram
	}

	if len(i.Data) < len(createTipseaInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(i.Data, &discriminator, &offset)
	if !bytes.Equal(discriminator, createTipseaInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	if len(i.Accounts) < CreateTipseaInstructionAccountsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	var args CreateTipseaInstructionArgs
	var accounts CreateTipseaInstructionAccounts

	// Instruction Args
	if err := getString(i.Data, &args.Uri, &offset); err != nil {
		return nil, nil, err
	}
	if err := getString(i.Data, &args.Name, &offset); err != nil {
		return nil, nil, err
	}
	if err := getString(i.Data, &args.Symbol, &offset); err != nil {
		return nil, nil, err
	}
	if len(i.Data) != offset+32+8 {
		return nil, nil, ErrInvalidInstructionData
	}
	getKey(i.Data, &args.Creator, &offset)
	getUint64(i.Data, &args.Amount, &offset)

	// Instruction Accounts
	accounts.MintAuthority = i.Accounts[0].PublicKey
	accounts.ClaimMint = i.Accounts[1].PublicKey
	accounts.RecipientToken = i.Accounts[2].PublicKey
	accounts.Metadata = i.Accounts[3].PublicKey
	accounts.MasterEdition = i.Accounts[4].PublicKey
	accounts.From = i.Accounts[5].PublicKey
	accounts.Fund = i.Accounts[6].PublicKey
	accounts.Vault = i.Accounts[7].PublicKey
	accounts.Tip = i.Accounts[8].PublicKey
	accounts.Payer = i.Accounts[9].PublicKey
	accounts.Creator = i.Accounts[10].PublicKey

	return &args, &accounts, nil
}
