package tipsea

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var redeemInstructionDiscriminator = []byte{
	184, 12, 86, 149, 70, 196, 97, 225,
}

const (
	RedeemInstructionArgsSize = (1) // fund_bump

	RedeemInstructionAccountsSize = 9
)

type RedeemInstructionArgs struct {
	FundBump uint8
}

type RedeemInstructionAccounts struct {
	Holder     ed25519.PublicKey
	To         ed25519.PublicKey
	Fund       ed25519.PublicKey
	Vault      ed25519.PublicKey
	ClaimMint  ed25519.PublicKey
	ClaimToken ed25519.PublicKey
	Metadata   ed25519.PublicKey
	Tip        ed25519.PublicKey
}

func NewRedeemInstruction(
	accounts *RedeemInstructionAccounts,
	args *RedeemInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(redeemInstructionDiscriminator)+
			RedeemInstructionArgsSize)

	putDiscriminator(data, redeemInstructionDiscriminator, &offset)
	putUint8(data, args.FundBump, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Holder,
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
				PublicKey:  accounts.ClaimMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.ClaimToken,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Tip,
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

func RedeemInstructionFromInstruction(i solana.Instruction) (*RedeemInstructionArgs, *RedeemInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	if !bytes.Equal(i.Program, PROGRAM_ADDRESS) {
		return nil, nil, ErrInvalidProgram
	}

	if len(i.Data) != len(redeemInstructionDiscriminator)+RedeemInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(i.Data, &discriminator, &offset)
	if !bytes.Equal(discriminator, redeemInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	if len(i.Accounts) < RedeemInstructionAccountsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	var args RedeemInstructionArgs
	var accounts RedeemInstructionAccounts

	// Instruction Args
	getUint8(i.Data, &args.FundBump, &offset)

	// Instruction Accounts
	accounts.Holder = i.Accounts[0].PublicKey
	accounts.To = i.Accounts[1].PublicKey
	accounts.Fund = i.Accounts[2].PublicKey
	accounts.Vault = i.Accounts[3].PublicKey
	accounts.ClaimMint = i.Accounts[4].PublicKey
	accounts.ClaimToken = i.Accounts[5].PublicKey
	accounts.Metadata = i.Accounts[6].PublicKey
	accounts.Tip = i.Accounts[7].PublicKey

	return &args, &accounts, nil
}
