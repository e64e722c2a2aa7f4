package tipsea

import (
	"crypto/ed25519"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var (
	FundPrefix = []byte("tipsea_fund")
	TipPrefix  = []byte("tipsea_tip")
)

type GetFundAddressArgs struct {
	Mint ed25519.PublicKey
}

type GetVaultAddressArgs struct {
	Fund ed25519.PublicKey
	Mint ed25519.PublicKey
}

type GetTipAddressArgs struct {
	ClaimMint ed25519.PublicKey
}

func GetFundAddress(args *GetFundAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		FundPrefix,
		args.Mint,
	)
}

// GetVaultAddress returns the fund's custodial token account, which is the
// associated token account of the fund for the underlying mint.
func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
		args.Fund,
		SPL_TOKEN_PROGRAM_ID,
		args.Mint,
	)
}

func GetTipAddress(args *GetTipAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		TipPrefix,
		args.ClaimMint,
	)
}

// FundSignerSeeds returns the seeds the program signs with on behalf of the
// fund.
func FundSignerSeeds(mint ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{FundPrefix, mint, {bump}}
}

// TipSignerSeeds returns the seeds used to create the tip record for a claim
// mint.
func TipSignerSeeds(claimMint ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{TipPrefix, claimMint, {bump}}
}
