package tipsea

import (
	"crypto/ed25519"
	"errors"

	"github.com/tipsea/tipsea-solana/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("61V6pS8v5ZY19tUrtMZAwUHuEJidx4aTViGXJ9pNsJXv")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID               = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID            = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
	SPL_ASSOCIATED_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"))
	TOKEN_METADATA_PROGRAM_ID       = ed25519.PublicKey(mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

const (
	// The fund has already been initialized
	ErrorAlreadyInitialized solana.CustomError = iota + 0x1770

	// The signer is not the fund authority
	ErrorUnauthorized

	// The signer does not hold the claim token
	ErrorNotHolder

	// The claim has already been redeemed
	ErrorAlreadyRedeemed

	// The fund address does not match the address derived from its mint, or a
	// claim is presented against a fund it was not issued by
	ErrorFundMismatch

	// The source balance is lower than the requested amount
	ErrorInsufficientFunds

	// The signer is not the mint authority of the claim mint
	ErrorMintAuthorityMismatch

	// Mint failed!
	ErrorMintFailed

	// Metadata account create failed!
	ErrorMetadataCreateFailed

	// Not enough tokens to pay for this minting
	//
	// Never returned: a payer short of the amount fails with
	// ErrorInsufficientFunds. Reserved so later codes keep their values.
	ErrorNotEnoughTokens

	// Not enough SOL to pay for this minting
	ErrorNotEnoughSOL

	// Amounts must be greater than zero
	ErrorInvalidAmount

	// The name, symbol or uri exceeds the metadata limits
	ErrorMetadataTooLong
)
