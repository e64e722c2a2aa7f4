package tokenmetadata

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
	PROGRAM_ADDRESS = mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/error.rs
const (
	ErrorInstructionUnpackError solana.CustomError = iota
	ErrorInstructionPackError
	ErrorNotRentExempt
	ErrorAlreadyInitialized
	ErrorUninitialized
	ErrorInvalidMetadataKey
	ErrorInvalidEditionKey
	ErrorUpdateAuthorityIncorrect
	ErrorUpdateAuthorityIsNotSigner
	ErrorNotMintAuthority
	ErrorInvalidMintAuthority
	ErrorNameTooLong
	ErrorSymbolTooLong
	ErrorUriTooLong
	ErrorUpdateAuthorityMustBeEqualToMetadataAuthorityAndSigner
	ErrorMintMismatch
	ErrorEditionsMustHaveExactlyOneToken
)

const (
	ErrorCreatorsTooLong solana.CustomError = iota + 0x23
	ErrorCreatorsMustBeAtleastOne
	ErrorMustBeOneOfCreators
	ErrorNoCreatorsPresentOnMetadata
	ErrorCreatorNotFound
	ErrorInvalidBasisPoints
	ErrorPrimarySaleCanOnlyBeFlippedToTrue
	ErrorOwnerMismatch
	ErrorNoBalanceInAccountForAuthorization
	ErrorShareTotalMustBe100
)
