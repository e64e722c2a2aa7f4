package native

import (
	"bytes"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
)

func processTokenMetadata(ctx *ledger.InvokeContext) error {
	instructionType, err := tokenmetadata.GetInstructionType(ctx.Data())
	if err != nil {
		return tokenmetadata.ErrorInstructionUnpackError
	}

	switch instructionType {
	case tokenmetadata.InstructionTypeCreateMetadataAccountV3:
		return processCreateMetadataAccount(ctx)
	case tokenmetadata.InstructionTypeCreateMasterEditionV3:
		return processCreateMasterEdition(ctx)
	default:
		return tokenmetadata.ErrorInstructionUnpackError
	}
}

func processCreateMetadataAccount(ctx *ledger.InvokeContext) error {
	args, accounts, err := tokenmetadata.CreateMetadataAccountInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return tokenmetadata.ErrorInstructionUnpackError
	}

	ctx.Log("IX: Create Metadata Accounts v3")

	metadataInfo := ctx.Accounts()[0]
	mintInfo := ctx.Accounts()[1]
	mintAuthorityInfo := ctx.Accounts()[2]
	updateAuthorityInfo := ctx.Accounts()[4]

	address, bump, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: accounts.Mint,
	})
	if err != nil || !bytes.Equal(address, accounts.Metadata) {
		return tokenmetadata.ErrorInvalidMetadataKey
	}
	if len(metadataInfo.Data) > 0 {
		return tokenmetadata.ErrorAlreadyInitialized
	}

	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(mint.MintAuthority, accounts.MintAuthority) {
		return tokenmetadata.ErrorInvalidMintAuthority
	}
	if !mintAuthorityInfo.IsSigner {
		return tokenmetadata.ErrorNotMintAuthority
	}
	if !updateAuthorityInfo.IsSigner {
		return tokenmetadata.ErrorUpdateAuthorityIsNotSigner
	}

	if err := validateMetadataData(&args.Data, accounts.UpdateAuthority); err != nil {
		return err
	}

	err = ctx.Invoke(
		system.CreateAccount(
			accounts.Payer,
			accounts.Metadata,
			tokenmetadata.PROGRAM_ID,
			system.RentExemptBalance(tokenmetadata.MetadataAccountSize),
			tokenmetadata.MetadataAccountSize,
		),
		[][]byte{tokenmetadata.MetadataPrefix, tokenmetadata.PROGRAM_ID, accounts.Mint, {bump}},
	)
	if err != nil {
		return err
	}

	metadata := &tokenmetadata.MetadataAccount{
		UpdateAuthority: accounts.UpdateAuthority,
		Mint:            accounts.Mint,
		Data:            args.Data,
		IsMutable:       args.IsMutable,
	}
	metadataInfo.Data = metadata.Marshal()
	return nil
}

func validateMetadataData(data *tokenmetadata.Data, updateAuthority []byte) error {
	if len(data.Name) > tokenmetadata.MaxNameLength {
		return tokenmetadata.ErrorNameTooLong
	}
	if len(data.Symbol) > tokenmetadata.MaxSymbolLength {
		return tokenmetadata.ErrorSymbolTooLong
	}
	if len(data.Uri) > tokenmetadata.MaxUriLength {
		return tokenmetadata.ErrorUriTooLong
	}
	if data.SellerFeeBasisPoints > tokenmetadata.MaxSellerFeeBasisPoints {
		return tokenmetadata.ErrorInvalidBasisPoints
	}

	if data.Creators == nil {
		return nil
	}
	if len(data.Creators) == 0 {
		return tokenmetadata.ErrorCreatorsMustBeAtleastOne
	}
	if len(data.Creators) > tokenmetadata.MaxCreators {
		return tokenmetadata.ErrorCreatorsTooLong
	}

	var total int
	for _, creator := range data.Creators {
		// Only the update authority, which has signed, may be created verified.
		if creator.Verified && !bytes.Equal(creator.Address, updateAuthority) {
			return tokenmetadata.ErrorCreatorNotFound
		}
		total += int(creator.Share)
	}
	if total != 100 {
		return tokenmetadata.ErrorShareTotalMustBe100
	}

	return nil
}

func processCreateMasterEdition(ctx *ledger.InvokeContext) error {
	args, accounts, err := tokenmetadata.CreateMasterEditionInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return tokenmetadata.ErrorInstructionUnpackError
	}

	ctx.Log("IX: Create Master Edition v3")

	editionInfo := ctx.Accounts()[0]
	mintInfo := ctx.Accounts()[1]
	updateAuthorityInfo := ctx.Accounts()[2]
	mintAuthorityInfo := ctx.Accounts()[3]
	metadataInfo := ctx.Accounts()[5]

	address, bump, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: accounts.Mint,
	})
	if err != nil || !bytes.Equal(address, accounts.Edition) {
		return tokenmetadata.ErrorInvalidEditionKey
	}
	if len(editionInfo.Data) > 0 {
		return tokenmetadata.ErrorAlreadyInitialized
	}

	if !metadataInfo.IsOwnedBy(tokenmetadata.PROGRAM_ID) {
		return solana.InstructionErrorIncorrectProgramID
	}
	var metadata tokenmetadata.MetadataAccount
	if err := metadata.Unmarshal(metadataInfo.Data); err != nil {
		return tokenmetadata.ErrorUninitialized
	}
	if !bytes.Equal(metadata.Mint, accounts.Mint) {
		return tokenmetadata.ErrorMintMismatch
	}
	if !bytes.Equal(metadata.UpdateAuthority, accounts.UpdateAuthority) {
		return tokenmetadata.ErrorUpdateAuthorityIncorrect
	}
	if !updateAuthorityInfo.IsSigner {
		return tokenmetadata.ErrorUpdateAuthorityIsNotSigner
	}

	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(mint.MintAuthority, accounts.MintAuthority) {
		return tokenmetadata.ErrorInvalidMintAuthority
	}
	if !mintAuthorityInfo.IsSigner {
		return tokenmetadata.ErrorNotMintAuthority
	}
	if mint.Supply != 1 || mint.Decimals != 0 {
		return tokenmetadata.ErrorEditionsMustHaveExactlyOneToken
	}

	err = ctx.Invoke(
		system.CreateAccount(
			accounts.Payer,
			accounts.Edition,
			tokenmetadata.PROGRAM_ID,
			system.RentExemptBalance(tokenmetadata.MasterEditionAccountSize),
			tokenmetadata.MasterEditionAccountSize,
		),
		[][]byte{tokenmetadata.MetadataPrefix, tokenmetadata.PROGRAM_ID, accounts.Mint, tokenmetadata.EditionPrefix, {bump}},
	)
	if err != nil {
		return err
	}

	edition := &tokenmetadata.MasterEditionAccount{
		MaxSupply: args.MaxSupply,
	}
	editionInfo.Data = edition.Marshal()

	// The edition takes over minting, fixing the supply.
	err = ctx.Invoke(token.SetAuthority(accounts.Mint, accounts.MintAuthority, accounts.Edition, token.AuthorityTypeMintTokens))
	if err != nil {
		return err
	}
	if len(mint.FreezeAuthority) > 0 {
		err = ctx.Invoke(token.SetAuthority(accounts.Mint, mint.FreezeAuthority, accounts.Edition, token.AuthorityTypeFreezeAccount))
		if err != nil {
			return err
		}
	}

	return nil
}
