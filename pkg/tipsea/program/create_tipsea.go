package program

import (
	"bytes"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
)

// createTipsea issues a one-of-one claim token and funds the fund with the
// amount the claim can later redeem. Every effect happens in this instruction
// or none do.
func (p *Program) createTipsea(ctx *ledger.InvokeContext) error {
	args, accounts, err := tipsea.CreateTipseaInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	mintAuthorityInfo := ctx.Accounts()[0]
	claimMintInfo := ctx.Accounts()[1]
	fromInfo := ctx.Accounts()[5]
	fundInfo := ctx.Accounts()[6]
	vaultInfo := ctx.Accounts()[7]
	tipInfo := ctx.Accounts()[8]
	payerInfo := ctx.Accounts()[9]

	if err := requireSigner(mintAuthorityInfo); err != nil {
		return err
	}
	if err := requireSigner(payerInfo); err != nil {
		return err
	}

	metadataAddress, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: accounts.ClaimMint,
	})
	if !addressMatches(metadataAddress, err, accounts.Metadata) {
		return tipsea.ErrorFundMismatch
	}
	editionAddress, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: accounts.ClaimMint,
	})
	if !addressMatches(editionAddress, err, accounts.MasterEdition) {
		return tipsea.ErrorFundMismatch
	}
	tipAddress, tipBump, err := tipsea.GetTipAddress(&tipsea.GetTipAddressArgs{
		ClaimMint: accounts.ClaimMint,
	})
	if !addressMatches(tipAddress, err, accounts.Tip) {
		return tipsea.ErrorFundMismatch
	}

	creatorFee := p.conf.creatorFeeLamports.Get(ctx.Context())
	if mintAuthorityInfo.Lamports < creatorFee {
		ctx.Log("Error: mint authority holds %d lamports, fee is %d", mintAuthorityInfo.Lamports, creatorFee)
		return tipsea.ErrorNotEnoughSOL
	}

	claimMint := loadMint(claimMintInfo)
	if claimMint == nil || claimMint.Decimals != 0 || claimMint.Supply != 0 || !bytes.Equal(claimMint.MintAuthority, accounts.MintAuthority) {
		return tipsea.ErrorMintAuthorityMismatch
	}

	fund, err := loadFund(fundInfo)
	if err != nil {
		return err
	}
	balance, err := vaultBalance(vaultInfo, fund)
	if err != nil {
		return err
	}
	from := loadTokenAccount(fromInfo)
	if from == nil || !bytes.Equal(from.Mint, fund.Mint) || bytes.Equal(accounts.From, accounts.Vault) {
		return tipsea.ErrorFundMismatch
	}

	if from.Amount < args.Amount {
		return tipsea.ErrorInsufficientFunds
	}
	if args.Amount == 0 {
		return tipsea.ErrorInvalidAmount
	}
	if balance+args.Amount < balance {
		return tipsea.ErrorInvalidAmount
	}

	if len(args.Name) > tokenmetadata.MaxNameLength || len(args.Symbol) > tokenmetadata.MaxSymbolLength || len(args.Uri) > tokenmetadata.MaxUriLength {
		return tipsea.ErrorMetadataTooLong
	}

	ctx.Log("Instruction: CreateTipsea")

	if creatorFee > 0 {
		ctx.Log("Sending mint proceeds to creator")
		if err := ctx.Invoke(system.Transfer(accounts.MintAuthority, accounts.Creator, creatorFee)); err != nil {
			return err
		}
	}

	err = ctx.Invoke(token.MintTo(accounts.ClaimMint, accounts.RecipientToken, accounts.MintAuthority, 1))
	if err != nil {
		return wrapFailure(tipsea.ErrorMintFailed, err)
	}

	err = ctx.Invoke(tokenmetadata.NewCreateMetadataAccountInstruction(
		&tokenmetadata.CreateMetadataAccountInstructionAccounts{
			Metadata:        accounts.Metadata,
			Mint:            accounts.ClaimMint,
			MintAuthority:   accounts.MintAuthority,
			Payer:           accounts.MintAuthority,
			UpdateAuthority: accounts.MintAuthority,
		},
		&tokenmetadata.CreateMetadataAccountInstructionArgs{
			Data: tokenmetadata.Data{
				Name:                 args.Name,
				Symbol:               args.Symbol,
				Uri:                  args.Uri,
				SellerFeeBasisPoints: uint16(p.conf.sellerFeeBasisPoints.Get(ctx.Context())),
				Creators: []tokenmetadata.Creator{
					{Address: args.Creator, Share: 100},
					{Address: accounts.MintAuthority, Share: 0},
				},
			},
			IsMutable: false,
		},
	))
	if err != nil {
		return wrapFailure(tipsea.ErrorMetadataCreateFailed, err)
	}

	maxSupply := uint64(0)
	err = ctx.Invoke(tokenmetadata.NewCreateMasterEditionInstruction(
		&tokenmetadata.CreateMasterEditionInstructionAccounts{
			Edition:         accounts.MasterEdition,
			Mint:            accounts.ClaimMint,
			UpdateAuthority: accounts.MintAuthority,
			MintAuthority:   accounts.MintAuthority,
			Payer:           accounts.MintAuthority,
			Metadata:        accounts.Metadata,
		},
		&tokenmetadata.CreateMasterEditionInstructionArgs{
			MaxSupply: &maxSupply,
		},
	))
	if err != nil {
		return err
	}

	err = ctx.Invoke(token.Transfer(accounts.From, accounts.Vault, accounts.Payer, args.Amount))
	if err != nil {
		return err
	}

	err = ctx.Invoke(
		system.CreateAccount(
			accounts.MintAuthority,
			accounts.Tip,
			tipsea.PROGRAM_ID,
			system.RentExemptBalance(tipsea.TipAccountSize),
			tipsea.TipAccountSize,
		),
		tipsea.TipSignerSeeds(accounts.ClaimMint, tipBump),
	)
	if err != nil {
		return err
	}

	tip := &tipsea.TipAccount{
		Fund:      accounts.Fund,
		ClaimMint: accounts.ClaimMint,
		Creator:   args.Creator,
		Amount:    args.Amount,
		State:     tipsea.TipStateUnredeemed,
		Bump:      tipBump,
	}
	tipInfo.Data = tip.Marshal()

	fund.TotalDeposited += args.Amount
	fund.NumTips++
	fundInfo.Data = fund.Marshal()

	metrics.RecordEvent(ctx.Context(), tipIssuedEventName, map[string]interface{}{
		"fund":       base58.Encode(accounts.Fund),
		"claim_mint": base58.Encode(accounts.ClaimMint),
		"amount":     args.Amount,
	})

	return nil
}
