package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
)

// redeem pays the claim's designated amount out of the fund to its holder.
// A claim moves from unredeemed to redeemed exactly once; the holder keeps the
// claim token itself.
func (p *Program) redeem(ctx *ledger.InvokeContext) error {
	args, accounts, err := tipsea.RedeemInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	holderInfo := ctx.Accounts()[0]
	toInfo := ctx.Accounts()[1]
	fundInfo := ctx.Accounts()[2]
	vaultInfo := ctx.Accounts()[3]
	claimTokenInfo := ctx.Accounts()[5]
	metadataInfo := ctx.Accounts()[6]
	tipInfo := ctx.Accounts()[7]

	if err := requireSigner(holderInfo); err != nil {
		return err
	}

	claimToken := loadTokenAccount(claimTokenInfo)
	if claimToken == nil ||
		!bytes.Equal(claimToken.Owner, accounts.Holder) ||
		!bytes.Equal(claimToken.Mint, accounts.ClaimMint) ||
		claimToken.Amount != 1 {
		ctx.Log("Error: signer does not hold the claim")
		return tipsea.ErrorNotHolder
	}

	if err := verifyClaimMetadata(metadataInfo, accounts.ClaimMint); err != nil {
		return err
	}

	tipAddress, _, err := tipsea.GetTipAddress(&tipsea.GetTipAddressArgs{
		ClaimMint: accounts.ClaimMint,
	})
	if !addressMatches(tipAddress, err, accounts.Tip) {
		return tipsea.ErrorFundMismatch
	}
	tip, err := loadTip(tipInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(tip.Fund, accounts.Fund) || !bytes.Equal(tip.ClaimMint, accounts.ClaimMint) {
		ctx.Log("Error: claim was not issued by this fund")
		return tipsea.ErrorFundMismatch
	}

	fund, err := loadFundWithBump(fundInfo, args.FundBump)
	if err != nil {
		return err
	}

	// Payouts only go to the holder's own account for the underlying mint.
	to := loadTokenAccount(toInfo)
	if to == nil ||
		!bytes.Equal(to.Owner, accounts.Holder) ||
		!bytes.Equal(to.Mint, fund.Mint) ||
		bytes.Equal(accounts.To, fund.Vault) {
		ctx.Log("Error: destination is not the holder's token account")
		return tipsea.ErrorFundMismatch
	}

	if tip.State != tipsea.TipStateUnredeemed {
		return tipsea.ErrorAlreadyRedeemed
	}

	balance, err := vaultBalance(vaultInfo, fund)
	if err != nil {
		return err
	}
	if balance < tip.Amount {
		ctx.Log("Error: fund holds %d, claim is for %d", balance, tip.Amount)
		return tipsea.ErrorInsufficientFunds
	}

	ctx.Log("Instruction: Redeem")

	err = ctx.Invoke(
		token.Transfer(accounts.Vault, accounts.To, accounts.Fund, tip.Amount),
		tipsea.FundSignerSeeds(fund.Mint, fund.Bump),
	)
	if err != nil {
		return err
	}

	tip.State = tipsea.TipStateRedeemed
	tip.RedeemedBy = append(ed25519.PublicKey(nil), accounts.Holder...)
	tip.RedeemedAtSlot = ctx.Slot()
	tipInfo.Data = tip.Marshal()

	fund.TotalRedeemed += tip.Amount
	fundInfo.Data = fund.Marshal()

	metrics.RecordEvent(ctx.Context(), tipRedeemedEventName, map[string]interface{}{
		"fund":       base58.Encode(accounts.Fund),
		"claim_mint": base58.Encode(accounts.ClaimMint),
		"holder":     base58.Encode(accounts.Holder),
		"amount":     tip.Amount,
	})

	return nil
}

// verifyClaimMetadata checks the metadata account is the one derived from the
// claim mint and describes it.
func verifyClaimMetadata(info *ledger.AccountInfo, claimMint ed25519.PublicKey) error {
	address, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: claimMint,
	})
	if !addressMatches(address, err, info.Address) {
		return tipsea.ErrorFundMismatch
	}
	if !info.IsOwnedBy(tokenmetadata.PROGRAM_ID) {
		return tipsea.ErrorFundMismatch
	}

	var metadata tokenmetadata.MetadataAccount
	if err := metadata.Unmarshal(info.Data); err != nil {
		return tipsea.ErrorFundMismatch
	}
	if !bytes.Equal(metadata.Mint, claimMint) {
		return tipsea.ErrorFundMismatch
	}
	return nil
}
