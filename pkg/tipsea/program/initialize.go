package program

import (
	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

// initializeTipsea creates the fund for an underlying mint along with its
// vault, the fund's associated token account.
func (p *Program) initializeTipsea(ctx *ledger.InvokeContext) error {
	_, accounts, err := tipsea.InitializeTipseaInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	initializerInfo := ctx.Accounts()[0]
	fundInfo := ctx.Accounts()[1]

	if err := requireSigner(initializerInfo); err != nil {
		return err
	}

	fundAddress, bump, err := tipsea.GetFundAddress(&tipsea.GetFundAddressArgs{
		Mint: accounts.Mint,
	})
	if !addressMatches(fundAddress, err, accounts.Fund) {
		return tipsea.ErrorFundMismatch
	}

	vaultAddress, _, err := tipsea.GetVaultAddress(&tipsea.GetVaultAddressArgs{
		Fund: fundAddress,
		Mint: accounts.Mint,
	})
	if !addressMatches(vaultAddress, err, accounts.Vault) {
		return tipsea.ErrorFundMismatch
	}

	if len(fundInfo.Data) > 0 {
		return tipsea.ErrorAlreadyInitialized
	}

	ctx.Log("Instruction: InitializeTipsea")

	err = ctx.Invoke(
		system.CreateAccount(
			accounts.Initializer,
			accounts.Fund,
			tipsea.PROGRAM_ID,
			system.RentExemptBalance(tipsea.FundAccountSize),
			tipsea.FundAccountSize,
		),
		tipsea.FundSignerSeeds(accounts.Mint, bump),
	)
	if err != nil {
		return err
	}

	createVault, _, err := token.CreateAssociatedTokenAccount(accounts.Initializer, accounts.Fund, accounts.Mint)
	if err != nil {
		return solana.InstructionErrorInvalidSeeds
	}
	if err := ctx.Invoke(createVault); err != nil {
		return err
	}

	fund := &tipsea.FundAccount{
		Authority: accounts.Initializer,
		Mint:      accounts.Mint,
		Vault:     accounts.Vault,
		Bump:      bump,
	}
	fundInfo.Data = fund.Marshal()

	p.log.WithField("method", "initializeTipsea").WithField("fund", base58.Encode(accounts.Fund)).Debug("fund initialized")
	return nil
}
