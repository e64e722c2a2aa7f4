package program

import (
	"bytes"

	"github.com/mr-tron/base58/base58"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

// withdraw moves value out of the fund at the authority's request. It does
// not consult tip records, so outstanding claims may be left unbacked.
func (p *Program) withdraw(ctx *ledger.InvokeContext) error {
	args, accounts, err := tipsea.WithdrawInstructionFromInstruction(ctx.Instruction())
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	authorityInfo := ctx.Accounts()[0]
	fundInfo := ctx.Accounts()[2]
	vaultInfo := ctx.Accounts()[3]

	if err := requireSigner(authorityInfo); err != nil {
		return err
	}

	fund, err := loadFund(fundInfo)
	if err != nil {
		return err
	}
	if !bytes.Equal(fund.Authority, accounts.Authority) {
		ctx.Log("Error: signer is not the fund authority")
		return tipsea.ErrorUnauthorized
	}
	if args.FundBump != fund.Bump {
		return tipsea.ErrorFundMismatch
	}
	if bytes.Equal(accounts.To, fund.Vault) {
		ctx.Log("Error: cannot withdraw into the fund vault")
		return tipsea.ErrorFundMismatch
	}

	balance, err := vaultBalance(vaultInfo, fund)
	if err != nil {
		return err
	}
	if args.Amount == 0 {
		return tipsea.ErrorInvalidAmount
	}
	if args.Amount > balance {
		ctx.Log("Error: fund holds %d, requested %d", balance, args.Amount)
		return tipsea.ErrorInsufficientFunds
	}

	ctx.Log("Instruction: Withdraw")

	err = ctx.Invoke(
		token.Transfer(accounts.Vault, accounts.To, accounts.Fund, args.Amount),
		tipsea.FundSignerSeeds(fund.Mint, fund.Bump),
	)
	if err != nil {
		return err
	}

	fund.TotalWithdrawn += args.Amount
	fundInfo.Data = fund.Marshal()

	metrics.RecordEvent(ctx.Context(), fundWithdrawEventName, map[string]interface{}{
		"fund":   base58.Encode(accounts.Fund),
		"amount": args.Amount,
	})

	return nil
}
