// Package program implements the tipsea fund and claim program: funds are
// initialized per underlying mint, claim tokens are issued against a fund,
// redeemed once by their holder, and the fund authority may withdraw at any
// time.
package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

const (
	metricsStructName = "tipsea.program"
)

// Program processes tipsea instructions.
type Program struct {
	log  *logrus.Entry
	conf *conf
}

// New returns a new tipsea Program
func New(configProvider ConfigProvider) *Program {
	return &Program{
		log:  logrus.StandardLogger().WithField("type", "tipsea/program"),
		conf: configProvider(),
	}
}

// Register makes the program available under the tipsea program id.
func (p *Program) Register(registry ledger.ProgramRegistry) {
	registry.RegisterProgram(tipsea.PROGRAM_ID, p)
}

// Process implements ledger.Program.Process
func (p *Program) Process(ctx *ledger.InvokeContext) error {
	instructionType, err := tipsea.GetInstructionType(ctx.Data())
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	tracer := metrics.TraceMethodCall(ctx.Context(), metricsStructName, instructionType.String())
	defer tracer.End()

	log := p.log.WithField("instruction", instructionType.String())

	switch instructionType {
	case tipsea.InstructionTypeInitializeTipsea:
		err = p.initializeTipsea(ctx)
	case tipsea.InstructionTypeCreateTipsea:
		err = p.createTipsea(ctx)
	case tipsea.InstructionTypeRedeem:
		err = p.redeem(ctx)
	case tipsea.InstructionTypeWithdraw:
		err = p.withdraw(ctx)
	default:
		err = solana.InstructionErrorInvalidInstructionData
	}

	recordInstructionResult(instructionType, err)
	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Debug("instruction failed")
	}
	return err
}

func requireSigner(info *ledger.AccountInfo) error {
	if !info.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	return nil
}

// loadFund decodes the fund account and verifies it is the fund derived from
// its own mint and stored bump.
func loadFund(info *ledger.AccountInfo) (*tipsea.FundAccount, error) {
	if !info.IsOwnedBy(tipsea.PROGRAM_ID) {
		return nil, tipsea.ErrorFundMismatch
	}

	var fund tipsea.FundAccount
	if err := fund.Unmarshal(info.Data); err != nil {
		return nil, tipsea.ErrorFundMismatch
	}

	address, err := solana.CreateProgramAddress(tipsea.PROGRAM_ID, tipsea.FundSignerSeeds(fund.Mint, fund.Bump)...)
	if !addressMatches(address, err, info.Address) {
		return nil, tipsea.ErrorFundMismatch
	}

	return &fund, nil
}

// loadFundWithBump is loadFund for instructions that carry the fund bump,
// which must be the one the fund was created with.
func loadFundWithBump(info *ledger.AccountInfo, bump uint8) (*tipsea.FundAccount, error) {
	fund, err := loadFund(info)
	if err != nil {
		return nil, err
	}
	if bump != fund.Bump {
		return nil, tipsea.ErrorFundMismatch
	}
	return fund, nil
}

func loadTip(info *ledger.AccountInfo) (*tipsea.TipAccount, error) {
	if !info.IsOwnedBy(tipsea.PROGRAM_ID) {
		return nil, tipsea.ErrorFundMismatch
	}

	var tip tipsea.TipAccount
	if err := tip.Unmarshal(info.Data); err != nil {
		return nil, tipsea.ErrorFundMismatch
	}
	return &tip, nil
}

// loadTokenAccount decodes an initialized SPL token account, returning nil
// when the account is anything else.
func loadTokenAccount(info *ledger.AccountInfo) *token.Account {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil
	}

	var account token.Account
	if !account.Unmarshal(info.Data) || account.State == token.AccountStateUninitialized {
		return nil
	}
	return &account
}

func loadMint(info *ledger.AccountInfo) *token.Mint {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return nil
	}
	return &mint
}

// vaultBalance returns the token balance custodied by the fund.
func vaultBalance(info *ledger.AccountInfo, fund *tipsea.FundAccount) (uint64, error) {
	if !bytes.Equal(info.Address, fund.Vault) {
		return 0, tipsea.ErrorFundMismatch
	}

	vault := loadTokenAccount(info)
	if vault == nil || !bytes.Equal(vault.Mint, fund.Mint) {
		return 0, tipsea.ErrorFundMismatch
	}
	return vault.Amount, nil
}

func addressMatches(expected ed25519.PublicKey, err error, actual ed25519.PublicKey) bool {
	return err == nil && bytes.Equal(expected, actual)
}

// wrapFailure reports a failed invocation as the provided program error,
// keeping the cause for logs.
func wrapFailure(code solana.CustomError, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(code, err.Error())
}
