package program_test

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
	"github.com/tipsea/tipsea-solana/pkg/solana/tokenmetadata"
	"github.com/tipsea/tipsea-solana/pkg/testutil"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/client"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/program"
)

const (
	solLamports      = 1_000_000_000
	defaultFee       = 300_000_000
	payerTokens      = 1_000
	underlyingDigits = 6

	// Instruction indices within the client's transactions.
	mintNftInstruction  = 3
	redeemInstruction   = 1
	withdrawInstruction = 1
)

type testEnv struct {
	ctx    context.Context
	bank   *ledger.Bank
	client *client.Client

	authority ed25519.PrivateKey
	issuer    ed25519.PrivateKey
	payer     ed25519.PrivateKey
	holder    ed25519.PrivateKey
	creator   ed25519.PublicKey

	mint ed25519.PublicKey
}

func setup(t *testing.T, overrides *program.Overrides) *testEnv {
	ctx := context.Background()
	bank := testutil.NewTestBank(t, overrides)

	c, err := client.New(ctx, client.WithOverrides(&client.Overrides{MaxSubmitAttempts: 100}), bank)
	require.NoError(t, err)

	env := &testEnv{
		ctx:    ctx,
		bank:   bank,
		client: c,

		authority: testutil.NewFundedKeypair(t, bank, 10*solLamports),
		issuer:    testutil.NewFundedKeypair(t, bank, 10*solLamports),
		payer:     testutil.NewFundedKeypair(t, bank, solLamports),
		holder:    testutil.NewFundedKeypair(t, bank, solLamports),
		creator:   testutil.GenerateSolanaKeys(t, 1)[0],
	}

	env.mint = env.createUnderlyingMint(t)
	_, err = env.client.InitializeFund(ctx, env.authority, env.mint)
	require.NoError(t, err)

	return env
}

func (e *testEnv) createUnderlyingMint(t *testing.T) ed25519.PublicKey {
	mint := testutil.GenerateSolanaKeypair(t)
	_, err := e.client.CreateMint(e.ctx, e.authority, mint, publicKey(e.authority), underlyingDigits)
	require.NoError(t, err)

	_, err = e.client.MintTo(e.ctx, e.authority, publicKey(mint), publicKey(e.payer), payerTokens)
	require.NoError(t, err)

	return publicKey(mint)
}

func (e *testEnv) issue(t *testing.T, mint ed25519.PublicKey, recipient ed25519.PublicKey, amount uint64) *client.MintNftResult {
	res, err := e.client.MintNft(e.ctx, e.mintNftArgs(mint, recipient, amount))
	require.NoError(t, err)
	return res
}

func (e *testEnv) mintNftArgs(mint ed25519.PublicKey, recipient ed25519.PublicKey, amount uint64) *client.MintNftArgs {
	return &client.MintNftArgs{
		MintAuthority: e.issuer,
		Payer:         e.payer,
		Recipient:     recipient,
		Creator:       e.creator,
		Mint:          mint,
		Amount:        amount,
		Name:          "Tipsea",
		Symbol:        "TIP",
		Uri:           "https://example.com/tip.json",
	}
}

func (e *testEnv) fundBalance(t *testing.T) uint64 {
	balance, err := e.client.GetFundBalance(e.ctx, e.mint)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) tokenBalance(t *testing.T, owner ed25519.PublicKey, mint ed25519.PublicKey) uint64 {
	balance, err := e.client.GetTokenBalance(e.ctx, owner, mint)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) lamports(t *testing.T, address ed25519.PublicKey) uint64 {
	lamports, err := e.client.GetLamports(e.ctx, address)
	require.NoError(t, err)
	return lamports
}

func TestInitialize(t *testing.T) {
	env := setup(t, nil)

	assert.EqualValues(t, 0, env.fundBalance(t))

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, publicKey(env.authority), fund.Authority)
	assert.EqualValues(t, env.mint, fund.Mint)
	assert.EqualValues(t, 0, fund.TotalDeposited)
	assert.EqualValues(t, 0, fund.NumTips)

	expectedVault, err := env.client.VaultAddress(env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, expectedVault, fund.Vault)

	_, bump, err := env.client.FundAddress(env.mint)
	require.NoError(t, err)
	assert.Equal(t, bump, fund.Bump)

	// Anyone may try to initialize the fund for a mint, but only once
	other := testutil.NewFundedKeypair(t, env.bank, solLamports)
	_, err = env.client.InitializeFund(env.ctx, other, env.mint)
	testutil.AssertInstructionError(t, err, 0, tipsea.ErrorAlreadyInitialized)

	fund, err = env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, publicKey(env.authority), fund.Authority)

	// Funds are per mint
	otherMint := env.createUnderlyingMint(t)
	_, err = env.client.InitializeFund(env.ctx, other, otherMint)
	require.NoError(t, err)

	otherFund, err := env.client.GetFund(env.ctx, otherMint)
	require.NoError(t, err)
	assert.EqualValues(t, publicKey(other), otherFund.Authority)
}

func TestIssue(t *testing.T) {
	env := setup(t, nil)

	issuerLamports := env.lamports(t, publicKey(env.issuer))

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	// Claim token is a one of one held by the recipient
	claimMint, err := env.client.GetMint(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.EqualValues(t, 1, claimMint.Supply)
	assert.EqualValues(t, 0, claimMint.Decimals)

	edition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: res.ClaimMint})
	require.NoError(t, err)
	assert.EqualValues(t, edition, claimMint.MintAuthority)

	assert.EqualValues(t, 1, env.tokenBalance(t, publicKey(env.holder), res.ClaimMint))

	// Value moved from the payer into the fund
	assert.EqualValues(t, 100, env.fundBalance(t))
	assert.EqualValues(t, payerTokens-100, env.tokenBalance(t, publicKey(env.payer), env.mint))

	// Creator is paid the fee by the issuer
	assert.EqualValues(t, defaultFee, env.lamports(t, env.creator))
	assert.True(t, env.lamports(t, publicKey(env.issuer)) < issuerLamports-defaultFee)

	tip, err := env.client.GetTip(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.Equal(t, tipsea.TipStateUnredeemed, tip.State)
	assert.EqualValues(t, 100, tip.Amount)
	assert.EqualValues(t, env.creator, tip.Creator)
	assert.EqualValues(t, res.ClaimMint, tip.ClaimMint)

	fundAddress, _, err := env.client.FundAddress(env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, fundAddress, tip.Fund)

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 100, fund.TotalDeposited)
	assert.EqualValues(t, 1, fund.NumTips)

	metadataAddress, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: res.ClaimMint})
	require.NoError(t, err)
	metadataAccount, err := env.bank.GetAccount(env.ctx, metadataAddress)
	require.NoError(t, err)

	var metadata tokenmetadata.MetadataAccount
	require.NoError(t, metadata.Unmarshal(metadataAccount.Data))
	assert.Equal(t, "Tipsea", metadata.Data.Name)
	assert.Equal(t, "TIP", metadata.Data.Symbol)
	assert.EqualValues(t, 300, metadata.Data.SellerFeeBasisPoints)
	assert.False(t, metadata.IsMutable)
	require.Len(t, metadata.Data.Creators, 2)
	assert.EqualValues(t, env.creator, metadata.Data.Creators[0].Address)
	assert.EqualValues(t, 100, metadata.Data.Creators[0].Share)
	assert.EqualValues(t, publicKey(env.issuer), metadata.Data.Creators[1].Address)
	assert.EqualValues(t, 0, metadata.Data.Creators[1].Share)
}

func TestIssue_FailuresChangeNothing(t *testing.T) {
	env := setup(t, nil)

	issuerLamports := env.lamports(t, publicKey(env.issuer))

	for _, tc := range []struct {
		name     string
		amount   uint64
		expected error
	}{
		{"insufficient funds", payerTokens + 1, tipsea.ErrorInsufficientFunds},
		{"zero amount", 0, tipsea.ErrorInvalidAmount},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.client.MintNft(env.ctx, env.mintNftArgs(env.mint, publicKey(env.holder), tc.amount))
			testutil.AssertInstructionError(t, err, mintNftInstruction, tc.expected)
		})
	}

	args := env.mintNftArgs(env.mint, publicKey(env.holder), 10)
	args.Name = string(make([]byte, tokenmetadata.MaxNameLength+1))
	_, err := env.client.MintNft(env.ctx, args)
	testutil.AssertInstructionError(t, err, mintNftInstruction, tipsea.ErrorMetadataTooLong)

	poorIssuer := testutil.NewFundedKeypair(t, env.bank, system.RentExemptBalance(token.MintSize)+system.RentExemptBalance(token.AccountSize)+1_000)
	args = env.mintNftArgs(env.mint, publicKey(env.holder), 10)
	args.MintAuthority = poorIssuer
	_, err = env.client.MintNft(env.ctx, args)
	testutil.AssertInstructionError(t, err, mintNftInstruction, tipsea.ErrorNotEnoughSOL)

	assert.EqualValues(t, 0, env.fundBalance(t))
	assert.EqualValues(t, payerTokens, env.tokenBalance(t, publicKey(env.payer), env.mint))
	assert.EqualValues(t, issuerLamports, env.lamports(t, publicKey(env.issuer)))
	assert.EqualValues(t, 0, env.lamports(t, env.creator))

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fund.NumTips)
	assert.EqualValues(t, 0, fund.TotalDeposited)

	// Only the fund itself is owned by the program
	owned, err := env.bank.GetProgramAccounts(env.ctx, tipsea.PROGRAM_ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.True(t, tipsea.IsFundAccount(owned[0].Data))
}

func TestIssue_CreatorFeeDisabled(t *testing.T) {
	noFee := uint64(0)
	env := setup(t, &program.Overrides{CreatorFeeLamports: &noFee})

	env.issue(t, env.mint, publicKey(env.holder), 100)

	assert.EqualValues(t, 0, env.lamports(t, env.creator))
	assert.EqualValues(t, 100, env.fundBalance(t))
}

func TestRedeem(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	_, err := env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
	require.NoError(t, err)

	assert.EqualValues(t, 0, env.fundBalance(t))
	assert.EqualValues(t, 100, env.tokenBalance(t, publicKey(env.holder), env.mint))

	tip, err := env.client.GetTip(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.Equal(t, tipsea.TipStateRedeemed, tip.State)
	assert.EqualValues(t, publicKey(env.holder), tip.RedeemedBy)
	assert.True(t, tip.RedeemedAtSlot > 0)

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 100, fund.TotalRedeemed)

	// The holder keeps the claim token, but it can't be redeemed again
	assert.EqualValues(t, 1, env.tokenBalance(t, publicKey(env.holder), res.ClaimMint))

	_, err = env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorAlreadyRedeemed)

	assert.EqualValues(t, 0, env.fundBalance(t))
	assert.EqualValues(t, 100, env.tokenBalance(t, publicKey(env.holder), env.mint))
}

func TestRedeem_NotHolder(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	other := testutil.NewFundedKeypair(t, env.bank, solLamports)
	_, err := env.client.Redeem(env.ctx, other, env.mint, res.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorNotHolder)

	assert.EqualValues(t, 100, env.fundBalance(t))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(other), env.mint))

	tip, err := env.client.GetTip(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.Equal(t, tipsea.TipStateUnredeemed, tip.State)
}

func TestRedeem_AfterTransfer(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)
	receiver := testutil.NewFundedKeypair(t, env.bank, solLamports)

	_, err := env.client.SendNft(env.ctx, env.holder, res.ClaimMint, publicKey(receiver), "enjoy")
	require.NoError(t, err)
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.holder), res.ClaimMint))
	assert.EqualValues(t, 1, env.tokenBalance(t, publicKey(receiver), res.ClaimMint))

	// The previous holder lost the right to redeem
	_, err = env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorNotHolder)

	_, err = env.client.Redeem(env.ctx, receiver, env.mint, res.ClaimMint)
	require.NoError(t, err)
	assert.EqualValues(t, 100, env.tokenBalance(t, publicKey(receiver), env.mint))

	// A redeemed claim still moves, but pays out only once
	_, err = env.client.SendNft(env.ctx, receiver, res.ClaimMint, publicKey(env.holder), "")
	require.NoError(t, err)

	_, err = env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorAlreadyRedeemed)
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.holder), env.mint))
}

func TestRedeem_ClaimFromAnotherFund(t *testing.T) {
	env := setup(t, nil)

	env.issue(t, env.mint, publicKey(env.holder), 100)

	otherMint := env.createUnderlyingMint(t)
	_, err := env.client.InitializeFund(env.ctx, env.authority, otherMint)
	require.NoError(t, err)
	other := env.issue(t, otherMint, publicKey(env.holder), 5)

	_, err = env.client.Redeem(env.ctx, env.holder, env.mint, other.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorFundMismatch)

	assert.EqualValues(t, 100, env.fundBalance(t))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.holder), env.mint))

	_, err = env.client.Redeem(env.ctx, env.holder, otherMint, other.ClaimMint)
	require.NoError(t, err)
	assert.EqualValues(t, 5, env.tokenBalance(t, publicKey(env.holder), otherMint))
}

func TestWithdraw(t *testing.T) {
	env := setup(t, nil)

	env.issue(t, env.mint, publicKey(env.holder), 100)

	_, err := env.client.Withdraw(env.ctx, env.authority, env.mint, publicKey(env.authority), 50)
	require.NoError(t, err)
	assert.EqualValues(t, 50, env.fundBalance(t))
	assert.EqualValues(t, 50, env.tokenBalance(t, publicKey(env.authority), env.mint))

	intruder := testutil.NewFundedKeypair(t, env.bank, solLamports)
	_, err = env.client.Withdraw(env.ctx, intruder, env.mint, publicKey(intruder), 10)
	testutil.AssertInstructionError(t, err, withdrawInstruction, tipsea.ErrorUnauthorized)
	assert.EqualValues(t, 50, env.fundBalance(t))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(intruder), env.mint))

	_, err = env.client.Withdraw(env.ctx, env.authority, env.mint, publicKey(env.authority), 51)
	testutil.AssertInstructionError(t, err, withdrawInstruction, tipsea.ErrorInsufficientFunds)

	_, err = env.client.Withdraw(env.ctx, env.authority, env.mint, publicKey(env.authority), 0)
	testutil.AssertInstructionError(t, err, withdrawInstruction, tipsea.ErrorInvalidAmount)
	assert.EqualValues(t, 50, env.fundBalance(t))

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 50, fund.TotalWithdrawn)
}

func TestWithdraw_LeavesClaimsUnbacked(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	receiver := testutil.GenerateSolanaKeys(t, 1)[0]
	_, err := env.client.Withdraw(env.ctx, env.authority, env.mint, receiver, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, env.tokenBalance(t, receiver, env.mint))

	_, err = env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
	testutil.AssertInstructionError(t, err, redeemInstruction, tipsea.ErrorInsufficientFunds)

	tip, err := env.client.GetTip(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.Equal(t, tipsea.TipStateUnredeemed, tip.State)
}

func TestConcurrentRedeemAndWithdraw(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	var wg sync.WaitGroup
	results := make(chan error, 6)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := env.client.Redeem(env.ctx, env.holder, env.mint, res.ClaimMint)
		results <- err
	}()

	// Distinct receivers keep each withdrawal a distinct transaction
	receivers := testutil.GenerateSolanaKeys(t, 5)
	for _, receiver := range receivers {
		wg.Add(1)
		go func(receiver ed25519.PublicKey) {
			defer wg.Done()
			_, err := env.client.Withdraw(env.ctx, env.authority, env.mint, receiver, 30)
			results <- err
		}(receiver)
	}

	wg.Wait()
	close(results)

	for err := range results {
		if err == nil {
			continue
		}

		txnErr, ok := err.(*solana.TransactionError)
		require.True(t, ok, "unexpected error: %v", err)
		require.NotNil(t, txnErr.InstructionError())
		assert.Equal(t, tipsea.ErrorInsufficientFunds, txnErr.InstructionError().Err)
	}

	redeemed := env.tokenBalance(t, publicKey(env.holder), env.mint)
	assert.True(t, redeemed == 0 || redeemed == 100)

	var withdrawn uint64
	for _, receiver := range receivers {
		balance := env.tokenBalance(t, receiver, env.mint)
		assert.True(t, balance == 0 || balance == 30)
		withdrawn += balance
	}
	assert.Equal(t, uint64(100), env.fundBalance(t)+redeemed+withdrawn)

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.Equal(t, redeemed, fund.TotalRedeemed)
	assert.Equal(t, withdrawn, fund.TotalWithdrawn)
}

func TestInitialize_AddressMismatch(t *testing.T) {
	env := setup(t, nil)

	mint := env.createUnderlyingMint(t)
	fund, _, err := env.client.FundAddress(mint)
	require.NoError(t, err)
	vault, err := env.client.VaultAddress(mint)
	require.NoError(t, err)
	random := testutil.GenerateSolanaKeys(t, 1)[0]

	for _, tc := range []struct {
		name  string
		fund  ed25519.PublicKey
		vault ed25519.PublicKey
	}{
		{"fund not derived from mint", random, vault},
		{"vault not derived from fund", fund, random},
		{"fund of another mint", env.fundAddress(t), vault},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := tipsea.NewInitializeTipseaInstruction(
				&tipsea.InitializeTipseaInstructionAccounts{
					Initializer: publicKey(env.authority),
					Fund:        tc.fund,
					Vault:       tc.vault,
					Mint:        mint,
				},
				&tipsea.InitializeTipseaInstructionArgs{},
			)
			_, err := env.client.Submit(env.ctx, []ed25519.PrivateKey{env.authority}, ix)
			testutil.AssertInstructionError(t, err, 0, tipsea.ErrorFundMismatch)
		})
	}

	_, err = env.client.GetFund(env.ctx, mint)
	assert.Equal(t, client.ErrFundNotFound, err)

	_, err = env.client.InitializeFund(env.ctx, env.authority, mint)
	require.NoError(t, err)
}

func TestIssue_InvalidClaimMint(t *testing.T) {
	env := setup(t, nil)

	for _, tc := range []struct {
		name      string
		authority ed25519.PublicKey
		decimals  byte
		supply    uint64
	}{
		{"authority is not the signer", publicKey(env.authority), 0, 0},
		{"non-zero decimals", publicKey(env.issuer), 2, 0},
		{"already minted", publicKey(env.issuer), 0, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			claimMint := testutil.GenerateSolanaKeypair(t)
			_, err := env.client.CreateMint(env.ctx, env.issuer, claimMint, tc.authority, tc.decimals)
			require.NoError(t, err)
			if tc.supply > 0 {
				_, err = env.client.MintTo(env.ctx, env.issuer, publicKey(claimMint), publicKey(env.holder), tc.supply)
				require.NoError(t, err)
			}

			ix := env.createTipseaInstruction(t, publicKey(claimMint), 10)
			_, err = env.client.Submit(env.ctx, []ed25519.PrivateKey{env.issuer, env.payer}, ix)
			testutil.AssertInstructionError(t, err, 0, tipsea.ErrorMintAuthorityMismatch)

			_, err = env.client.GetTip(env.ctx, publicKey(claimMint))
			assert.Equal(t, client.ErrTipNotFound, err)
		})
	}

	assert.EqualValues(t, 0, env.fundBalance(t))
	assert.EqualValues(t, payerTokens, env.tokenBalance(t, publicKey(env.payer), env.mint))
	assert.EqualValues(t, 0, env.lamports(t, env.creator))
}

func TestRedeem_InvalidAccounts(t *testing.T) {
	env := setup(t, nil)

	res := env.issue(t, env.mint, publicKey(env.holder), 100)

	_, bump, err := env.client.FundAddress(env.mint)
	require.NoError(t, err)
	vault, err := env.client.VaultAddress(env.mint)
	require.NoError(t, err)

	holderAccount, err := env.client.CreateTokenAccount(env.ctx, env.holder, publicKey(env.holder), env.mint)
	require.NoError(t, err)
	otherAccount, err := env.client.CreateTokenAccount(env.ctx, env.holder, publicKey(env.authority), env.mint)
	require.NoError(t, err)

	otherMint := env.createUnderlyingMint(t)
	otherMintAccount, err := env.client.CreateTokenAccount(env.ctx, env.holder, publicKey(env.holder), otherMint)
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		to   ed25519.PublicKey
		bump uint8
	}{
		{"vault as destination", vault, bump},
		{"destination owned by another account", otherAccount, bump},
		{"destination for another mint", otherMintAccount, bump},
		{"destination does not exist", testutil.GenerateSolanaKeys(t, 1)[0], bump},
		{"wrong fund bump", holderAccount, bump - 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := env.redeemInstruction(t, res.ClaimMint, tc.to, tc.bump)
			_, err := env.client.Submit(env.ctx, []ed25519.PrivateKey{env.holder}, ix)
			testutil.AssertInstructionError(t, err, 0, tipsea.ErrorFundMismatch)
		})
	}

	assert.EqualValues(t, 100, env.fundBalance(t))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.holder), env.mint))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.authority), env.mint))

	tip, err := env.client.GetTip(env.ctx, res.ClaimMint)
	require.NoError(t, err)
	assert.Equal(t, tipsea.TipStateUnredeemed, tip.State)

	fund, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fund.TotalRedeemed)

	// The claim is still good
	_, err = env.client.Submit(env.ctx, []ed25519.PrivateKey{env.holder}, env.redeemInstruction(t, res.ClaimMint, holderAccount, bump))
	require.NoError(t, err)
	assert.EqualValues(t, 100, env.tokenBalance(t, publicKey(env.holder), env.mint))
}

func TestWithdraw_InvalidAccounts(t *testing.T) {
	env := setup(t, nil)

	env.issue(t, env.mint, publicKey(env.holder), 100)

	// The vault is the fund's associated token account
	_, err := env.client.Withdraw(env.ctx, env.authority, env.mint, env.fundAddress(t), 50)
	testutil.AssertInstructionError(t, err, withdrawInstruction, tipsea.ErrorFundMismatch)

	fund, bump, err := env.client.FundAddress(env.mint)
	require.NoError(t, err)
	vault, err := env.client.VaultAddress(env.mint)
	require.NoError(t, err)
	to, err := env.client.CreateTokenAccount(env.ctx, env.authority, publicKey(env.authority), env.mint)
	require.NoError(t, err)

	ix := tipsea.NewWithdrawInstruction(
		&tipsea.WithdrawInstructionAccounts{
			Authority: publicKey(env.authority),
			To:        to,
			Fund:      fund,
			Vault:     vault,
		},
		&tipsea.WithdrawInstructionArgs{
			FundBump: bump - 1,
			Amount:   50,
		},
	)
	_, err = env.client.Submit(env.ctx, []ed25519.PrivateKey{env.authority}, ix)
	testutil.AssertInstructionError(t, err, 0, tipsea.ErrorFundMismatch)

	assert.EqualValues(t, 100, env.fundBalance(t))
	assert.EqualValues(t, 0, env.tokenBalance(t, publicKey(env.authority), env.mint))

	state, err := env.client.GetFund(env.ctx, env.mint)
	require.NoError(t, err)
	assert.EqualValues(t, 0, state.TotalWithdrawn)
}

func (e *testEnv) fundAddress(t *testing.T) ed25519.PublicKey {
	fund, _, err := e.client.FundAddress(e.mint)
	require.NoError(t, err)
	return fund
}

func (e *testEnv) createTipseaInstruction(t *testing.T, claimMint ed25519.PublicKey, amount uint64) solana.Instruction {
	vault, err := e.client.VaultAddress(e.mint)
	require.NoError(t, err)
	from, err := e.client.AssociatedTokenAddress(publicKey(e.payer), e.mint)
	require.NoError(t, err)
	recipientToken, err := e.client.AssociatedTokenAddress(publicKey(e.holder), claimMint)
	require.NoError(t, err)
	tip, err := e.client.TipAddress(claimMint)
	require.NoError(t, err)
	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: claimMint})
	require.NoError(t, err)
	edition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: claimMint})
	require.NoError(t, err)

	return tipsea.NewCreateTipseaInstruction(
		&tipsea.CreateTipseaInstructionAccounts{
			MintAuthority:  publicKey(e.issuer),
			ClaimMint:      claimMint,
			RecipientToken: recipientToken,
			Metadata:       metadata,
			MasterEdition:  edition,
			From:           from,
			Fund:           e.fundAddress(t),
			Vault:          vault,
			Tip:            tip,
			Payer:          publicKey(e.payer),
			Creator:        e.creator,
		},
		&tipsea.CreateTipseaInstructionArgs{
			Uri:     "https://example.com/tip.json",
			Name:    "Tipsea",
			Symbol:  "TIP",
			Creator: e.creator,
			Amount:  amount,
		},
	)
}

func (e *testEnv) redeemInstruction(t *testing.T, claimMint, to ed25519.PublicKey, bump uint8) solana.Instruction {
	vault, err := e.client.VaultAddress(e.mint)
	require.NoError(t, err)
	claimToken, err := e.client.AssociatedTokenAddress(publicKey(e.holder), claimMint)
	require.NoError(t, err)
	tip, err := e.client.TipAddress(claimMint)
	require.NoError(t, err)
	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: claimMint})
	require.NoError(t, err)

	return tipsea.NewRedeemInstruction(
		&tipsea.RedeemInstructionAccounts{
			Holder:     publicKey(e.holder),
			To:         to,
			Fund:       e.fundAddress(t),
			Vault:      vault,
			ClaimMint:  claimMint,
			ClaimToken: claimToken,
			Metadata:   metadata,
			Tip:        tip,
		},
		&tipsea.RedeemInstructionArgs{
			FundBump: bump,
		},
	)
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}
