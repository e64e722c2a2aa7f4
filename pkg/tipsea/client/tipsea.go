package client

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/memo"
	"github.com/tipsea/tipsea-solana/pkg/solana/tipsea"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

var (
	ErrFundNotFound = errors.New("fund not found")
	ErrTipNotFound  = errors.New("tip not found")
)

// InitializeFund creates the fund and vault for an underlying mint. The
// authority becomes the only account able to withdraw from it.
func (c *Client) InitializeFund(ctx context.Context, authority ed25519.PrivateKey, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "InitializeFund")
	defer tracer.End()

	fund, _, err := c.FundAddress(mint)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	vault, err := c.VaultAddress(mint)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	ix := tipsea.NewInitializeTipseaInstruction(
		&tipsea.InitializeTipseaInstructionAccounts{
			Initializer: authority.Public().(ed25519.PublicKey),
			Fund:        fund,
			Vault:       vault,
			Mint:        mint,
		},
		&tipsea.InitializeTipseaInstructionArgs{},
	)

	if _, err := c.Submit(ctx, []ed25519.PrivateKey{authority}, ix); err != nil {
		tracer.OnError(err)
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method": "InitializeFund",
		"fund":   base58.Encode(fund),
		"mint":   base58.Encode(mint),
	}).Debug("fund initialized")

	return fund, nil
}

// MintNftArgs describes a claim to issue against a fund.
type MintNftArgs struct {
	// MintAuthority creates the claim mint, pays the creator fee and signs
	// the metadata.
	MintAuthority ed25519.PrivateKey
	// Payer funds the claim from its associated token account for the
	// underlying mint.
	Payer ed25519.PrivateKey

	Recipient ed25519.PublicKey
	Creator   ed25519.PublicKey
	Mint      ed25519.PublicKey
	Amount    uint64

	Name   string
	Symbol string
	Uri    string
}

// MintNftResult are the accounts created by MintNft.
type MintNftResult struct {
	Signature      solana.Signature
	ClaimMint      ed25519.PublicKey
	RecipientToken ed25519.PublicKey
	Tip            ed25519.PublicKey
}

// MintNft issues a claim token to the recipient and deposits the claim's
// amount into the fund. The claim mint, the recipient's token account and the
// issuance are a single transaction, so either all of them land or none do.
func (c *Client) MintNft(ctx context.Context, args *MintNftArgs) (*MintNftResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MintNft")
	defer tracer.End()

	res, err := c.mintNft(ctx, args)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return res, nil
}

func (c *Client) mintNft(ctx context.Context, args *MintNftArgs) (*MintNftResult, error) {
	_, claimMint, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "error generating claim mint")
	}
	claimMintKey := claimMint.Public().(ed25519.PublicKey)

	mintAuthority := args.MintAuthority.Public().(ed25519.PublicKey)
	payer := args.Payer.Public().(ed25519.PublicKey)

	fund, _, err := c.FundAddress(args.Mint)
	if err != nil {
		return nil, err
	}
	vault, err := c.VaultAddress(args.Mint)
	if err != nil {
		return nil, err
	}
	from, err := c.AssociatedTokenAddress(payer, args.Mint)
	if err != nil {
		return nil, err
	}
	tip, err := c.TipAddress(claimMintKey)
	if err != nil {
		return nil, err
	}
	metadata, err := c.metadataAddress(claimMintKey)
	if err != nil {
		return nil, err
	}
	edition, err := c.masterEditionAddress(claimMintKey)
	if err != nil {
		return nil, err
	}

	createRecipient, recipientToken, err := token.CreateAssociatedTokenAccountIdempotent(mintAuthority, args.Recipient, claimMintKey)
	if err != nil {
		return nil, err
	}

	instructions := createMintInstructions(mintAuthority, claimMintKey, mintAuthority, 0)
	instructions = append(
		instructions,
		createRecipient,
		tipsea.NewCreateTipseaInstruction(
			&tipsea.CreateTipseaInstructionAccounts{
				MintAuthority:  mintAuthority,
				ClaimMint:      claimMintKey,
				RecipientToken: recipientToken,
				Metadata:       metadata,
				MasterEdition:  edition,
				From:           from,
				Fund:           fund,
				Vault:          vault,
				Tip:            tip,
				Payer:          payer,
				Creator:        args.Creator,
			},
			&tipsea.CreateTipseaInstructionArgs{
				Uri:     args.Uri,
				Name:    args.Name,
				Symbol:  args.Symbol,
				Creator: args.Creator,
				Amount:  args.Amount,
			},
		),
	)

	sig, err := c.Submit(ctx, uniqueSigners(args.MintAuthority, claimMint, args.Payer), instructions...)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":     "MintNft",
		"fund":       base58.Encode(fund),
		"claim_mint": base58.Encode(claimMintKey),
		"recipient":  base58.Encode(args.Recipient),
		"amount":     args.Amount,
	}).Debug("claim issued")

	return &MintNftResult{
		Signature:      sig,
		ClaimMint:      claimMintKey,
		RecipientToken: recipientToken,
		Tip:            tip,
	}, nil
}

// SendNft transfers a claim token to the receiver, creating the receiver's
// token account when needed. The memo, if any, is signed by the sender.
func (c *Client) SendNft(ctx context.Context, sender ed25519.PrivateKey, claimMint, receiver ed25519.PublicKey, memoText string) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "SendNft")
	defer tracer.End()

	senderKey := sender.Public().(ed25519.PublicKey)

	source, err := c.AssociatedTokenAddress(senderKey, claimMint)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}
	create, destination, err := token.CreateAssociatedTokenAccountIdempotent(senderKey, receiver, claimMint)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	instructions := []solana.Instruction{
		create,
		token.Transfer(source, destination, senderKey, 1),
	}
	if len(memoText) > 0 {
		instructions = append(instructions, memo.Instruction(memoText, senderKey))
	}

	sig, err := c.Submit(ctx, []ed25519.PrivateKey{sender}, instructions...)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// Redeem pays out the claim held by the holder into the holder's token
// account for the underlying mint, which is created when missing.
func (c *Client) Redeem(ctx context.Context, holder ed25519.PrivateKey, mint, claimMint ed25519.PublicKey) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Redeem")
	defer tracer.End()

	sig, err := c.redeem(ctx, holder, mint, claimMint)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

func (c *Client) redeem(ctx context.Context, holder ed25519.PrivateKey, mint, claimMint ed25519.PublicKey) (solana.Signature, error) {
	holderKey := holder.Public().(ed25519.PublicKey)

	fund, bump, err := c.FundAddress(mint)
	if err != nil {
		return solana.Signature{}, err
	}
	vault, err := c.VaultAddress(mint)
	if err != nil {
		return solana.Signature{}, err
	}
	claimToken, err := c.AssociatedTokenAddress(holderKey, claimMint)
	if err != nil {
		return solana.Signature{}, err
	}
	metadata, err := c.metadataAddress(claimMint)
	if err != nil {
		return solana.Signature{}, err
	}
	tip, err := c.TipAddress(claimMint)
	if err != nil {
		return solana.Signature{}, err
	}

	createTo, to, err := token.CreateAssociatedTokenAccountIdempotent(holderKey, holderKey, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.Submit(
		ctx,
		[]ed25519.PrivateKey{holder},
		createTo,
		tipsea.NewRedeemInstruction(
			&tipsea.RedeemInstructionAccounts{
				Holder:     holderKey,
				To:         to,
				Fund:       fund,
				Vault:      vault,
				ClaimMint:  claimMint,
				ClaimToken: claimToken,
				Metadata:   metadata,
				Tip:        tip,
			},
			&tipsea.RedeemInstructionArgs{
				FundBump: bump,
			},
		),
	)
}

// Withdraw moves tokens out of the fund into the receiver's associated token
// account. Only the fund authority may withdraw.
func (c *Client) Withdraw(ctx context.Context, authority ed25519.PrivateKey, mint, receiver ed25519.PublicKey, amount uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Withdraw")
	defer tracer.End()

	sig, err := c.withdraw(ctx, authority, mint, receiver, amount)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

func (c *Client) withdraw(ctx context.Context, authority ed25519.PrivateKey, mint, receiver ed25519.PublicKey, amount uint64) (solana.Signature, error) {
	authorityKey := authority.Public().(ed25519.PublicKey)

	fund, bump, err := c.FundAddress(mint)
	if err != nil {
		return solana.Signature{}, err
	}
	vault, err := c.VaultAddress(mint)
	if err != nil {
		return solana.Signature{}, err
	}
	createTo, to, err := token.CreateAssociatedTokenAccountIdempotent(authorityKey, receiver, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.Submit(
		ctx,
		[]ed25519.PrivateKey{authority},
		createTo,
		tipsea.NewWithdrawInstruction(
			&tipsea.WithdrawInstructionAccounts{
				Authority: authorityKey,
				To:        to,
				Fund:      fund,
				Vault:     vault,
			},
			&tipsea.WithdrawInstructionArgs{
				FundBump: bump,
				Amount:   amount,
			},
		),
	)
}

// GetFund returns the fund for an underlying mint.
func (c *Client) GetFund(ctx context.Context, mint ed25519.PublicKey) (*tipsea.FundAccount, error) {
	address, _, err := c.FundAddress(mint)
	if err != nil {
		return nil, err
	}

	account, err := c.ledger.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrFundNotFound
	} else if err != nil {
		return nil, err
	}

	var fund tipsea.FundAccount
	if !account.IsOwnedBy(tipsea.PROGRAM_ID) {
		return nil, ErrFundNotFound
	}
	if err := fund.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrap(err, "error decoding fund")
	}
	return &fund, nil
}

// GetFundBalance returns the balance held by the fund's vault.
func (c *Client) GetFundBalance(ctx context.Context, mint ed25519.PublicKey) (uint64, error) {
	vault, err := c.VaultAddress(mint)
	if err != nil {
		return 0, err
	}

	account, err := c.GetTokenAccount(ctx, vault)
	if err == ErrTokenAccountNotFound {
		return 0, ErrFundNotFound
	} else if err != nil {
		return 0, err
	}
	return account.Amount, nil
}

// GetTip returns the tip record of a claim mint.
func (c *Client) GetTip(ctx context.Context, claimMint ed25519.PublicKey) (*tipsea.TipAccount, error) {
	address, err := c.TipAddress(claimMint)
	if err != nil {
		return nil, err
	}

	account, err := c.ledger.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrTipNotFound
	} else if err != nil {
		return nil, err
	}

	var tip tipsea.TipAccount
	if !account.IsOwnedBy(tipsea.PROGRAM_ID) {
		return nil, ErrTipNotFound
	}
	if err := tip.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrap(err, "error decoding tip")
	}
	return &tip, nil
}
