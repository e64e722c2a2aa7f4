package client

import (
	"context"
	"crypto/ed25519"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	"github.com/tipsea/tipsea-solana/pkg/solana/token"
)

var (
	ErrMintNotFound         = errors.New("mint not found")
	ErrTokenAccountNotFound = errors.New("token account not found")
)

// CreateMint creates and initializes a new SPL mint at the provided keypair.
// The authority may mint and freeze.
func (c *Client) CreateMint(ctx context.Context, payer, mint ed25519.PrivateKey, authority ed25519.PublicKey, decimals byte) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateMint")
	defer tracer.End()

	payerKey := payer.Public().(ed25519.PublicKey)
	mintKey := mint.Public().(ed25519.PublicKey)

	sig, err := c.Submit(
		ctx,
		uniqueSigners(payer, mint),
		createMintInstructions(payerKey, mintKey, authority, decimals)...,
	)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// CreateTokenAccount creates the owner's associated token account for a mint
// if it does not already exist, returning its address.
func (c *Client) CreateTokenAccount(ctx context.Context, payer ed25519.PrivateKey, owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateTokenAccount")
	defer tracer.End()

	create, ata, err := token.CreateAssociatedTokenAccountIdempotent(payer.Public().(ed25519.PublicKey), owner, mint)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if _, err := c.Submit(ctx, []ed25519.PrivateKey{payer}, create); err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return ata, nil
}

// MintTo mints tokens into the owner's associated token account, creating it
// when missing. The mint authority pays for the transaction.
func (c *Client) MintTo(ctx context.Context, authority ed25519.PrivateKey, mint, owner ed25519.PublicKey, amount uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MintTo")
	defer tracer.End()

	authorityKey := authority.Public().(ed25519.PublicKey)

	create, ata, err := token.CreateAssociatedTokenAccountIdempotent(authorityKey, owner, mint)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	sig, err := c.Submit(
		ctx,
		[]ed25519.PrivateKey{authority},
		create,
		token.MintTo(mint, ata, authorityKey, amount),
	)
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// GetMint returns the state of an SPL mint.
func (c *Client) GetMint(ctx context.Context, mint ed25519.PublicKey) (*token.Mint, error) {
	account, err := c.ledger.GetAccount(ctx, mint)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrMintNotFound
	} else if err != nil {
		return nil, err
	}

	var decoded token.Mint
	if !account.IsOwnedBy(token.ProgramKey) || !decoded.Unmarshal(account.Data) {
		return nil, ErrMintNotFound
	}
	return &decoded, nil
}

// GetTokenAccount returns the state of an SPL token account.
func (c *Client) GetTokenAccount(ctx context.Context, address ed25519.PublicKey) (*token.Account, error) {
	account, err := c.ledger.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrTokenAccountNotFound
	} else if err != nil {
		return nil, err
	}

	var decoded token.Account
	if !account.IsOwnedBy(token.ProgramKey) || !decoded.Unmarshal(account.Data) {
		return nil, ErrTokenAccountNotFound
	}
	return &decoded, nil
}

// GetTokenBalance returns the balance of the owner's associated token account
// for a mint, zero if it does not exist.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint ed25519.PublicKey) (uint64, error) {
	ata, err := c.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, err
	}

	account, err := c.GetTokenAccount(ctx, ata)
	if err == ErrTokenAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Amount, nil
}

// FormatAmount renders a quark amount in whole units of a mint with the
// provided decimals.
func FormatAmount(amount uint64, decimals byte) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).StringFixed(int32(decimals))
}

func createMintInstructions(payer, mint, authority ed25519.PublicKey, decimals byte) []solana.Instruction {
	return []solana.Instruction{
		system.CreateAccount(
			payer,
			mint,
			token.ProgramKey,
			system.RentExemptBalance(token.MintSize),
			token.MintSize,
		),
		token.InitializeMint(mint, authority, authority, decimals),
	}
}
