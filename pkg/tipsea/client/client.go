// Package client builds, signs and submits tipsea transactions against a
// ledger.
package client

import (
	"context"
	"crypto/ed25519"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/retry"
	"github.com/tipsea/tipsea-solana/pkg/retry/backoff"
	"github.com/tipsea/tipsea-solana/pkg/solana"
)

const (
	metricsStructName = "tipsea.client"
)

var (
	ErrNoSigners = errors.New("at least one signer is required")
)

// Ledger is the subset of the bank the client submits to and reads from.
type Ledger interface {
	GetLatestBlockhash() solana.Blockhash
	GetAccount(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, error)
	ProcessTransaction(ctx context.Context, txn solana.Transaction) error
	Airdrop(ctx context.Context, to ed25519.PublicKey, lamports uint64) (solana.Signature, error)
}

// Client submits tipsea operations as transactions.
type Client struct {
	log    *logrus.Entry
	conf   *conf
	ledger Ledger

	addresses *lru.Cache
}

// New returns a new Client
func New(ctx context.Context, configProvider ConfigProvider, ledger Ledger) (*Client, error) {
	conf := configProvider()

	addresses, err := lru.New(int(conf.addressCacheSize.Get(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating address cache")
	}

	return &Client{
		log:       logrus.StandardLogger().WithField("type", "tipsea/client"),
		conf:      conf,
		ledger:    ledger,
		addresses: addresses,
	}, nil
}

// Submit signs the instructions into a single transaction paid for by the
// first signer and processes it. Only account contention is retried; program
// errors are returned as is.
func (c *Client) Submit(ctx context.Context, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	defer tracer.End()

	if len(signers) == 0 {
		return solana.Signature{}, ErrNoSigners
	}
	payer := signers[0].Public().(ed25519.PublicKey)

	log := c.log.WithFields(logrus.Fields{
		"method": "Submit",
		"payer":  base58.Encode(payer),
	})

	var sig solana.Signature
	attempts, err := retry.Retry(
		func() error {
			txn := solana.NewTransaction(payer, instructions...)
			txn.SetBlockhash(c.ledger.GetLatestBlockhash())
			if err := txn.Sign(signers...); err != nil {
				return errors.Wrap(err, "error signing transaction")
			}

			copy(sig[:], txn.Signature())
			return c.ledger.ProcessTransaction(ctx, txn)
		},
		retry.Limit(uint(c.conf.maxSubmitAttempts.Get(ctx))),
		retry.RetriableIf(isAccountInUse),
		retry.BackoffWithJitter(
			backoff.BinaryExponential(c.conf.minRetryDelay.Get(ctx)),
			c.conf.maxRetryDelay.Get(ctx),
			0.1,
		),
	)

	tracer.AddAttribute("attempts", attempts)

	log = log.WithFields(logrus.Fields{
		"signature": base58.Encode(sig[:]),
		"attempts":  attempts,
	})
	if err != nil {
		log.WithError(err).Debug("transaction failed")
		tracer.OnError(err)
		return sig, err
	}

	log.Trace("transaction processed")
	return sig, nil
}

// RequestAirdrop funds an account with lamports from the ledger faucet.
func (c *Client) RequestAirdrop(ctx context.Context, to ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	return c.ledger.Airdrop(ctx, to, lamports)
}

// GetLamports returns the lamport balance of an account, zero if it does not
// exist.
func (c *Client) GetLamports(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	account, err := c.ledger.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

func isAccountInUse(err error) bool {
	txnErr, ok := err.(*solana.TransactionError)
	return ok && txnErr.ErrorKey() == solana.TransactionErrorAccountInUse
}

// uniqueSigners drops repeated keys, keeping the first occurrence so the
// payer stays first.
func uniqueSigners(signers ...ed25519.PrivateKey) []ed25519.PrivateKey {
	res := make([]ed25519.PrivateKey, 0, len(signers))
	seen := make(map[string]struct{})
	for _, signer := range signers {
		key := string(signer.Public().(ed25519.PublicKey))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, signer)
	}
	return res
}
