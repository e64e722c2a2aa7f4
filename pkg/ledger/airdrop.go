package ledger

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/retry"
	"github.com/tipsea/tipsea-solana/pkg/retry/backoff"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/memo"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
)

const (
	maxAirdropAttempts = 5
)

// Airdrop funds an account from the faucet by processing a regular system
// transfer, returning its signature.
func (b *Bank) Airdrop(ctx context.Context, to ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Airdrop")
	defer tracer.End()

	log := b.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"to":       base58.Encode(to),
		"lamports": lamports,
	})

	if !b.airdropLimiter.Allow(base58.Encode(to)) {
		log.Debug("airdrop rate limited")
		return solana.Signature{}, ErrAirdropRateLimited
	}

	var sig solana.Signature
	_, err := retry.Retry(
		func() error {
			txn := solana.NewTransaction(
				b.FaucetKey(),
				memo.Instruction(fmt.Sprintf("airdrop:%s", uuid.New().String())),
				system.Transfer(b.FaucetKey(), to, lamports),
			)
			txn.SetBlockhash(b.GetLatestBlockhash())
			if err := txn.Sign(b.faucet); err != nil {
				return errors.Wrap(err, "error signing airdrop transaction")
			}

			copy(sig[:], txn.Signature())
			return b.ProcessTransaction(ctx, txn)
		},
		retry.Limit(maxAirdropAttempts),
		retry.RetriableIf(isAccountInUse),
		retry.Backoff(backoff.Constant(10*time.Millisecond), 10*time.Millisecond),
	)
	if err != nil {
		log.WithError(err).Warn("airdrop failed")
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	metrics.RecordEvent(ctx, airdropEventName, map[string]interface{}{
		"to":       base58.Encode(to),
		"lamports": lamports,
	})

	return sig, nil
}

func isAccountInUse(err error) bool {
	txnErr, ok := err.(*solana.TransactionError)
	return ok && txnErr.ErrorKey() == solana.TransactionErrorAccountInUse
}
