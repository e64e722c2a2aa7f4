package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/rate"
	"github.com/tipsea/tipsea-solana/pkg/solana"
	"github.com/tipsea/tipsea-solana/pkg/solana/system"
	sync_util "github.com/tipsea/tipsea-solana/pkg/sync"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

const (
	metricsStructName = "ledger.bank"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAirdropRateLimited = errors.New("airdrop rate limited")
)

// Bank executes transactions against persisted account state. Each
// transaction is applied atomically: either every account change made by its
// instructions is committed, or none are.
type Bank struct {
	log  *logrus.Entry
	conf *conf

	data         data.Provider
	accounts     account.Store
	transactions transaction.Store

	programsMu sync.RWMutex
	programs   map[string]Program

	accountLocks *sync_util.StripedLock

	stateMu     sync.Mutex
	slot        uint64
	blockhashes []solana.Blockhash

	faucet         ed25519.PrivateKey
	airdropLimiter rate.Limiter
}

// NewBank returns a Bank over the provided stores. The slot resumes from the
// latest processed transaction, and the faucet account is created on first
// use of an empty store.
func NewBank(ctx context.Context, configProvider ConfigProvider, provider data.Provider) (*Bank, error) {
	conf := configProvider()

	b := &Bank{
		log:  logrus.StandardLogger().WithField("type", "ledger/Bank"),
		conf: conf,

		data:         provider,
		accounts:     provider.GetAccountStore(),
		transactions: provider.GetTransactionStore(),

		programs: make(map[string]Program),

		accountLocks: sync_util.NewStripedLock(uint(conf.lockStripes.Get(ctx))),

		airdropLimiter: rate.NewPerMinuteLimiter(conf.airdropsPerMinute.Get(ctx)),
	}

	seed := sha256.Sum256([]byte(conf.faucetSeed.Get(ctx)))
	b.faucet = ed25519.NewKeyFromSeed(seed[:])

	latest, err := b.transactions.GetLatestSlot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting latest slot")
	}
	b.slot = latest
	b.blockhashes = []solana.Blockhash{sha256.Sum256(seed[:])}

	if err := b.initializeFaucet(ctx); err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"slot":   b.slot,
		"faucet": base58.Encode(b.FaucetKey()),
	}).Info("bank initialized")

	return b, nil
}

func (b *Bank) initializeFaucet(ctx context.Context) error {
	_, err := b.accounts.Get(ctx, base58.Encode(b.FaucetKey()))
	if err == nil {
		return nil
	} else if err != account.ErrAccountNotFound {
		return errors.Wrap(err, "error getting faucet account")
	}

	faucet := newEmptyAccount(b.FaucetKey())
	faucet.Lamports = b.conf.faucetLamports.Get(ctx)

	slot, _ := b.advanceSlot()
	if err := b.accounts.Save(ctx, faucet.toRecord(slot)); err != nil {
		return errors.Wrap(err, "error creating faucet account")
	}
	return nil
}

// FaucetKey returns the account airdrops are funded from.
func (b *Bank) FaucetKey() ed25519.PublicKey {
	return b.faucet.Public().(ed25519.PublicKey)
}

// GetSlot returns the slot of the most recently processed transaction.
func (b *Bank) GetSlot() uint64 {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	return b.slot
}

// GetLatestBlockhash returns the blockhash new transactions should reference.
func (b *Bank) GetLatestBlockhash() solana.Blockhash {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	return b.blockhashes[len(b.blockhashes)-1]
}

func (b *Bank) isRecentBlockhash(blockhash solana.Blockhash) bool {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	for _, recent := range b.blockhashes {
		if recent == blockhash {
			return true
		}
	}
	return false
}

// advanceSlot moves the bank to the next slot, producing its blockhash.
func (b *Bank) advanceSlot() (uint64, solana.Blockhash) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	b.slot++

	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], b.slot)

	previous := b.blockhashes[len(b.blockhashes)-1]
	blockhash := solana.Blockhash(sha256.Sum256(append(previous[:], slotBytes[:]...)))

	b.blockhashes = append(b.blockhashes, blockhash)
	if window := int(b.conf.recentBlockhashes.Get(context.Background())); window > 0 && len(b.blockhashes) > window {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-window:]
	}

	return b.slot, blockhash
}

// GetAccount returns the current state of an account. ErrAccountNotFound is
// returned for addresses that hold no lamports.
func (b *Bank) GetAccount(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	loaded, err := b.loadAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	if loaded.IsEmpty() {
		return nil, ErrAccountNotFound
	}
	return loaded, nil
}

// GetProgramAccounts returns every account owned by the provided program.
func (b *Bank) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey) ([]*Account, error) {
	records, err := b.accounts.GetAllByOwner(ctx, base58.Encode(program))
	if err == account.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	res := make([]*Account, 0, len(records))
	for _, record := range records {
		loaded, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		if loaded.Lamports > 0 {
			res = append(res, loaded)
		}
	}
	return res, nil
}

// GetTransaction returns the outcome of a processed transaction.
func (b *Bank) GetTransaction(ctx context.Context, signature solana.Signature) (*transaction.Record, error) {
	return b.transactions.Get(ctx, base58.Encode(signature[:]))
}

func (b *Bank) loadAccount(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	if _, ok := b.getProgram(address); ok {
		return &Account{
			Address:    address,
			Owner:      NativeLoaderKey,
			Lamports:   1,
			Executable: true,
		}, nil
	}

	if bytes.Equal(address, system.RentSysVar) {
		return &Account{
			Address:  address,
			Owner:    SysvarProgramKey,
			Lamports: 1,
			Data:     rentSysvarData(),
		}, nil
	}

	record, err := b.accounts.Get(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		return newEmptyAccount(address), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "error loading account %s", base58.Encode(address))
	}

	loaded, err := fromRecord(record)
	if err != nil {
		return nil, err
	}

	if loaded.Lamports == 0 {
		return newEmptyAccount(address), nil
	}
	return loaded, nil
}

func (b *Bank) isServedAccount(address ed25519.PublicKey) bool {
	_, ok := b.getProgram(address)
	return ok || bytes.Equal(address, system.RentSysVar)
}

// rentSysvarData is the serialized default Rent sysvar.
func rentSysvarData() []byte {
	b := make([]byte, 8+8+1)
	binary.LittleEndian.PutUint64(b, 3480)
	binary.LittleEndian.PutUint64(b[8:], math.Float64bits(2.0))
	b[16] = 50
	return b
}

func (b *Bank) recordProcessed(ctx context.Context, start time.Time, txnErr error) {
	result := "success"
	if txnErr != nil {
		result = "failure"
	}

	transactionsProcessedCounter.WithLabelValues(result).Inc()
	metrics.RecordDuration(ctx, processTransactionDurationMetricName, time.Since(start))
}
