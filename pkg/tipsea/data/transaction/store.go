package transaction

import (
	"context"
	"errors"

	"github.com/tipsea/tipsea-solana/pkg/database/query"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrTransactionExists = errors.New("transaction already exists")
)

type Store interface {
	// Put saves the outcome of a processed transaction. ErrTransactionExists is
	// returned if a transaction with the same signature was already saved.
	Put(ctx context.Context, record *Record) error

	// Get gets a transaction by its base58 signature. ErrTransactionNotFound is
	// returned if it does not exist.
	Get(ctx context.Context, signature string) (*Record, error)

	// GetAllByPayer gets a page of transactions paid for by the provided account.
	// ErrTransactionNotFound is returned if the page is empty.
	GetAllByPayer(ctx context.Context, payer string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// GetLatestSlot gets the highest slot any saved transaction was processed
	// in, or zero when the store is empty.
	GetLatestSlot(ctx context.Context) (uint64, error)
}
