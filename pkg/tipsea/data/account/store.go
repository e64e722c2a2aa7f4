package account

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	ErrStaleAccountState = errors.New("account state is stale")
)

type Store interface {
	// Save atomically persists a batch of account states. Every record must be
	// written at a slot strictly greater than the one currently stored, otherwise
	// ErrStaleAccountState is returned and no record in the batch is written.
	Save(ctx context.Context, records ...*Record) error

	// Get gets the latest state of an account. ErrAccountNotFound is returned
	// if the account has never been written.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets every account owned by the provided program.
	// ErrAccountNotFound is returned if there are none.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)
}
