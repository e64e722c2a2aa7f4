package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")
)

type txContextKey struct{}

type txContext struct {
	tx        *sqlx.Tx
	isolation sql.IsolationLevel
}

// ExecuteTxWithinCtx runs fn in a DB transaction carried by the context it is
// passed. Store writes made through ExecuteInTx with that context join the
// transaction, which commits only if fn succeeds.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	isolation = withDefaultIsolation(isolation)

	if ctx.Value(txContextKey{}) != nil {
		return ErrAlreadyInTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txContextKey{}, &txContext{
		tx:        tx,
		isolation: isolation,
	})
	return finish(tx, fn(ctx))
}

// ExecuteInTx runs a store operation in the transaction carried by ctx, or in
// a new one it owns when ctx carries none.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = withDefaultIsolation(isolation)

	tx, err := getTxFromCtx(ctx, isolation)
	if err == nil {
		return fn(tx)
	} else if err != ErrNotInTx {
		return err
	}

	tx, err = db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}
	return finish(tx, fn(tx))
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	val := ctx.Value(txContextKey{})
	if val == nil {
		return nil, ErrNotInTx
	}

	txCtx, ok := val.(*txContext)
	if !ok {
		return nil, errors.New("invalid type for tx")
	}
	if txCtx.isolation < desiredIsolation {
		return nil, errors.New("current tx doesn't meet isolation level requirements")
	}
	return txCtx.tx, nil
}

// finish commits tx, or rolls it back when fnErr is set. A rollback is always
// issued on failure so the connection is released.
func finish(tx *sqlx.Tx, fnErr error) error {
	if fnErr == nil {
		return tx.Commit()
	}

	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return fnErr
}

func withDefaultIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted // Postgres default
	}
	return isolation
}
