package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres transaction.Store
func New(db *sql.DB) transaction.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements transaction.Store.Put
func (s *store) Put(ctx context.Context, record *transaction.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := m.dbPut(ctx, s.db); err != nil {
		return err
	}

	fromModel(m).CopyTo(record)

	return nil
}

// Get implements transaction.Store.Get
func (s *store) Get(ctx context.Context, signature string) (*transaction.Record, error) {
	m, err := dbGet(ctx, s.db, signature)
	if err != nil {
		return nil, err
	}
	return fromModel(m), nil
}

// GetAllByPayer implements transaction.Store.GetAllByPayer
func (s *store) GetAllByPayer(ctx context.Context, payer string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*transaction.Record, error) {
	models, err := dbGetAllByPayer(ctx, s.db, payer, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	res := make([]*transaction.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res, nil
}

// GetLatestSlot implements transaction.Store.GetLatestSlot
func (s *store) GetLatestSlot(ctx context.Context) (uint64, error) {
	return dbGetLatestSlot(ctx, s.db)
}
