package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres account.Store
func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements account.Store.Save
func (s *store) Save(ctx context.Context, records ...*account.Record) error {
	models := make([]*model, len(records))
	for i, record := range records {
		m, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = m
	}

	if err := dbSaveAll(ctx, s.db, models...); err != nil {
		return err
	}

	for i, m := range models {
		fromModel(m).CopyTo(records[i])
	}

	return nil
}

// Get implements account.Store.Get
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	m, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(m), nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res, nil
}
