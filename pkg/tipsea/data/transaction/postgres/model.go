package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/tipsea/tipsea-solana/pkg/database/postgres"
	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/pointer"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"
)

const (
	tableName = "tipsea__core_transaction"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Signature string `db:"signature"`
	Slot      uint64 `db:"slot"`
	Payer     string `db:"payer"`
	Data      []byte `db:"raw_data"`

	HasErrors bool           `db:"has_errors"`
	Error     sql.NullString `db:"error"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *transaction.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	var txnErr sql.NullString
	if obj.Error != nil {
		txnErr.Valid = true
		txnErr.String = *obj.Error
	}

	return &model{
		Signature: obj.Signature,
		Slot:      obj.Slot,
		Payer:     obj.Payer,
		Data:      obj.Data,
		HasErrors: obj.HasErrors,
		Error:     txnErr,
		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromModel(obj *model) *transaction.Record {
	return &transaction.Record{
		Id:        uint64(obj.Id.Int64),
		Signature: obj.Signature,
		Slot:      obj.Slot,
		Payer:     obj.Payer,
		Data:      obj.Data,
		HasErrors: obj.HasErrors,
		Error:     pointer.StringIfValid(obj.Error.Valid, obj.Error.String),
		CreatedAt: obj.CreatedAt,
	}
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(signature, slot, payer, raw_data, has_errors, error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING
				id, signature, slot, payer, raw_data, has_errors, error, created_at`

		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Signature,
			m.Slot,
			m.Payer,
			m.Data,
			m.HasErrors,
			m.Error,
			m.CreatedAt.UTC(),
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, transaction.ErrTransactionExists)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, signature string) (*model, error) {
	res := &model{}

	query := `SELECT id, signature, slot, payer, raw_data, has_errors, error, created_at FROM ` + tableName + `
		WHERE signature = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, signature)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, transaction.ErrTransactionNotFound)
	}
	return res, nil
}

func dbGetAllByPayer(ctx context.Context, db *sqlx.DB, payer string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*model, error) {
	var res []*model

	stmt, opts := query.PaginateQuery(
		`SELECT id, signature, slot, payer, raw_data, has_errors, error, created_at FROM `+tableName+`
		WHERE (payer = $1)`,
		[]interface{}{payer},
		cursor,
		limit,
		direction,
	)

	err := db.SelectContext(ctx, &res, stmt, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, transaction.ErrTransactionNotFound)
	}

	if len(res) == 0 {
		return nil, transaction.ErrTransactionNotFound
	}
	return res, nil
}

func dbGetLatestSlot(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res sql.NullInt64

	query := `SELECT MAX(slot) FROM ` + tableName

	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}
	return uint64(res.Int64), nil
}
