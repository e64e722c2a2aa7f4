package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jmoiron/sqlx"

	pg "github.com/tipsea/tipsea-solana/pkg/database/postgres"
	"github.com/tipsea/tipsea-solana/pkg/database/query"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/account"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction"

	account_memory_client "github.com/tipsea/tipsea-solana/pkg/tipsea/data/account/memory"
	transaction_memory_client "github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction/memory"

	account_postgres_client "github.com/tipsea/tipsea-solana/pkg/tipsea/data/account/postgres"
	transaction_postgres_client "github.com/tipsea/tipsea-solana/pkg/tipsea/data/transaction/postgres"
)

// Provider bundles the stores backing a ledger.
type Provider interface {
	GetAccountStore() account.Store
	GetTransactionStore() transaction.Store

	// GetTransactionHistory pages through the transactions paid for by an
	// account, oldest first unless overridden.
	GetTransactionHistory(ctx context.Context, payer string, opts ...query.Option) ([]*transaction.Record, error)

	// ExecuteInTx applies every store write fn makes through the provided
	// context atomically. In memory stores apply writes as they are made.
	ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type provider struct {
	db *sqlx.DB

	accounts     account.Store
	transactions transaction.Store
}

// NewDatabaseProvider returns a Provider backed by postgres using
// username/password credentials.
func NewDatabaseProvider(dbConfig *pg.Config) (Provider, error) {
	db, err := pg.NewWithUsernameAndPassword(
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		fmt.Sprint(dbConfig.Port),
		dbConfig.DbName,
	)
	if err != nil {
		return nil, err
	}

	return newPostgresProvider(db, dbConfig), nil
}

// NewAwsIamDatabaseProvider returns a Provider backed by an RDS postgres
// cluster using IAM authentication.
func NewAwsIamDatabaseProvider(dbConfig *pg.Config, awsConfig aws.Config) (Provider, error) {
	db, err := pg.NewWithAwsIam(
		dbConfig.User,
		dbConfig.Host,
		fmt.Sprint(dbConfig.Port),
		dbConfig.DbName,
		awsConfig,
	)
	if err != nil {
		return nil, err
	}

	return newPostgresProvider(db, dbConfig), nil
}

// NewTestDataProvider returns a Provider backed by in memory stores.
func NewTestDataProvider() Provider {
	return &provider{
		accounts:     account_memory_client.New(),
		transactions: transaction_memory_client.New(),
	}
}

func newPostgresProvider(db *sql.DB, dbConfig *pg.Config) Provider {
	if dbConfig.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(dbConfig.MaxOpenConnections)
	}
	if dbConfig.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(dbConfig.MaxIdleConnections)
	}
	db.SetConnMaxIdleTime(time.Hour)
	db.SetConnMaxLifetime(time.Hour)

	return &provider{
		db: sqlx.NewDb(db, "pgx"),

		accounts:     account_postgres_client.New(db),
		transactions: transaction_postgres_client.New(db),
	}
}

func (p *provider) GetAccountStore() account.Store {
	return p.accounts
}

func (p *provider) GetTransactionStore() transaction.Store {
	return p.transactions
}

func (p *provider) GetTransactionHistory(ctx context.Context, payer string, opts ...query.Option) ([]*transaction.Record, error) {
	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	return p.transactions.GetAllByPayer(ctx, payer, req.Cursor, req.Limit, req.SortBy)
}

func (p *provider) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.db == nil {
		return fn(ctx)
	}
	return pg.ExecuteTxWithinCtx(ctx, p.db, sql.LevelDefault, fn)
}
