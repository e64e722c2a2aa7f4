package test

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive

	"github.com/tipsea/tipsea-solana/pkg/retry"
	"github.com/tipsea/tipsea-solana/pkg/retry/backoff"
)

const (
	repository = "postgres"
	tag        = "14-alpine"

	// Containers outliving a crashed test run are killed after this long
	containerTTL = 120 * time.Second

	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"
)

// StartPostgresDB runs a throwaway postgres container and returns a client
// connected to it. closeFunc removes the container.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: repository,
		Tag:        tag,
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start resource")
	}

	closeFunc = func() {
		_ = pool.Purge(resource)
	}

	// Expire never returns an error
	_ = resource.Expire(uint(containerTTL.Seconds()))

	url := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user, password, resource.GetHostPort("5432/tcp"), dbname,
	)

	_, err = retry.Retry(
		func() error {
			db, err = sql.Open("pgx", url)
			if err != nil {
				return err
			}
			return db.Ping()
		},
		retry.Limit(50),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	return db, closeFunc, nil
}
