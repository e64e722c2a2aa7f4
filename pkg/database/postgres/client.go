package pg

import (
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/rdsutils"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

// Config locates a postgres database and sizes its connection pool. Zero
// pool sizes keep the database/sql defaults.
type Config struct {
	User               string
	Host               string
	Password           string
	Port               int
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
}

// NewWithAwsIam opens a pool authenticated with an RDS IAM token instead of a
// password. Only provisioned Aurora clusters support IAM authentication.
//
// https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/UsingWithRDS.IAMDBAuth.Connecting.Go.html
func NewWithAwsIam(username, hostname, port, dbname string, config aws.Config) (*sql.DB, error) {
	rdsClient := rds.New(config)

	endpoint := fmt.Sprintf("%s:%s", hostname, port)
	authToken, err := rdsutils.BuildAuthToken(endpoint, rdsClient.Region, username, rdsClient.Credentials)
	if err != nil {
		return nil, err
	}

	return open(fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s",
		hostname, port, username, authToken, dbname,
	))
}

// NewWithUsernameAndPassword opens a pool authenticated with a password.
func NewWithUsernameAndPassword(username, password, hostname, port, dbname string) (*sql.DB, error) {
	// TODO: enable SSL once the deployment ships the database certificate
	return open(fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		username, password, hostname, port, dbname,
	))
}

// open connects through the New Relic instrumented pgx driver and verifies
// the connection.
func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("nrpgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
