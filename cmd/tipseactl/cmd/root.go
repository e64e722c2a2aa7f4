package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pg "github.com/tipsea/tipsea-solana/pkg/database/postgres"
	"github.com/tipsea/tipsea-solana/pkg/ledger"
	"github.com/tipsea/tipsea-solana/pkg/ledger/native"
	"github.com/tipsea/tipsea-solana/pkg/metrics"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/client"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/data"
	"github.com/tipsea/tipsea-solana/pkg/tipsea/program"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
	storageAwsIam   = "aws-iam"

	envPrefix = "TIPSEACTL"
)

// settings are resolved from flags, TIPSEACTL_ prefixed environment variables
// and the optional config file, in that order of precedence.
type settings struct {
	LogLevel        string `mapstructure:"log-level"`
	Storage         string `mapstructure:"storage"`
	AppName         string `mapstructure:"app-name"`
	NewRelicLicense string `mapstructure:"new-relic-license"`

	DbHost         string `mapstructure:"db-host"`
	DbPort         int    `mapstructure:"db-port"`
	DbUser         string `mapstructure:"db-user"`
	DbPassword     string `mapstructure:"db-password"`
	DbName         string `mapstructure:"db-name"`
	DbMaxOpenConns int    `mapstructure:"db-max-open-conns"`
	DbMaxIdleConns int    `mapstructure:"db-max-idle-conns"`
}

var (
	configPath string
	cfg        settings

	log          *logrus.Entry
	nrApp        *newrelic.Application
	nrTxn        *newrelic.Transaction
	dataProvider data.Provider
	bank         *ledger.Bank
	tipseaClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:                "tipseactl",
	Short:              "Utility for running tipsea funds against a local ledger",
	PersistentPreRunE:  rootPreRun,
	PersistentPostRunE: rootPostRun,
	SilenceUsage:       true,
}

func Execute() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "tipseactl.yaml", "configuration file path")
	flags.String("log-level", "info", "log level")
	flags.String("storage", storageMemory, "ledger storage: memory, postgres or aws-iam")
	flags.String("app-name", "tipseactl", "application name reported to new relic")
	flags.String("new-relic-license", "", "new relic license key, disabled when empty")

	flags.String("db-host", "localhost", "postgres host")
	flags.Int("db-port", 5432, "postgres port")
	flags.String("db-user", "postgres", "postgres user")
	flags.String("db-password", "", "postgres password, unused with aws-iam")
	flags.String("db-name", "tipsea", "postgres database")
	flags.Int("db-max-open-conns", 10, "")
	flags.Int("db-max-idle-conns", 5, "")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func rootPreRun(cmd *cobra.Command, _ []string) (err error) {
	if err := loadSettings(cmd); err != nil {
		return err
	}

	if len(cfg.NewRelicLicense) > 0 {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(cfg.AppName),
			newrelic.ConfigLicense(cfg.NewRelicLicense),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}
	}

	configureLogger()

	runID := uuid.New().String()
	log = logrus.StandardLogger().WithFields(logrus.Fields{
		"type":    "tipseactl",
		"command": cmd.Name(),
		"run_id":  runID,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if nrApp != nil {
		nrTxn = nrApp.StartTransaction("tipseactl " + cmd.Name())
		nrTxn.AddAttribute("run_id", runID)
		ctx = newrelic.NewContext(ctx, nrTxn)
	}
	ctx = metrics.NewContext(ctx, nrApp)

	dataProvider, err = newDataProvider()
	if err != nil {
		return err
	}

	bank, err = ledger.NewBank(ctx, ledger.WithEnvConfigs(), dataProvider)
	if err != nil {
		return errors.Wrap(err, "error initializing ledger")
	}
	native.Register(bank)
	program.New(program.WithEnvConfigs()).Register(bank)

	tipseaClient, err = client.New(ctx, client.WithEnvConfigs(), bank)
	if err != nil {
		return errors.Wrap(err, "error initializing client")
	}

	cmd.SetContext(ctx)

	log.WithField("storage", cfg.Storage).Debug("ledger ready")
	return nil
}

func rootPostRun(_ *cobra.Command, _ []string) error {
	if nrTxn != nil {
		nrTxn.End()
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
	return nil
}

func loadSettings(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "error binding flags")
	}

	// An explicitly set config file that does not exist is an error, the
	// default one is optional.
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "error reading config")
		}
	} else if !os.IsNotExist(err) || cmd.Flags().Changed("config") {
		return errors.Wrapf(err, "error checking config %s", configPath)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "error unmarshalling config")
	}
	return nil
}

func configureLogger() {
	if nrApp != nil {
		logrus.SetFormatter(metrics.NewLogForwardingFormatter(nrApp, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", cfg.LogLevel).Warn("unknown log level, using debug")
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}

func newDataProvider() (data.Provider, error) {
	dbConfig := &pg.Config{
		User:               cfg.DbUser,
		Host:               cfg.DbHost,
		Password:           cfg.DbPassword,
		Port:               cfg.DbPort,
		DbName:             cfg.DbName,
		MaxOpenConnections: cfg.DbMaxOpenConns,
		MaxIdleConnections: cfg.DbMaxIdleConns,
	}

	switch cfg.Storage {
	case storageMemory:
		return data.NewTestDataProvider(), nil
	case storagePostgres:
		provider, err := data.NewDatabaseProvider(dbConfig)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to postgres")
		}
		return provider, nil
	case storageAwsIam:
		awsConfig, err := external.LoadDefaultAWSConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to init v2 aws sdk")
		}

		provider, err := data.NewAwsIamDatabaseProvider(dbConfig, awsConfig)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to postgres with iam auth")
		}
		return provider, nil
	default:
		return nil, errors.Errorf("unknown storage: %s", cfg.Storage)
	}
}
