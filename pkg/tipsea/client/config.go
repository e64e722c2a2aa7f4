package client

import (
	"time"

	"github.com/tipsea/tipsea-solana/pkg/config"
	"github.com/tipsea/tipsea-solana/pkg/config/env"
	"github.com/tipsea/tipsea-solana/pkg/config/memory"
	"github.com/tipsea/tipsea-solana/pkg/config/wrapper"
)

const (
	envConfigPrefix = "TIPSEA_CLIENT_"

	MaxSubmitAttemptsConfigEnvName = envConfigPrefix + "MAX_SUBMIT_ATTEMPTS"
	defaultMaxSubmitAttempts       = 5

	MinRetryDelayConfigEnvName = envConfigPrefix + "MIN_RETRY_DELAY"
	defaultMinRetryDelay       = 10 * time.Millisecond

	MaxRetryDelayConfigEnvName = envConfigPrefix + "MAX_RETRY_DELAY"
	defaultMaxRetryDelay       = 250 * time.Millisecond

	AddressCacheSizeConfigEnvName = envConfigPrefix + "ADDRESS_CACHE_SIZE"
	defaultAddressCacheSize       = 1024
)

type conf struct {
	maxSubmitAttempts config.Uint64
	minRetryDelay     config.Duration
	maxRetryDelay     config.Duration
	addressCacheSize  config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			maxSubmitAttempts: env.NewUint64Config(MaxSubmitAttemptsConfigEnvName, defaultMaxSubmitAttempts),
			minRetryDelay:     env.NewDurationConfig(MinRetryDelayConfigEnvName, defaultMinRetryDelay),
			maxRetryDelay:     env.NewDurationConfig(MaxRetryDelayConfigEnvName, defaultMaxRetryDelay),
			addressCacheSize:  env.NewUint64Config(AddressCacheSizeConfigEnvName, defaultAddressCacheSize),
		}
	}
}

// Overrides are manually configured values, used in tests. Zero values fall
// back to defaults.
type Overrides struct {
	MaxSubmitAttempts uint64
	MinRetryDelay     time.Duration
	MaxRetryDelay     time.Duration
	AddressCacheSize  uint64
}

// WithOverrides returns configuration using the provided values
func WithOverrides(overrides *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			maxSubmitAttempts: wrapper.NewUint64Config(uint64Override(overrides.MaxSubmitAttempts), defaultMaxSubmitAttempts),
			minRetryDelay:     wrapper.NewDurationConfig(durationOverride(overrides.MinRetryDelay), defaultMinRetryDelay),
			maxRetryDelay:     wrapper.NewDurationConfig(durationOverride(overrides.MaxRetryDelay), defaultMaxRetryDelay),
			addressCacheSize:  wrapper.NewUint64Config(uint64Override(overrides.AddressCacheSize), defaultAddressCacheSize),
		}
	}
}

func uint64Override(value uint64) config.Config {
	if value == 0 {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(value)
}

func durationOverride(value time.Duration) config.Config {
	if value == 0 {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(value)
}
