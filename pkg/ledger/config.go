package ledger

import (
	"github.com/tipsea/tipsea-solana/pkg/config"
	"github.com/tipsea/tipsea-solana/pkg/config/env"
	"github.com/tipsea/tipsea-solana/pkg/config/memory"
	"github.com/tipsea/tipsea-solana/pkg/config/wrapper"
)

const (
	envConfigPrefix = "LEDGER_"

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	RecentBlockhashesConfigEnvName = envConfigPrefix + "RECENT_BLOCKHASHES"
	defaultRecentBlockhashes       = 150

	FaucetSeedConfigEnvName = envConfigPrefix + "FAUCET_SEED"
	defaultFaucetSeed       = "tipsea-ledger-faucet"

	FaucetLamportsConfigEnvName = envConfigPrefix + "FAUCET_LAMPORTS"
	defaultFaucetLamports       = 500_000_000_000_000_000

	AirdropsPerMinuteConfigEnvName = envConfigPrefix + "AIRDROPS_PER_MINUTE"
	defaultAirdropsPerMinute       = 0
)

type conf struct {
	lockStripes       config.Uint64
	recentBlockhashes config.Uint64
	faucetSeed        config.String
	faucetLamports    config.Uint64
	airdropsPerMinute config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:       env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			recentBlockhashes: env.NewUint64Config(RecentBlockhashesConfigEnvName, defaultRecentBlockhashes),
			faucetSeed:        env.NewStringConfig(FaucetSeedConfigEnvName, defaultFaucetSeed),
			faucetLamports:    env.NewUint64Config(FaucetLamportsConfigEnvName, defaultFaucetLamports),
			airdropsPerMinute: env.NewUint64Config(AirdropsPerMinuteConfigEnvName, defaultAirdropsPerMinute),
		}
	}
}

// Overrides are manually configured values, used in tests
type Overrides struct {
	LockStripes       uint64
	RecentBlockhashes uint64
	FaucetSeed        string
	AirdropsPerMinute uint64
}

// WithOverrides returns configuration using the provided values, falling back
// to defaults for anything left unset
func WithOverrides(overrides *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:       wrapper.NewUint64Config(uint64Override(overrides.LockStripes), defaultLockStripes),
			recentBlockhashes: wrapper.NewUint64Config(uint64Override(overrides.RecentBlockhashes), defaultRecentBlockhashes),
			faucetSeed:        wrapper.NewStringConfig(stringOverride(overrides.FaucetSeed), defaultFaucetSeed),
			faucetLamports:    wrapper.NewUint64Config(memory.NewConfig(nil), defaultFaucetLamports),
			airdropsPerMinute: wrapper.NewUint64Config(uint64Override(overrides.AirdropsPerMinute), defaultAirdropsPerMinute),
		}
	}
}

func uint64Override(value uint64) config.Config {
	if value == 0 {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(value)
}

func stringOverride(value string) config.Config {
	if len(value) == 0 {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(value)
}
