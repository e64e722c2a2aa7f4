package program

import (
	"github.com/tipsea/tipsea-solana/pkg/config"
	"github.com/tipsea/tipsea-solana/pkg/config/env"
	"github.com/tipsea/tipsea-solana/pkg/config/memory"
	"github.com/tipsea/tipsea-solana/pkg/config/wrapper"
)

const (
	envConfigPrefix = "TIPSEA_PROGRAM_"

	CreatorFeeLamportsConfigEnvName = envConfigPrefix + "CREATOR_FEE_LAMPORTS"
	defaultCreatorFeeLamports       = 300_000_000

	SellerFeeBasisPointsConfigEnvName = envConfigPrefix + "SELLER_FEE_BASIS_POINTS"
	defaultSellerFeeBasisPoints       = 300
)

type conf struct {
	creatorFeeLamports   config.Uint64
	sellerFeeBasisPoints config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			creatorFeeLamports:   env.NewUint64Config(CreatorFeeLamportsConfigEnvName, defaultCreatorFeeLamports),
			sellerFeeBasisPoints: env.NewUint64Config(SellerFeeBasisPointsConfigEnvName, defaultSellerFeeBasisPoints),
		}
	}
}

// Overrides are manually configured values, used in tests. Nil values fall
// back to defaults.
type Overrides struct {
	CreatorFeeLamports   *uint64
	SellerFeeBasisPoints *uint64
}

// WithOverrides returns configuration using the provided values
func WithOverrides(overrides *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			creatorFeeLamports:   wrapper.NewUint64Config(override(overrides.CreatorFeeLamports), defaultCreatorFeeLamports),
			sellerFeeBasisPoints: wrapper.NewUint64Config(override(overrides.SellerFeeBasisPoints), defaultSellerFeeBasisPoints),
		}
	}
}

func override(value *uint64) config.Config {
	if value == nil {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(*value)
}
