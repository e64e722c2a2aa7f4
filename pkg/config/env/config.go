package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/tipsea/tipsea-solana/pkg/config"
	"github.com/tipsea/tipsea-solana/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig returns a config holding the raw bytes of an environment
// variable, read once at construction. Keys are upper cased.
func NewConfig(key string) config.Config {
	return &conf{
		val: os.Getenv(strings.ToUpper(key)),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(c.val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig creates a env-based duration config
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
