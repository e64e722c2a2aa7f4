package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/tipsea/tipsea-solana/pkg/config"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

// Config is an in memory config, used for overrides and tests. A nil value
// means no value is set.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	induced  bool
	shutdown bool
}

func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.induced:
		return nil, errDeveloperInduced
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// SetValue sets the value returned by subsequent Get calls. Setting nil
// clears it.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// InduceErrors toggles whether Get simulates a failure to load the value.
func (c *Config) InduceErrors(induce bool) {
	c.mu.Lock()
	c.induced = induce
	c.mu.Unlock()
}
