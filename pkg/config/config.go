package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an interface for getting a raw configuration value
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a Config converted to T.
type Typed[T any] interface {
	// Get returns the latest value, the last known value on error
	Get(ctx context.Context) T

	// GetSafe is Get, with any error getting or converting the value
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

type (
	Uint64   = Typed[uint64]
	String   = Typed[string]
	Duration = Typed[time.Duration]
)
