package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tipsea/tipsea-solana/pkg/config"
)

func TestConfig(t *testing.T) {
	const key = "ENV_CONFIG_TEST_VAR"
	ctx := context.Background()

	t.Setenv(key, "value")
	v, err := NewConfig(key).Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	t.Setenv(key, "")
	v, err = NewConfig(key).Get(ctx)
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ENV_CONFIG_TEST_UINT64", "42")
	t.Setenv("ENV_CONFIG_TEST_DURATION", "150ms")
	t.Setenv("ENV_CONFIG_TEST_BAD_UINT64", "-1")

	assert.EqualValues(t, 42, NewUint64Config("ENV_CONFIG_TEST_UINT64", 1).Get(ctx))
	assert.Equal(t, 150*time.Millisecond, NewDurationConfig("env_config_test_duration", time.Second).Get(ctx))
	assert.Equal(t, "fallback", NewStringConfig("ENV_CONFIG_TEST_UNSET", "fallback").Get(ctx))

	bad := NewUint64Config("ENV_CONFIG_TEST_BAD_UINT64", 7)
	val, err := bad.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)
}
