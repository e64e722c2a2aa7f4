package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/config"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("value")
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	c.InduceErrors(true)
	_, err = c.Get(ctx)
	assert.Equal(t, errDeveloperInduced, err)

	c.InduceErrors(false)
	c.SetValue(nil)
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}
