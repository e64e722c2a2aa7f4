package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsea/tipsea-solana/pkg/config/memory"
)

func TestUint64Config(t *testing.T) {
	ctx := context.Background()

	source := memory.NewConfig(nil)
	c := NewUint64Config(source, 10)

	// Return the default value when no override is set
	val, err := c.GetSafe(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, val)

	for _, raw := range []interface{}{uint64(20), uint(20), []byte("20")} {
		source.SetValue(raw)
		assert.EqualValues(t, 20, c.Get(ctx))
	}

	// The last observed value is returned on error
	source.InduceErrors(true)
	val, err = c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 20, val)
	source.InduceErrors(false)

	source.SetValue([]byte("not a number"))
	val, err = c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 20, val)

	source.SetValue(int64(30))
	_, err = c.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)

	// The default value is restored once the override is cleared
	source.SetValue(nil)
	assert.EqualValues(t, 10, c.Get(ctx))
}

func TestStringConfig(t *testing.T) {
	ctx := context.Background()

	source := memory.NewConfig(nil)
	c := NewStringConfig(source, "default")
	assert.Equal(t, "default", c.Get(ctx))

	source.SetValue("override")
	assert.Equal(t, "override", c.Get(ctx))

	source.SetValue([]byte("bytes"))
	assert.Equal(t, "bytes", c.Get(ctx))

	source.SetValue(1)
	val, err := c.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, "bytes", val)
}

func TestDurationConfig(t *testing.T) {
	ctx := context.Background()

	source := memory.NewConfig(nil)
	c := NewDurationConfig(source, time.Second)
	assert.Equal(t, time.Second, c.Get(ctx))

	source.SetValue(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, c.Get(ctx))

	source.SetValue([]byte("2m"))
	assert.Equal(t, 2*time.Minute, c.Get(ctx))

	source.SetValue([]byte("soon"))
	val, err := c.GetSafe(ctx)
	assert.Error(t, err)
	assert.Equal(t, 2*time.Minute, val)
}
