package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnlimited(t *testing.T) {
	l := NewPerMinuteLimiter(0)
	for i := 0; i < 10000; i++ {
		assert.True(t, l.Allow("key"))
	}
}

func TestPerMinuteLimiter(t *testing.T) {
	l := NewPerMinuteLimiter(2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// Keys are limited independently
	assert.True(t, l.Allow("b"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("b"))
}
