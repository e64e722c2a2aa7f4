package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tipsea/tipsea-solana/pkg/retry/backoff"
)

func TestRetry(t *testing.T) {
	sleeperImpl = &testSleeper{}
	defer func() { sleeperImpl = realSleeper{} }()

	retriable := errors.New("retriable")
	isRetriable := func(err error) bool { return err == retriable }

	// Happy path always goes through
	attempts, err := Retry(func() error { return nil }, Limit(5), RetriableIf(isRetriable))
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)

	attempts, err = Retry(func() error { return errors.New("unknown") }, Limit(5), RetriableIf(isRetriable))
	assert.EqualError(t, err, "unknown")
	assert.EqualValues(t, 1, attempts)

	attempts, err = Retry(func() error { return retriable }, Limit(5), RetriableIf(isRetriable))
	assert.Equal(t, retriable, err)
	assert.EqualValues(t, 5, attempts)

	var calls int
	attempts, err = Retry(
		func() error {
			calls++
			if calls < 3 {
				return retriable
			}
			return nil
		},
		Limit(5),
		Backoff(backoff.Constant(time.Millisecond), time.Second),
	)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, sleeperImpl.(*testSleeper).sleepTimes)
}

func TestRealSleeper(t *testing.T) {
	start := time.Now()
	n, err := Retry(func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(100*time.Millisecond), 100*time.Millisecond),
	)

	assert.Error(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 100*time.Millisecond <= time.Since(start))
}
