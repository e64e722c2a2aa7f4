package retry

import (
	"math/rand"
	"time"

	"github.com/tipsea/tipsea-solana/pkg/retry/backoff"
)

// Strategy determines whether a failed action should be attempted again. It
// may delay before returning.
type Strategy func(attempts uint, err error) bool

// Limit caps the total number of attempts, including the first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableIf only retries errors the predicate matches, for typed errors
// that can't be compared with errors.Is.
func RetriableIf(isRetriable func(err error) bool) Strategy {
	return func(_ uint, err error) bool {
		return isRetriable(err)
	}
}

// Backoff sleeps for the strategy's delay, capped at maxBackoff, before the
// next attempt.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay randomly moved by up to
// jitter (a fraction of the delay) either way, so that contending callers
// spread out.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = realSleeper{}
