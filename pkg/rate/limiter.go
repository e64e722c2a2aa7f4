package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter limits operations partitioned by a key.
type Limiter interface {
	Allow(key string) bool
}

type localLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPerMinuteLimiter returns an in memory Limiter allowing up to n operations
// per key each minute, all of which may happen at once. A zero n never limits.
func NewPerMinuteLimiter(n uint64) Limiter {
	if n == 0 {
		return Unlimited{}
	}

	return &localLimiter{
		limit:    rate.Every(time.Minute / time.Duration(n)),
		burst:    int(n),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow implements Limiter.Allow.
func (l *localLimiter) Allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Unlimited never limits operations.
type Unlimited struct{}

// Allow implements Limiter.Allow.
func (Unlimited) Allow(string) bool {
	return true
}
