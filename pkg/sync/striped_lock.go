package sync

import (
	"sort"
	base "sync"
)

const vnodesPerStripe = 200

// StripedLock consistently maps account keys onto a fixed set of RW locks, so
// transactions touching disjoint accounts run concurrently.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(stripes, vnodesPerStripe),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.hashRing.stripe(key)]
}

// TryLockAll attempts to acquire the write lock for every writable key and the
// read lock for every readonly key without blocking. Either all locks are
// acquired and the returned function releases them, or none are held and ok is
// false. Keys that share a stripe are only locked once, with the write lock
// taking precedence.
func (l *StripedLock) TryLockAll(writable, readonly [][]byte) (unlock func(), ok bool) {
	stripes := make(map[int]bool)
	for _, key := range readonly {
		stripes[l.hashRing.stripe(key)] = false
	}
	for _, key := range writable {
		stripes[l.hashRing.stripe(key)] = true
	}

	ordered := make([]int, 0, len(stripes))
	for stripe := range stripes {
		ordered = append(ordered, stripe)
	}
	sort.Ints(ordered)

	release := func(acquired []int) {
		for _, stripe := range acquired {
			if stripes[stripe] {
				l.locks[stripe].Unlock()
			} else {
				l.locks[stripe].RUnlock()
			}
		}
	}

	for i, stripe := range ordered {
		var locked bool
		if stripes[stripe] {
			locked = l.locks[stripe].TryLock()
		} else {
			locked = l.locks[stripe].TryRLock()
		}

		if !locked {
			release(ordered[:i])
			return nil, false
		}
	}

	return func() { release(ordered) }, true
}
