package sync

import (
	"fmt"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 256
	operationCount := 10000

	l := NewStripedLock(4)

	var workerWg base.WaitGroup
	startChan := make(chan struct{}, 0)
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		workerWg.Add(1)

		go func(workerID int) {
			defer workerWg.Done()

			var opWg base.WaitGroup
			key := []byte(fmt.Sprintf("worker%d", workerID))
			for j := 0; j < operationCount; j++ {
				opWg.Add(1)

				go func() {
					defer opWg.Done()

					select {
					case <-startChan:
					}

					mu := l.Get([]byte(key))
					mu.Lock()
					data[workerID]++
					mu.Unlock()
				}()
			}
			opWg.Wait()
		}(i)
	}

	close(startChan)
	workerWg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_TryLockAll(t *testing.T) {
	l := NewStripedLock(1024)

	a := []byte("account-a")
	b := []byte("account-b")
	for i := 0; l.hashRing.stripe(a) == l.hashRing.stripe(b); i++ {
		b = []byte(fmt.Sprintf("account-b%d", i))
	}

	unlockA, ok := l.TryLockAll([][]byte{a}, nil)
	assert.True(t, ok)

	// Writers and readers of a held key are rejected without blocking
	_, ok = l.TryLockAll([][]byte{a}, nil)
	assert.False(t, ok)
	_, ok = l.TryLockAll(nil, [][]byte{a})
	assert.False(t, ok)

	unlockA()

	// Readers share a key
	unlockRead1, ok := l.TryLockAll([][]byte{b}, [][]byte{a})
	assert.True(t, ok)
	unlockRead2, ok := l.TryLockAll(nil, [][]byte{a})
	assert.True(t, ok)

	// A failed attempt leaves nothing held
	_, ok = l.TryLockAll([][]byte{a, b}, nil)
	assert.False(t, ok)

	unlockRead1()
	unlockRead2()

	// Duplicate keys, and keys that are both readonly and writable, lock once
	unlock, ok := l.TryLockAll([][]byte{a, a, b}, [][]byte{a, b})
	assert.True(t, ok)
	unlock()

	unlock, ok = l.TryLockAll([][]byte{a, b}, nil)
	assert.True(t, ok)
	unlock()
}
