package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLock_SerializesSameKey(t *testing.T) {
	k := NewKeyed()

	counter := 0
	var wg sync.WaitGroup
	const workers = 100
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = k.WithLock("customer:1", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestWithLock_DifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyed()

	k.Lock("a")
	done := make(chan struct{})
	go func() {
		_ = k.WithLock("b", func() error { return nil })
		close(done)
	}()
	<-done
	k.Unlock("a")
}

func TestWithLock_PropagatesError(t *testing.T) {
	k := NewKeyed()

	err := k.WithLock("x", func() error { return assert.AnError })
	require.ErrorIs(t, err, assert.AnError)

	// The mutex was released despite the error.
	reacquired := make(chan struct{})
	go func() {
		k.Lock("x")
		k.Unlock("x")
		close(reacquired)
	}()
	<-reacquired
}

func TestWithLockAll_OverlappingKeySetsDoNotDeadlock(t *testing.T) {
	k := NewKeyed()

	var wg sync.WaitGroup
	const rounds = 200
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = k.WithLockAll([]string{"customer:1", "bank:1"}, func() error { return nil })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			// Reversed acquisition order; sorted locking must prevent deadlock.
			_ = k.WithLockAll([]string{"bank:1", "customer:1"}, func() error { return nil })
		}
	}()
	wg.Wait()
}

func TestWithLockAll_DeduplicatesKeys(t *testing.T) {
	k := NewKeyed()

	called := false
	err := k.WithLockAll([]string{"a", "a", "a"}, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
