// Package lock provides in-process keyed mutexes.
//
// The ledger coordinators use one mutex per customer (and per bank account) so
// that read-balance / compute / append never interleaves for the same key in a
// single-instance deployment. The database row lock remains the authoritative
// guard; this keeps contention out of the database on the hot path.
package lock

import (
	"sort"
	"sync"
)

// Keyed hands out one mutex per string key.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates an empty keyed mutex set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key.
func (k *Keyed) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *Keyed) Unlock(key string) {
	k.get(key).Unlock()
}

// WithLock runs fn while holding the mutex for key.
func (k *Keyed) WithLock(key string, fn func() error) error {
	m := k.get(key)
	m.Lock()
	defer m.Unlock()
	return fn()
}

// WithLockAll runs fn while holding the mutexes for every key.
// Keys are locked in sorted order to avoid deadlocks between callers
// that touch overlapping key sets.
func (k *Keyed) WithLockAll(keys []string, fn func() error) error {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	for _, key := range uniq {
		k.get(key).Lock()
	}
	defer func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			k.get(uniq[i]).Unlock()
		}
	}()

	return fn()
}
