// Package concurrency serializes work per key inside one process.
package concurrency

import (
	"context"
	"sync"
)

// lockEntry is a single-slot channel plus the number of callers holding or
// waiting on it. The entry is dropped when refs reaches zero.
type lockEntry struct {
	ch   chan struct{}
	refs int
}

// LockManager hands out one lock per key. Locks are single-slot channels
// so a waiter can give up when its context ends.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLockManager creates an empty LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*lockEntry)}
}

func (lm *LockManager) ref(key string) *lockEntry {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	e, ok := lm.locks[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		lm.locks[key] = e
	}
	e.refs++
	return e
}

func (lm *LockManager) unref(key string, e *lockEntry) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(lm.locks, key)
	}
}

func (lm *LockManager) releaser(key string, e *lockEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			lm.unref(key, e)
		})
	}
}

// Acquire blocks until the lock for key is held or ctx is done. The
// returned release must be called exactly once.
func (lm *LockManager) Acquire(ctx context.Context, key string) (release func(), err error) {
	e := lm.ref(key)
	select {
	case e.ch <- struct{}{}:
		return lm.releaser(key, e), nil
	case <-ctx.Done():
		lm.unref(key, e)
		return nil, ctx.Err()
	}
}

// TryAcquire takes the lock for key only if it is free
func (lm *LockManager) TryAcquire(key string) (release func(), ok bool) {
	e := lm.ref(key)
	select {
	case e.ch <- struct{}{}:
		return lm.releaser(key, e), true
	default:
		lm.unref(key, e)
		return nil, false
	}
}

// Len returns the number of keys currently held or waited on
func (lm *LockManager) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
