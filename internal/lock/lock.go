// Package lock serialises annogen runs that share one output file.
//
// The lock is an advisory file lock held for the whole run. Acquire retries
// with a fixed backoff until the lock is free or ctx is done; Release is safe
// to call on every exit path, more than once.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"annogen/internal/diag"
	"annogen/internal/source"
)

// DefaultBackoff is the wait between two attempts to take the lock.
const DefaultBackoff = 50 * time.Millisecond

// PathFor returns the default lock file for an output file.
func PathFor(output string) string {
	return output + ".lock"
}

// Lock is an exclusive advisory lock on a file.
type Lock struct {
	mu      sync.Mutex
	fl      *flock.Flock
	backoff time.Duration
	held    bool
}

// New prepares a lock on path. Nothing is locked until Acquire.
func New(path string, backoff time.Duration) *Lock {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Lock{fl: flock.New(path), backoff: backoff}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil
	}
	ok, err := l.fl.TryLockContext(ctx, l.backoff)
	if err != nil {
		return diag.Wrap(diag.IOLockError, source.Pos{File: l.fl.Path()}, fmt.Errorf("acquire lock: %w", err))
	}
	if !ok {
		return diag.Errorf(diag.IOLockError, source.Pos{File: l.fl.Path()}, "lock is held by another process")
	}
	l.held = true
	return nil
}

// TryAcquire takes the lock only if it is free right now.
func (l *Lock) TryAcquire() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return true, nil
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, diag.Wrap(diag.IOLockError, source.Pos{File: l.fl.Path()}, fmt.Errorf("try lock: %w", err))
	}
	l.held = ok
	return ok, nil
}

// Release gives the lock to the next waiter. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	l.held = false
	if err := l.fl.Unlock(); err != nil {
		return diag.Wrap(diag.IOLockError, source.Pos{File: l.fl.Path()}, fmt.Errorf("release lock: %w", err))
	}
	return nil
}

// Held reports whether this Lock currently holds the file lock.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}
