package store

import (
	"context"
	"fmt"
	"sync"
)

// pathLock is a mutex whose acquisition can be abandoned when a context is
// done. Capacity one: holding the lock means owning the single slot.
type pathLock chan struct{}

var (
	locksMu sync.Mutex
	locks   = make(map[string]pathLock)
)

// lockFor returns the lock shared by every Store opened on path.
func lockFor(path string) pathLock {
	locksMu.Lock()
	defer locksMu.Unlock()

	l, ok := locks[path]
	if !ok {
		l = make(pathLock, 1)
		locks[path] = l
	}
	return l
}

func (l pathLock) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: wait for document lock: %w", ErrStorageUnavailable, ctx.Err())
	}
}

func (l pathLock) release() {
	<-l
}
