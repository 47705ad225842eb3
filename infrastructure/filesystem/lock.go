package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock file placed in an output directory during a run
const LockFileName = ".chaptercut.lock"

// ErrLocked is returned when another run holds the lock
var ErrLocked = errors.New("output directory is in use by another run")

// Locker takes per-directory advisory locks
type Locker struct{}

// NewLocker creates a new Locker
func NewLocker() *Locker {
	return &Locker{}
}

// Lock creates dir if needed and takes its lock without waiting
func (l *Locker) Lock(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}

	// the lock file stays behind; removing it would let a waiting run lock a different inode
	return lock.Unlock, nil
}
