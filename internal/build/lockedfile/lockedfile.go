// Package lockedfile provides a file-backed mutex guarding build
// directories against concurrent invocations.
package lockedfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mutex is a mutual exclusion lock backed by a lock file.
type Mutex struct {
	path string
}

// MutexAt returns a Mutex that locks the file at path.
func MutexAt(path string) *Mutex {
	return &Mutex{path: path}
}

// Lock acquires the lock, blocking until it is free, and returns the
// function releasing it.
func (m *Mutex) Lock() (unlock func(), err error) {
	f, err := os.OpenFile(m.path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", m.path, err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
