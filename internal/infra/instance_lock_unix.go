//go:build !windows

package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// InstanceLock is an exclusive, non-blocking flock on a file in the user
// data directory. The kernel drops it when the process dies.
type InstanceLock struct {
	path string
	file *os.File
}

// NewInstanceLock creates a lock backed by path.
func NewInstanceLock(path string) *InstanceLock {
	return &InstanceLock{path: path}
}

// TryAcquire takes the lock. It returns false when another process holds it.
func (l *InstanceLock) TryAcquire() (bool, error) {
	if l.file != nil {
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return false, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	// Informational only; the flock is what matters.
	_ = f.Truncate(0)
	_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)

	l.file = f
	return true, nil
}

// Release drops the lock. Safe to call when not held.
func (l *InstanceLock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}
