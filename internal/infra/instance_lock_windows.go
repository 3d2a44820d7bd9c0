//go:build windows

package infra

import (
	"crypto/md5"
	"encoding/hex"
	"errors"

	"golang.org/x/sys/windows"
)

// InstanceLock is a named Win32 mutex. The name is derived from the lock
// path so separate user data directories do not collide.
type InstanceLock struct {
	name   string
	handle windows.Handle
}

// NewInstanceLock creates a lock for path.
func NewInstanceLock(path string) *InstanceLock {
	hash := md5.Sum([]byte("ariang-instance-" + path))
	return &InstanceLock{name: "Local\\AriaNgGUI-" + hex.EncodeToString(hash[:])[:12]}
}

// TryAcquire takes the lock. It returns false when another process holds it.
func (l *InstanceLock) TryAcquire() (bool, error) {
	if l.handle != 0 {
		return true, nil
	}
	ptr, err := windows.UTF16PtrFromString(l.name)
	if err != nil {
		return false, err
	}

	h, err := windows.CreateMutex(nil, false, ptr)
	// CreateMutex reports ERROR_ALREADY_EXISTS through err even though the
	// handle is valid; that is the secondary-instance case, not a failure.
	if err != nil && !errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		return false, err
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		_ = windows.CloseHandle(h)
		return false, nil
	}

	l.handle = h
	return true, nil
}

// Release closes the mutex handle. Safe to call when not held.
func (l *InstanceLock) Release() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}
