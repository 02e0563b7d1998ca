package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileLock provides exclusive cross-process locking using flock.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock for the given path.
// The lock file is created on first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (l *FileLock) Lock() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return err
	}

	l.file = f
	return nil
}

// Unlock releases the lock and closes the file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}
