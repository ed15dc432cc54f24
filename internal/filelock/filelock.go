// Package filelock provides advisory cross-process locking for files that
// several rr processes may append to at the same time.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Appender appends to a file while holding an exclusive lock for the
// duration of each Write, so that records from concurrent processes never
// interleave. The lock file is the target path with ".lock" appended.
//
// Appender is safe for concurrent use.
type Appender struct {
	mu   sync.Mutex
	file *os.File
	lock *FileLock
}

// OpenAppender opens (creating if needed) path for appending. Missing parent
// directories are created.
func OpenAppender(path string) (*Appender, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &Appender{
		file: file,
		lock: NewFileLock(path + ".lock"),
	}, nil
}

// Write appends p as one locked record.
func (a *Appender) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return 0, os.ErrClosed
	}

	if err := a.lock.Lock(); err != nil {
		return 0, err
	}
	defer a.lock.Unlock()

	return a.file.Write(p)
}

// Close syncs and closes the file. Subsequent writes fail with os.ErrClosed.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}

	file := a.file
	a.file = nil
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync %s: %w", file.Name(), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", file.Name(), err)
	}
	return nil
}
