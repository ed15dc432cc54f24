package models

import (
	"errors"
	"os"
)

// ErrEmptyPath is returned when a task is built without a path.
var ErrEmptyPath = errors.New("file task path is required")

// PathEntry is a single child produced by listing a directory.
type PathEntry struct {
	Path  string // Path joined with the listed directory
	IsDir bool   // True when the entry is a directory (symlinks are never directories here)
}

// FileTask is a file scheduled for scanning. Handle is an optional payload slot
// filled during traversal when prefetch is enabled. A task has exactly one owner
// at a time; ownership moves with the task across channels.
type FileTask struct {
	Path   string   // Path of the file to scan
	Handle *os.File // Handle opened during traversal, nil when not prefetched

	release func() // called once when Handle leaves the slot
}

// NewFileTask creates a task for path without a prefetched handle.
func NewFileTask(path string) FileTask {
	return FileTask{Path: path}
}

// Validate checks that the task carries a path.
func (t *FileTask) Validate() error {
	if t.Path == "" {
		return ErrEmptyPath
	}
	return nil
}

// Prefetched reports whether a handle is attached to the task.
func (t *FileTask) Prefetched() bool {
	return t.Handle != nil
}

// Attach fills the payload slot with a handle opened during traversal.
// release, if not nil, runs exactly once when the handle leaves the slot,
// either through Open or Release.
func (t *FileTask) Attach(h *os.File, release func()) {
	t.Handle = h
	t.release = release
}

// Open returns the prefetched handle, consuming the slot, or opens the path.
// The caller owns the returned file and must close it.
func (t *FileTask) Open() (*os.File, error) {
	if t.Handle != nil {
		f := t.Handle
		t.clearSlot()
		return f, nil
	}
	return os.Open(t.Path)
}

// Release closes a prefetched handle that will never be consumed.
func (t *FileTask) Release() {
	if t.Handle != nil {
		t.Handle.Close()
		t.clearSlot()
	}
}

func (t *FileTask) clearSlot() {
	t.Handle = nil
	if t.release != nil {
		t.release()
		t.release = nil
	}
}
