package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// QueueWalker traverses breadth-first using a self-feeding directory worklist.
type QueueWalker struct {
	base
}

// NewQueueWalker creates a QueueWalker.
func NewQueueWalker(opts Options) *QueueWalker {
	return &QueueWalker{base{opts: opts}}
}

// Walk lists root and its subdirectories, forwarding accepted files to out.
func (w *QueueWalker) Walk(ctx context.Context, root string, out queue.Channel[models.FileTask]) error {
	defer out.Close()

	kind, walkRoot, ok := w.resolve(root)
	if !ok {
		return nil
	}
	if kind == fileutil.KindFile {
		return w.forward(root, out)
	}

	// The walker is the only producer on dirs besides this seed, so an empty
	// poll means every directory has been listed.
	dirs := queue.NewUnbounded[string]()
	if err := dirs.Send(walkRoot); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			w.debugf("traversal cancelled with %d directories pending: %v", dirs.Len(), err)
			return nil
		}

		dir, ok, _ := dirs.TryReceive()
		if !ok {
			return nil
		}

		entries, err := w.listDir(walkRoot, dir)
		if err != nil {
			w.warnf("cannot list %s: %v", dir, err)
			w.dirSkipped()
			continue
		}
		w.dirListed()

		for _, entry := range entries {
			if entry.IsDir {
				// dirs is unbounded and never closed or abandoned while the
				// walk runs, so a failure here is a broken invariant.
				if err := dirs.Send(entry.Path); err != nil {
					return fmt.Errorf("queue directory %s: %w", entry.Path, err)
				}
				continue
			}
			if err := w.forward(entry.Path, out); err != nil {
				return err
			}
		}
	}
}

// listDir reads dir and returns the entries the filter accepts, classified as
// files or directories. Symlinks and special files are dropped.
func (w *QueueWalker) listDir(root, dir string) ([]models.PathEntry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PathEntry, 0, len(des))
	for _, d := range des {
		path := filepath.Join(dir, d.Name())
		switch fileutil.Classify(d) {
		case fileutil.KindDir:
			if w.opts.Filter.AcceptDir(d.Name()) {
				entries = append(entries, models.PathEntry{Path: path, IsDir: true})
			}
		case fileutil.KindFile:
			if w.opts.Filter.AcceptFile(fileutil.Rel(root, path)) {
				entries = append(entries, models.PathEntry{Path: path})
			}
		default:
			w.debugf("skipping %s: not a regular file or directory", path)
		}
	}
	return entries, nil
}
