package walker

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// RecursiveWalker traverses with filepath.WalkDir.
type RecursiveWalker struct {
	base
}

// NewRecursiveWalker creates a RecursiveWalker.
func NewRecursiveWalker(opts Options) *RecursiveWalker {
	return &RecursiveWalker{base{opts: opts}}
}

// errStopped aborts WalkDir after the consumer went away.
var errStopped = errors.New("traversal stopped")

// Walk iterates root in pre-order, forwarding accepted files to out.
func (w *RecursiveWalker) Walk(ctx context.Context, root string, out queue.Channel[models.FileTask]) error {
	defer out.Close()

	kind, walkRoot, ok := w.resolve(root)
	if !ok {
		return nil
	}
	if kind == fileutil.KindFile {
		return w.forward(root, out)
	}

	var forwardErr error
	tally := dirTally{listed: w.dirListed}
	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			tally.failed(path)
		} else {
			tally.flush()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			// A directory that could not be read; WalkDir carries on with its siblings.
			w.warnf("cannot list %s: %v", path, err)
			w.dirSkipped()
			return nil
		}

		switch fileutil.Classify(d) {
		case fileutil.KindDir:
			if path != walkRoot && !w.opts.Filter.AcceptDir(d.Name()) {
				return filepath.SkipDir
			}
			tally.entered(path)
		case fileutil.KindFile:
			if !w.opts.Filter.AcceptFile(fileutil.Rel(walkRoot, path)) {
				return nil
			}
			if err := w.forward(path, out); err != nil {
				forwardErr = err
				return errStopped
			}
		default:
			if path != walkRoot {
				w.debugf("skipping %s: not a regular file or directory", path)
			}
		}
		return nil
	})
	tally.flush()

	switch {
	case forwardErr != nil:
		return forwardErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		w.debugf("traversal cancelled: %v", err)
		return nil
	default:
		return err
	}
}

// dirTally counts a directory as listed only once WalkDir has moved past it
// without reporting a read error. WalkDir calls back before reading a
// directory and, if the read fails, calls back again for it with the error.
type dirTally struct {
	listed  func()
	pending string
}

// entered records a directory WalkDir is about to read.
func (t *dirTally) entered(path string) {
	t.flush()
	t.pending = path
}

// failed drops path if it is the directory whose read just failed.
func (t *dirTally) failed(path string) {
	if path == t.pending {
		t.pending = ""
		return
	}
	t.flush()
}

// flush counts the pending directory, which was read successfully.
func (t *dirTally) flush() {
	if t.pending != "" {
		t.listed()
		t.pending = ""
	}
}
