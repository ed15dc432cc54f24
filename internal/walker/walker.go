// Package walker discovers the files a search has to scan.
//
// Two traversal strategies produce the same set of files:
//
//   - QueueWalker keeps an explicit FIFO worklist of directories that it both
//     feeds and drains. It never recurses, so tree depth does not grow the
//     stack. An empty non-blocking poll of the worklist means traversal is
//     complete, because the walker is the only producer besides the seed.
//   - RecursiveWalker delegates to filepath.WalkDir's pre-order iteration.
//
// Both close their output channel exactly once, after the tree is exhausted,
// the context is cancelled, or the consumer abandons the channel.
package walker

import (
	"context"
	"fmt"
	"os"

	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// Strategy names accepted by New.
const (
	StrategyQueue     = "queue"
	StrategyRecursive = "recursive"
)

// Walker enumerates root and sends every accepted regular file to out.
// Walk always closes out before returning.
type Walker interface {
	Walk(ctx context.Context, root string, out queue.Channel[models.FileTask]) error
}

// Logger receives traversal diagnostics.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Recorder receives traversal counters.
type Recorder interface {
	DirListed()
	DirSkipped()
	FileDiscovered()
}

// Options configures a walker.
type Options struct {
	Filter   *fileutil.Filter // Entry filter (nil accepts everything)
	Prefetch *Budget          // Non-nil enables prefetching handles during traversal
	Logger   Logger           // Optional
	Recorder Recorder         // Optional
}

// New returns the walker for strategy ("queue" or "recursive").
func New(strategy string, opts Options) (Walker, error) {
	switch strategy {
	case StrategyQueue, "":
		return NewQueueWalker(opts), nil
	case StrategyRecursive:
		return NewRecursiveWalker(opts), nil
	default:
		return nil, fmt.Errorf("unknown walker strategy %q", strategy)
	}
}

// base holds the behaviour shared by both strategies.
type base struct {
	opts Options
}

func (b *base) debugf(format string, args ...interface{}) {
	if b.opts.Logger != nil {
		b.opts.Logger.Debugf(format, args...)
	}
}

func (b *base) warnf(format string, args ...interface{}) {
	if b.opts.Logger != nil {
		b.opts.Logger.Warnf(format, args...)
	}
}

func (b *base) dirListed() {
	if b.opts.Recorder != nil {
		b.opts.Recorder.DirListed()
	}
}

func (b *base) dirSkipped() {
	if b.opts.Recorder != nil {
		b.opts.Recorder.DirSkipped()
	}
}

// resolve classifies root. ok is false when there is nothing to traverse.
func (b *base) resolve(root string) (fileutil.EntryKind, string, bool) {
	kind, walkRoot, err := fileutil.ResolveRoot(root)
	if err != nil {
		b.warnf("cannot access %s: %v", root, err)
		b.dirSkipped()
		return kind, walkRoot, false
	}
	if kind == fileutil.KindSkip {
		b.warnf("%s is neither a directory nor a regular file, skipping", root)
		return kind, walkRoot, false
	}
	return kind, walkRoot, true
}

// forward turns path into a task, prefetching its handle when enabled, and
// sends it downstream. It fails only when the consumer is gone.
func (b *base) forward(path string, out queue.Channel[models.FileTask]) error {
	task := models.NewFileTask(path)

	if b.opts.Prefetch != nil && b.opts.Prefetch.TryAcquire() {
		f, err := os.Open(path)
		if err != nil {
			// The worker opens it again and reports the failure.
			b.opts.Prefetch.Release()
			b.debugf("prefetch %s: %v", path, err)
		} else {
			adviseWillNeed(f)
			task.Attach(f, b.opts.Prefetch.Release)
		}
	}

	if b.opts.Recorder != nil {
		b.opts.Recorder.FileDiscovered()
	}

	if err := out.Send(task); err != nil {
		task.Release()
		b.warnf("stopping traversal, cannot forward %s: %v", path, err)
		return fmt.Errorf("forward %s: %w", path, err)
	}
	return nil
}
