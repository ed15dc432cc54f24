package executor

import (
	"fmt"
	"time"

	"github.com/harrison/rr/internal/matcher"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// Worker scans files from its inbound channel and reports matches.
type Worker struct {
	id           int
	in           queue.Channel[models.FileTask]
	results      queue.Channel[models.MatchResult]
	matcher      matcher.Matcher
	mode         models.Mode
	maxLineBytes int
	dedicated    bool // in belongs to this worker alone
	logger       Logger
	stats        *Stats
}

// WorkerConfig holds the immutable settings shared by all workers of a run.
type WorkerConfig struct {
	Matcher      matcher.Matcher
	Mode         models.Mode
	MaxLineBytes int
}

// NewWorker constructs worker id. dedicated reports whether in is owned by
// this worker alone (round-robin) rather than shared by the pool; only a
// dedicated channel is abandoned when the worker fails.
func NewWorker(id int, in queue.Channel[models.FileTask], results queue.Channel[models.MatchResult], cfg WorkerConfig, dedicated bool, logger Logger, stats *Stats) *Worker {
	return &Worker{
		id:           id,
		in:           in,
		results:      results,
		matcher:      cfg.Matcher,
		mode:         cfg.Mode,
		maxLineBytes: cfg.MaxLineBytes,
		dedicated:    dedicated,
		logger:       logger,
		stats:        stats,
	}
}

// Run processes tasks until the inbound channel is closed and drained.
// A panic is recovered here and returned as a *StageError; sibling workers
// are unaffected.
func (w *Worker) Run() (err error) {
	start := time.Now()
	parsed, prefetched := 0, 0

	defer func() {
		if err != nil && w.dedicated {
			releaseTasks(w.in.Abandon())
		}
		GracefulDebug(w.logger, "worker %d: parsed %d files in %s (%d prefetched)", w.id, parsed, time.Since(start), prefetched)
	}()
	defer recoverStage(StageWorker, w.id, w.logger, &err)

	for {
		task, ok := w.in.Receive()
		if !ok {
			return nil
		}
		parsed++
		if task.Prefetched() {
			prefetched++
		}
		if err := w.process(task); err != nil {
			return err
		}
	}
}

// process scans one file. File-level failures are logged and skipped; only
// losing the result channel is returned.
func (w *Worker) process(task models.FileTask) error {
	if err := task.Validate(); err != nil {
		GracefulWarn(w.logger, "dropping task: %v", err)
		task.Release()
		w.stats.fileSkipped()
		return nil
	}

	f, err := task.Open()
	if err != nil {
		GracefulWarn(w.logger, "cannot open %s: %v", task.Path, err)
		w.stats.fileSkipped()
		return nil
	}
	defer f.Close()

	lines, matched, err := matcher.Scan(f, w.matcher, w.mode, w.maxLineBytes)
	switch {
	case err == nil:
	case matcher.Truncated(err):
		GracefulDebug(w.logger, "stopped scanning %s: %v", task.Path, err)
	default:
		GracefulWarn(w.logger, "cannot read %s: %v", task.Path, err)
		w.stats.fileSkipped()
		return nil
	}
	w.stats.fileScanned()

	if !matched {
		return nil
	}
	w.stats.fileMatched(len(lines))

	if err := w.results.Send(models.MatchResult{Path: task.Path, Lines: lines}); err != nil {
		return &StageError{Stage: StageWorker, Worker: w.id, Err: fmt.Errorf("send result for %s: %w", task.Path, err)}
	}
	return nil
}
