package executor

import (
	"sync"
	"time"

	"github.com/harrison/rr/internal/models"
	"github.com/puzpuzpuz/xsync/v3"
)

// Stats collects run counters from every stage without locking. The values
// are diagnostic only; nothing in the pipeline branches on them.
//
// Stats implements walker.Recorder. All methods are safe on a nil receiver.
type Stats struct {
	workers int
	start   time.Time

	dirsListed      *xsync.Counter
	dirsSkipped     *xsync.Counter
	filesDiscovered *xsync.Counter
	filesScanned    *xsync.Counter
	filesSkipped    *xsync.Counter
	filesMatched    *xsync.Counter
	linesMatched    *xsync.Counter

	finishOnce sync.Once
	duration   time.Duration
}

// NewStats creates counters for a run with the given worker count.
func NewStats(workers int) *Stats {
	return &Stats{
		workers:         workers,
		start:           time.Now(),
		dirsListed:      xsync.NewCounter(),
		dirsSkipped:     xsync.NewCounter(),
		filesDiscovered: xsync.NewCounter(),
		filesScanned:    xsync.NewCounter(),
		filesSkipped:    xsync.NewCounter(),
		filesMatched:    xsync.NewCounter(),
		linesMatched:    xsync.NewCounter(),
	}
}

// DirListed records a directory whose entries were read.
func (s *Stats) DirListed() {
	if s != nil {
		s.dirsListed.Inc()
	}
}

// DirSkipped records a directory that could not be read.
func (s *Stats) DirSkipped() {
	if s != nil {
		s.dirsSkipped.Inc()
	}
}

// FileDiscovered records a file forwarded by the walker.
func (s *Stats) FileDiscovered() {
	if s != nil {
		s.filesDiscovered.Inc()
	}
}

func (s *Stats) fileScanned() {
	if s != nil {
		s.filesScanned.Inc()
	}
}

func (s *Stats) fileSkipped() {
	if s != nil {
		s.filesSkipped.Inc()
	}
}

func (s *Stats) fileMatched(lines int) {
	if s != nil {
		s.filesMatched.Inc()
		s.linesMatched.Add(int64(lines))
	}
}

// finish freezes the run duration. Later calls are ignored.
func (s *Stats) finish() {
	if s != nil {
		s.finishOnce.Do(func() {
			s.duration = time.Since(s.start)
		})
	}
}

// Summary returns a snapshot of the counters.
func (s *Stats) Summary() models.RunSummary {
	if s == nil {
		return models.RunSummary{}
	}

	duration := s.duration
	if duration == 0 {
		duration = time.Since(s.start)
	}

	return models.RunSummary{
		Workers:         s.workers,
		DirsListed:      s.dirsListed.Value(),
		DirsSkipped:     s.dirsSkipped.Value(),
		FilesDiscovered: s.filesDiscovered.Value(),
		FilesScanned:    s.filesScanned.Value(),
		FilesSkipped:    s.filesSkipped.Value(),
		FilesMatched:    s.filesMatched.Value(),
		LinesMatched:    s.linesMatched.Value(),
		Duration:        duration,
	}
}
