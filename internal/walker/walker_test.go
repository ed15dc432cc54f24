package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

// countingRecorder counts traversal events.
type countingRecorder struct {
	mu                          sync.Mutex
	listed, skipped, discovered int
}

func (r *countingRecorder) DirListed()      { r.mu.Lock(); r.listed++; r.mu.Unlock() }
func (r *countingRecorder) DirSkipped()     { r.mu.Lock(); r.skipped++; r.mu.Unlock() }
func (r *countingRecorder) FileDiscovered() { r.mu.Lock(); r.discovered++; r.mu.Unlock() }

func makeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("content of "+f+"\n"), 0644))
	}
}

// drain runs w over root and returns the discovered tasks.
func drain(t *testing.T, w Walker, root string, out queue.Channel[models.FileTask]) ([]models.FileTask, error) {
	t.Helper()

	var tasks []models.FileTask
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			task, ok := out.Receive()
			if !ok {
				return
			}
			tasks = append(tasks, task)
		}
	}()

	err := w.Walk(context.Background(), root, out)
	<-done
	return tasks, err
}

func paths(tasks []models.FileTask) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Path
	}
	sort.Strings(out)
	return out
}

var strategies = []string{StrategyQueue, StrategyRecursive}

var sampleTree = []string{
	"a.txt",
	"b.go",
	"dir1/c.txt",
	"dir1/dir2/d.txt",
	"dir1/dir2/dir3/e.md",
	"dir4/f.txt",
	".hidden/g.txt",
	".h.txt",
	"vendor/lib.go",
}

func TestWalk_MatchesReferenceScan(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, sampleTree)

	filters := map[string]fileutil.FilterOptions{
		"no filter":   {},
		"skip hidden": {SkipHidden: true},
		"exclude":     {ExcludeDirs: []string{"vendor", "dir2"}},
		"regex":       {FilenamePattern: `\.txt$`},
		"glob":        {Globs: []string{"dir1/**"}},
	}

	for _, strategy := range strategies {
		for name, fo := range filters {
			t.Run(strategy+"/"+name, func(t *testing.T) {
				filter, err := fileutil.NewFilter(fo)
				require.NoError(t, err)

				want, err := fileutil.ScanDirectory(root, filter)
				require.NoError(t, err)

				w, err := New(strategy, Options{Filter: filter})
				require.NoError(t, err)

				tasks, err := drain(t, w, root, queue.New[models.FileTask](4, false))
				require.NoError(t, err)
				assert.Equal(t, want.Files, paths(tasks))
			})
		}
	}
}

func TestWalk_NoDuplicates(t *testing.T) {
	root := t.TempDir()
	var files []string
	for i := 0; i < 20; i++ {
		for j := 0; j < 10; j++ {
			files = append(files, fmt.Sprintf("d%d/sub%d/f%d.txt", i, j%3, j))
		}
	}
	makeTree(t, root, files)

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			w, err := New(strategy, Options{})
			require.NoError(t, err)

			tasks, err := drain(t, w, root, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)

			seen := map[string]bool{}
			for _, task := range tasks {
				assert.False(t, seen[task.Path], "duplicate task %s", task.Path)
				seen[task.Path] = true
			}
			assert.Len(t, seen, len(files))
		})
	}
}

func TestWalk_EmptyRoot(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			w, err := New(strategy, Options{})
			require.NoError(t, err)

			tasks, err := drain(t, w, t.TempDir(), queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}

func TestWalk_FileRoot(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"only.txt"})
	file := filepath.Join(root, "only.txt")

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			w, err := New(strategy, Options{})
			require.NoError(t, err)

			tasks, err := drain(t, w, file, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			assert.Equal(t, []string{file}, paths(tasks))
		})
	}
}

func TestWalk_MissingRootIsNotFatal(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			logger := &recordingLogger{}
			rec := &countingRecorder{}
			w, err := New(strategy, Options{Logger: logger, Recorder: rec})
			require.NoError(t, err)

			out := queue.NewUnbounded[models.FileTask]()
			tasks, err := drain(t, w, filepath.Join(t.TempDir(), "missing"), out)
			require.NoError(t, err)
			assert.Empty(t, tasks)
			assert.Len(t, logger.warns, 1)
			assert.Equal(t, 1, rec.skipped)
		})
	}
}

func TestWalk_UnreadableDirectorySkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced for this user")
	}

	root := t.TempDir()
	makeTree(t, root, []string{"ok/a.txt", "locked/b.txt", "c.txt"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			logger := &recordingLogger{}
			rec := &countingRecorder{}
			w, err := New(strategy, Options{Logger: logger, Recorder: rec})
			require.NoError(t, err)

			tasks, err := drain(t, w, root, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			assert.Equal(t, []string{filepath.Join(root, "c.txt"), filepath.Join(root, "ok", "a.txt")}, paths(tasks))
			assert.NotEmpty(t, logger.warns)
			assert.Equal(t, 1, rec.skipped)
			assert.Equal(t, 2, rec.listed, "root and ok/ are listed, locked/ is not")
			assert.Equal(t, 2, rec.discovered)
		})
	}
}

func TestDirTally(t *testing.T) {
	listed := 0
	tally := dirTally{listed: func() { listed++ }}

	// root is read, then "a" fails to read, then "b" is read and is last.
	tally.entered("root")
	tally.flush()
	tally.entered("root/a")
	tally.failed("root/a")
	tally.flush()
	tally.entered("root/b")
	tally.flush()

	assert.Equal(t, 2, listed)

	// A failure reported for another path does not drop the pending directory.
	tally.entered("root/c")
	tally.failed("elsewhere")
	assert.Equal(t, 3, listed)

	tally.flush()
	assert.Equal(t, 3, listed)
}

func TestWalk_ListedCountsAgree(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"a/1.txt", "a/b/2.txt", "c/3.txt"})
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			rec := &countingRecorder{}
			w, err := New(strategy, Options{Recorder: rec})
			require.NoError(t, err)

			_, err = drain(t, w, root, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			assert.Equal(t, 5, rec.listed)
			assert.Zero(t, rec.skipped)
			assert.Equal(t, 3, rec.discovered)
		})
	}
}

func TestWalk_SymlinksNotFollowed(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"real/file.txt"})
	if err := os.Symlink(root, filepath.Join(root, "real", "cycle")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "file.txt"), filepath.Join(root, "alias.txt")))

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			w, err := New(strategy, Options{})
			require.NoError(t, err)

			tasks, err := drain(t, w, root, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			assert.Equal(t, []string{filepath.Join(root, "real", "file.txt")}, paths(tasks))
		})
	}
}

func TestWalk_Prefetch(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"a.txt", "b.txt", "sub/c.txt"})

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			budget := NewBudget(2)
			w, err := New(strategy, Options{Prefetch: budget})
			require.NoError(t, err)

			tasks, err := drain(t, w, root, queue.NewUnbounded[models.FileTask]())
			require.NoError(t, err)
			require.Len(t, tasks, 3)

			prefetched := 0
			for i := range tasks {
				if tasks[i].Prefetched() {
					prefetched++
				}
			}
			assert.Equal(t, 2, prefetched, "budget limits prefetched handles")
			assert.Equal(t, 2, budget.InUse())

			for i := range tasks {
				f, err := tasks[i].Open()
				require.NoError(t, err)
				f.Close()
			}
			assert.Equal(t, 0, budget.InUse(), "opening tasks returns budget slots")
		})
	}
}

func TestWalk_StopsWhenConsumerAbandons(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"a.txt", "b.txt", "c.txt"})

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			budget := NewBudget(8)
			w, err := New(strategy, Options{Prefetch: budget, Logger: &recordingLogger{}})
			require.NoError(t, err)

			out := queue.NewUnbounded[models.FileTask]()
			out.Abandon()

			err = w.Walk(context.Background(), root, out)
			assert.ErrorIs(t, err, queue.ErrAbandoned)
			assert.Equal(t, 0, budget.InUse(), "handle of the rejected task must be released")
		})
	}
}

func TestWalk_Cancelled(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"a/1.txt", "b/2.txt"})

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			w, err := New(strategy, Options{})
			require.NoError(t, err)

			out := queue.NewUnbounded[models.FileTask]()
			require.NoError(t, w.Walk(ctx, root, out))

			_, _, closed := out.TryReceive()
			assert.True(t, closed, "output must be closed after cancellation")
		})
	}
}

func TestWalk_ClosesOutputExactlyOnce(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, []string{"x.txt"})

	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			w, err := New(strategy, Options{})
			require.NoError(t, err)

			out := queue.NewUnbounded[models.FileTask]()
			require.NoError(t, w.Walk(context.Background(), root, out))
			assert.ErrorIs(t, out.Send(models.NewFileTask("late")), queue.ErrClosed)
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New("sideways", Options{})
	assert.Error(t, err)
}

func TestBudget(t *testing.T) {
	b := NewBudget(1)
	assert.True(t, b.TryAcquire())
	assert.False(t, b.TryAcquire())
	b.Release()
	assert.True(t, b.TryAcquire())

	// Releasing more than acquired never blocks.
	b.Release()
	b.Release()
	assert.Equal(t, 0, b.InUse())

	assert.Equal(t, DefaultPrefetchLimit, cap(NewBudget(0).slots))
}
