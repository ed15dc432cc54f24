package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/matcher"
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
	"github.com/harrison/rr/internal/walker"
)

// Distribution strategies.
const (
	// DistributionRoundRobin gives every worker its own channel, fed by the dispatcher.
	DistributionRoundRobin = "round-robin"
	// DistributionShared lets every worker receive from the walker's output directly.
	DistributionShared = "shared"
)

// DefaultQueueCapacity is the capacity of bounded pipeline channels.
const DefaultQueueCapacity = 1024

// Config describes one search.
type Config struct {
	Matcher         matcher.Matcher
	Mode            models.Mode
	Workers         int              // Worker pool size (minimum 1)
	QueueCapacity   int              // Capacity of bounded channels
	UnboundedQueues bool             // Use unbounded channels instead
	Distribution    string           // round-robin or shared
	Walker          string           // queue or recursive
	Filter          *fileutil.Filter // Entry filter (nil accepts everything)
	Prefetch        bool             // Open files during traversal
	PrefetchLimit   int              // Maximum prefetched handles in flight
	MaxLineBytes    int              // Longest line a worker scans
}

// WorkerCount returns NumCPU × multiplier, at least 1.
func WorkerCount(multiplier int) int {
	n := runtime.NumCPU() * multiplier
	if n < 1 {
		return 1
	}
	return n
}

// Pipeline runs walker, dispatcher, worker pool and aggregator as concurrent
// stages connected by channels.
type Pipeline struct {
	cfg     Config
	printer Printer
	logger  Logger
}

// NewPipeline validates cfg and constructs a Pipeline. The logger is optional.
func NewPipeline(cfg Config, printer Printer, logger Logger) (*Pipeline, error) {
	if cfg.Matcher == nil {
		return nil, errors.New("matcher is required")
	}
	if printer == nil {
		return nil, errors.New("printer is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueCapacity < 1 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	if cfg.MaxLineBytes < 1 {
		cfg.MaxLineBytes = matcher.DefaultMaxLineBytes
	}
	switch cfg.Distribution {
	case "":
		cfg.Distribution = DistributionRoundRobin
	case DistributionRoundRobin, DistributionShared:
	default:
		return nil, fmt.Errorf("unknown distribution %q", cfg.Distribution)
	}
	if _, err := walker.New(cfg.Walker, walker.Options{}); err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, printer: printer, logger: logger}, nil
}

// Run searches root and blocks until every stage has terminated. Stage
// failures are collected into a *multierror.Error; the returned Stats are
// complete either way.
//
// Stages are joined in pipeline order. The result channel is closed only
// after the whole worker pool has exited, which is what lets the aggregator
// finish.
func (p *Pipeline) Run(ctx context.Context, root string) (*Stats, error) {
	stats := NewStats(p.cfg.Workers)
	defer stats.finish()

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = multierror.Append(errs, err)
		mu.Unlock()
	}

	tasks := p.newTaskChannel()
	results := queue.New[models.MatchResult](p.cfg.QueueCapacity, p.cfg.UnboundedQueues)

	GracefulDebug(p.logger, "searching %s with %d workers (%s walker, %s distribution, %s mode)",
		root, p.cfg.Workers, walkerName(p.cfg.Walker), p.cfg.Distribution, p.cfg.Mode)

	walkDone := spawn(func() error { return p.walk(ctx, root, tasks, stats) })

	inbound := []queue.Channel[models.FileTask]{tasks}
	dispatchDone := spawn(func() error { return nil })
	if p.cfg.Distribution == DistributionRoundRobin {
		inbound = make([]queue.Channel[models.FileTask], p.cfg.Workers)
		for i := range inbound {
			inbound[i] = p.newTaskChannel()
		}
		dispatcher := NewDispatcher(tasks, inbound, p.logger)
		dispatchDone = spawn(dispatcher.Run)
	}

	workerCfg := WorkerConfig{Matcher: p.cfg.Matcher, Mode: p.cfg.Mode, MaxLineBytes: p.cfg.MaxLineBytes}
	var g errgroup.Group
	for i := 0; i < p.cfg.Workers; i++ {
		in := inbound[i%len(inbound)]
		w := NewWorker(i, in, results, workerCfg, len(inbound) > 1, p.logger, stats)
		g.Go(func() error {
			err := w.Run()
			record(err)
			return err
		})
	}
	poolDone := spawn(func() error {
		_ = g.Wait()
		// Nobody receives from the inbound channels any more; make sure
		// upstream stages cannot block on them.
		for _, in := range inbound {
			releaseTasks(in.Abandon())
		}
		results.Close()
		return nil
	})

	aggregator := NewAggregator(results, p.printer, p.logger)
	aggregateDone := spawn(aggregator.Run)

	record(<-walkDone)
	record(<-dispatchDone)
	<-poolDone
	record(<-aggregateDone)

	stats.finish()
	if err := errs.ErrorOrNil(); err != nil {
		GracefulWarn(p.logger, "search finished with %d stage failure(s)", len(errs.Errors))
		return stats, err
	}
	return stats, nil
}

func (p *Pipeline) newTaskChannel() queue.Channel[models.FileTask] {
	return queue.New[models.FileTask](p.cfg.QueueCapacity, p.cfg.UnboundedQueues)
}

// walk runs the traversal stage.
func (p *Pipeline) walk(ctx context.Context, root string, tasks queue.Channel[models.FileTask], stats *Stats) (err error) {
	defer tasks.Close()
	defer recoverStage(StageWalker, noWorker, p.logger, &err)

	opts := walker.Options{
		Filter:   p.cfg.Filter,
		Recorder: stats,
	}
	if p.logger != nil {
		opts.Logger = p.logger
	}
	if p.cfg.Prefetch {
		opts.Prefetch = walker.NewBudget(p.cfg.PrefetchLimit)
		defer func() {
			GracefulDebug(p.logger, "walker finished with %d prefetched handles queued", opts.Prefetch.InUse())
		}()
	}

	w, err := walker.New(p.cfg.Walker, opts)
	if err != nil {
		return &StageError{Stage: StageWalker, Worker: noWorker, Err: err}
	}
	if err := w.Walk(ctx, root, tasks); err != nil {
		return &StageError{Stage: StageWalker, Worker: noWorker, Err: err}
	}
	return nil
}

// spawn runs fn in its own goroutine and delivers its result on the
// returned channel.
func spawn(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	return done
}

func walkerName(strategy string) string {
	if strategy == "" {
		return walker.StrategyQueue
	}
	return strategy
}
