package executor

import (
	"fmt"

	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// Dispatcher assigns tasks from one inbound channel to per-worker channels in
// strict round-robin order.
type Dispatcher struct {
	in     queue.Channel[models.FileTask]
	outs   []queue.Channel[models.FileTask]
	logger Logger
	next   int
}

// NewDispatcher constructs a Dispatcher. outs must not be empty.
func NewDispatcher(in queue.Channel[models.FileTask], outs []queue.Channel[models.FileTask], logger Logger) *Dispatcher {
	if len(outs) == 0 {
		panic("dispatcher needs at least one output")
	}
	return &Dispatcher{in: in, outs: outs, logger: logger}
}

// Run forwards tasks until the inbound channel is closed and drained, then
// closes every output. If a worker has abandoned its channel the dispatcher
// stops early: it abandons its own inbound channel so the walker stops too,
// releases the handles it still holds and closes the remaining outputs.
func (d *Dispatcher) Run() (err error) {
	defer func() {
		if err != nil {
			releaseTasks(d.in.Abandon())
		}
		for _, out := range d.outs {
			out.Close()
		}
	}()
	defer recoverStage(StageDispatcher, noWorker, d.logger, &err)

	dispatched := 0
	for {
		task, ok := d.in.Receive()
		if !ok {
			GracefulDebug(d.logger, "dispatcher: distributed %d files to %d workers", dispatched, len(d.outs))
			return nil
		}
		if err := d.dispatch(task); err != nil {
			return err
		}
		dispatched++
	}
}

func (d *Dispatcher) dispatch(task models.FileTask) error {
	worker := d.next
	d.next = (d.next + 1) % len(d.outs)

	if err := d.outs[worker].Send(task); err != nil {
		task.Release()
		GracefulWarn(d.logger, "dispatcher: worker %d stopped accepting files, halting distribution: %v", worker, err)
		return &StageError{Stage: StageDispatcher, Worker: noWorker, Err: fmt.Errorf("send %s to worker %d: %w", task.Path, worker, err)}
	}
	return nil
}

// releaseTasks closes any prefetched handles held by tasks nobody will scan.
func releaseTasks(tasks []models.FileTask) {
	for i := range tasks {
		tasks[i].Release()
	}
}
