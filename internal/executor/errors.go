package executor

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Stage identifies the pipeline stage in which a failure occurred.
type Stage int

const (
	// StageWalker is directory traversal.
	StageWalker Stage = iota
	// StageDispatcher is round-robin task distribution.
	StageDispatcher
	// StageWorker is file scanning.
	StageWorker
	// StageAggregator is result output.
	StageAggregator
)

// noWorker marks a StageError that is not tied to a worker.
const noWorker = -1

// String returns the string representation of Stage.
func (s Stage) String() string {
	switch s {
	case StageWalker:
		return "walker"
	case StageDispatcher:
		return "dispatcher"
	case StageWorker:
		return "worker"
	case StageAggregator:
		return "aggregator"
	default:
		return "unknown"
	}
}

// StageError reports that a stage terminated abnormally, either because it
// panicked or because a neighbouring stage went away.
type StageError struct {
	Stage  Stage // Stage that failed
	Worker int   // Worker index for StageWorker, -1 otherwise
	Err    error // Underlying error
}

// Error implements the error interface for StageError.
func (e *StageError) Error() string {
	if e.Stage == StageWorker && e.Worker >= 0 {
		return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Panicked reports whether the stage failed because of a recovered panic.
func (e *StageError) Panicked() bool {
	var ge *goerrors.Error
	return errors.As(e.Err, &ge)
}

// recoverStage turns a panic in the deferring stage into a StageError stored
// in *errp. It must be deferred directly.
func recoverStage(stage Stage, worker int, logger Logger, errp *error) {
	rec := recover()
	if rec == nil {
		return
	}

	cause := goerrors.Wrap(rec, 1)
	stageErr := &StageError{Stage: stage, Worker: worker, Err: cause}
	GracefulError(logger, "%v (recovered panic)", stageErr)
	GracefulDebug(logger, "%s", cause.ErrorStack())
	*errp = stageErr
}
