package executor

import (
	"github.com/harrison/rr/internal/models"
	"github.com/harrison/rr/internal/queue"
)

// Printer writes one result to the output.
type Printer interface {
	Print(result models.MatchResult) error
}

// Aggregator drains the result channel and writes each result as it arrives.
type Aggregator struct {
	in      queue.Channel[models.MatchResult]
	printer Printer
	logger  Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(in queue.Channel[models.MatchResult], printer Printer, logger Logger) *Aggregator {
	return &Aggregator{in: in, printer: printer, logger: logger}
}

// Run writes results until the channel is closed and drained. After the first
// write failure the remaining results are drained and dropped so that workers
// never block on a full result channel.
func (a *Aggregator) Run() (err error) {
	defer func() {
		if err != nil {
			a.in.Abandon()
		}
	}()
	defer recoverStage(StageAggregator, noWorker, a.logger, &err)

	var writeErr error
	dropped := 0
	for {
		result, ok := a.in.Receive()
		if !ok {
			if dropped > 0 {
				GracefulDebug(a.logger, "aggregator: dropped %d results after write failure", dropped)
			}
			return nil
		}

		if writeErr != nil {
			dropped++
			continue
		}
		if writeErr = a.printer.Print(result); writeErr != nil {
			GracefulWarn(a.logger, "cannot write results, discarding the rest: %v", writeErr)
		}
	}
}
