package executor

import (
	"context"
	"time"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/op"
	"github.com/vk/monogridgo/internal/strategy"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *op.Operation, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for o := range readyChan {
		workerLogger := logger.With("workerID", workerID, "id", o.ID())

		if ctx.Err() != nil {
			// A queued operation drained after cancellation may sit on an
			// independent branch the failure cascade never reached; its
			// consumers must be abandoned here or wg.Wait never returns.
			if o.Abandon(ctx.Err(), &e.wg) {
				e.abandonConsumers(ctx, o)
			}
			continue
		}

		o.SetState(op.Running)
		if o.Strategy.Silent() {
			workerLogger.Debug("Running operation.", "strategy", o.Strategy.Name())
		} else {
			workerLogger.Info("▶️ Running operation", "strategy", o.Strategy.Name())
		}

		start := time.Now()
		outcome, err := o.Strategy.Execute(ctx)
		if err != nil {
			workerLogger.Error("Operation failed.", "error", err)
			o.SetState(op.Failed)
			o.Outcome = strategy.Failure
			o.Err = err
			cancel()
			e.abandonConsumers(ctx, o)
			e.wg.Done()
			continue
		}

		o.Outcome = outcome
		o.SetState(op.Done)
		switch {
		case outcome == strategy.Skipped:
			workerLogger.Debug("Operation skipped.")
		case o.Strategy.ReportsTiming():
			workerLogger.Info("✅ Operation finished", "outcome", outcome.String(), "duration", time.Since(start))
		case o.Strategy.Silent():
			workerLogger.Debug("Operation finished.", "outcome", outcome.String())
		default:
			workerLogger.Info("✅ Operation finished", "outcome", outcome.String())
		}

		for _, consumer := range o.Consumers {
			if consumer.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking consumer.", "consumerID", consumer.ID())
				readyChan <- consumer
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
