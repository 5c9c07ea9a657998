// Package executor walks a finished operation set concurrently, driving
// each operation through its execution strategy once all of its
// dependencies have completed.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/op"
)

// Executor runs an operation set with a bounded worker pool.
type Executor struct {
	ops        []*op.Operation
	numWorkers int
	wg         sync.WaitGroup
}

// New creates an executor for the given operation set. The set must be
// fully planned: every operation needs a strategy and wired edges.
func New(ops []*op.Operation, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{ops: ops, numWorkers: workers}
}

// Run executes the entire graph concurrently and returns an error if any
// operation fails. It respects the cancellation signal from the provided
// context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *op.Operation, len(e.ops))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, seeding dependency counters...")
	for _, o := range e.ops {
		o.SetDepCount(int32(len(o.Deps)))
	}

	rootCount := 0
	for _, o := range e.ops {
		if o.DepCount() == 0 {
			readyChan <- o
			rootCount++
		}
	}
	logger.Debug("Found all root operations.", "count", rootCount)

	e.wg.Add(len(e.ops))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	var failedOps []string
	var rootCauseError error
	for _, o := range e.ops {
		if o.GetState() != op.Failed {
			continue
		}
		// An operation abandoned after an upstream failure is a symptom,
		// not a cause.
		if o.Err != nil && !errors.Is(o.Err, errUpstream) && !errors.Is(o.Err, context.Canceled) {
			failedOps = append(failedOps, o.ID())
			if rootCauseError == nil {
				rootCauseError = o.Err
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedOps, ", "), rootCauseError)
	}
	return nil
}

// errUpstream marks operations abandoned because a dependency failed.
var errUpstream = errors.New("upstream operation failed")

// abandonConsumers recursively marks all downstream operations as failed.
func (e *Executor) abandonConsumers(ctx context.Context, o *op.Operation) {
	logger := ctxlog.FromContext(ctx)
	for _, consumer := range o.Consumers {
		if consumer.Abandon(fmt.Errorf("%w: %s", errUpstream, o.ID()), &e.wg) {
			logger.Warn("Abandoning operation due to upstream failure.", "id", consumer.ID(), "dependency", o.ID())
			e.abandonConsumers(ctx, consumer)
		}
	}
}
