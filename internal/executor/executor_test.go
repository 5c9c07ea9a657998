package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/monogridgo/internal/op"
	"github.com/vk/monogridgo/internal/strategy"
)

// recorder is a test strategy that records execution order and can be told
// to fail.
type recorder struct {
	name    string
	fail    bool
	outcome strategy.Outcome

	mu    *sync.Mutex
	order *[]string
}

func (r *recorder) Name() string                                { return r.name }
func (r *recorder) Cacheable() bool                             { return false }
func (r *recorder) ReportsTiming() bool                         { return false }
func (r *recorder) AllowsWarnings() bool                        { return false }
func (r *recorder) Silent() bool                                { return true }
func (r *recorder) Hash(ctx context.Context) (string, error)    { return "", nil }
func (r *recorder) Execute(ctx context.Context) (strategy.Outcome, error) {
	r.mu.Lock()
	*r.order = append(*r.order, r.name)
	r.mu.Unlock()
	if r.fail {
		return strategy.Failure, errors.New(r.name + " exploded")
	}
	return r.outcome, nil
}

// chain builds a linear graph a ← b ← c with recording strategies.
func chain(mu *sync.Mutex, order *[]string, fail map[string]bool) []*op.Operation {
	a := op.New("a", "build", op.KindPhase, nil)
	b := op.New("b", "build", op.KindPhase, nil)
	c := op.New("c", "build", op.KindPhase, nil)
	b.AddDependency(a)
	c.AddDependency(b)
	for _, o := range []*op.Operation{a, b, c} {
		o.Strategy = &recorder{name: o.ID(), fail: fail[o.Project], outcome: strategy.Success, mu: mu, order: order}
	}
	return []*op.Operation{a, b, c}
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestRunRespectsDependencyOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	ops := chain(&mu, &order, nil)

	e := New(ops, 4)
	require.NoError(t, e.Run(context.Background()))

	require.Len(t, order, 3)
	assert.Less(t, indexOf(order, "run.a.build"), indexOf(order, "run.b.build"))
	assert.Less(t, indexOf(order, "run.b.build"), indexOf(order, "run.c.build"))

	for _, o := range ops {
		assert.Equal(t, op.Done, o.GetState())
		assert.Equal(t, strategy.Success, o.Outcome)
	}
}

func TestRunFanOutFanIn(t *testing.T) {
	var mu sync.Mutex
	var order []string

	restore := op.New("x", "build", op.KindRestore, nil)
	save := op.New("x", "build", op.KindSave, nil)
	shards := make([]*op.Operation, 0, 3)
	for i := 1; i <= 3; i++ {
		s := op.New("x", "build", op.KindPhase, &op.Shard{Index: i, Total: 3})
		s.AddDependency(restore)
		save.AddDependency(s)
		shards = append(shards, s)
	}
	ops := append([]*op.Operation{restore, save}, shards...)
	for _, o := range ops {
		o.Strategy = &recorder{name: o.ID(), outcome: strategy.Success, mu: &mu, order: &order}
	}

	e := New(ops, 3)
	require.NoError(t, e.Run(context.Background()))

	require.Len(t, order, 5)
	assert.Equal(t, "restore.x.build", order[0])
	assert.Equal(t, "save.x.build", order[len(order)-1])
}

func TestRunFailureAbandonsConsumers(t *testing.T) {
	var mu sync.Mutex
	var order []string
	ops := chain(&mu, &order, map[string]bool{"b": true})

	e := New(ops, 2)
	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.b.build")
	assert.Contains(t, err.Error(), "exploded")

	a, b, c := ops[0], ops[1], ops[2]
	assert.Equal(t, op.Done, a.GetState())
	assert.Equal(t, op.Failed, b.GetState())
	assert.Equal(t, op.Failed, c.GetState())
	assert.ErrorIs(t, c.Err, errUpstream)
	assert.Equal(t, -1, indexOf(order, "run.c.build"), "abandoned operation must never execute")
}

func TestRunFailureWithIndependentBranch(t *testing.T) {
	// One failing root next to a separate chain b ← c. With a single worker
	// the chain is drained only after the failure cancels the run, so its
	// operations are abandoned on the cancellation path; Run must still
	// return instead of waiting on them forever.
	var mu sync.Mutex
	var order []string

	a := op.New("a", "build", op.KindPhase, nil)
	b := op.New("b", "build", op.KindPhase, nil)
	c := op.New("c", "build", op.KindPhase, nil)
	c.AddDependency(b)
	for _, o := range []*op.Operation{a, b, c} {
		o.Strategy = &recorder{name: o.ID(), fail: o.Project == "a", outcome: strategy.Success, mu: &mu, order: &order}
	}

	done := make(chan error, 1)
	go func() { done <- New([]*op.Operation{a, b, c}, 1).Run(context.Background()) }()

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after a failure alongside an independent branch")
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.a.build")

	assert.Equal(t, op.Failed, a.GetState())
	assert.Equal(t, op.Failed, b.GetState())
	assert.Equal(t, op.Failed, c.GetState())
	assert.ErrorIs(t, b.Err, context.Canceled)
	assert.ErrorIs(t, c.Err, errUpstream)
	assert.Equal(t, -1, indexOf(order, "run.c.build"))
}

func TestRunRecordsSkippedOutcome(t *testing.T) {
	o := op.New("a", "build", op.KindPhase, nil)
	o.Strategy = strategy.NewSkip(o.ID(), false)

	e := New([]*op.Operation{o}, 1)
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, op.Done, o.GetState())
	assert.Equal(t, strategy.Skipped, o.Outcome)
}

func TestRunEmptySet(t *testing.T) {
	e := New(nil, 2)
	assert.NoError(t, e.Run(context.Background()))
}
