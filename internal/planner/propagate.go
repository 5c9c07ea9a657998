package planner

import (
	"github.com/vk/monogridgo/internal/op"
	"github.com/vk/monogridgo/internal/strategy"
)

// propagate expands the work-tracking set forward across consumer edges to
// a fixed point. Any operation consuming an operation with real or changed
// work has stale or unknown input and must also run. The closure is an
// explicit worklist because the set grows while being traversed; the final
// result does not depend on pop order.
func (ps *pass) propagate() {
	queue := make([]*op.Operation, 0, len(ps.work))
	for o := range ps.work {
		queue = append(queue, o)
	}
	for len(queue) > 0 {
		o := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, consumer := range o.Consumers {
			if _, seen := ps.work[consumer]; seen {
				continue
			}
			ps.work[consumer] = struct{}{}
			queue = append(queue, consumer)
		}
	}
}

// finalize demotes every operation created during this pass that is
// in-scope but was never reached by propagation to the skip strategy: its
// resolved predecessors are all clean, so its inputs are unchanged.
// Out-of-scope operations already carry their skip strategy, and boundary
// and shard operations are always in the work set.
func (ps *pass) finalize() {
	for _, o := range ps.created {
		if _, hasWork := ps.work[o]; hasWork {
			continue
		}
		if !ps.inScope(o.Phase, o.Project) {
			continue
		}
		o.Strategy = strategy.NewSkip(o.ID(), false)
	}
}
