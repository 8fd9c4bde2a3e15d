package benchmark

import (
	"sync"

	"github.com/alitto/pond/v2"

	"serverless-bench/internal/types"
)

// TargetPool runs independent targets with bounded concurrency.
// Each task samples one target sequentially; only distinct targets overlap.
type TargetPool struct {
	pool  pond.Pool
	group pond.TaskGroup
}

// NewTargetPool creates a pool running at most size targets at once
func NewTargetPool(size int) *TargetPool {
	if size < 1 {
		size = 1
	}
	pool := pond.NewPool(size)
	return &TargetPool{
		pool:  pool,
		group: pool.NewGroup(),
	}
}

// Submit queues a target task
func (tp *TargetPool) Submit(task func()) {
	tp.group.Submit(task)
}

// Wait blocks until every submitted task finished and releases the pool
func (tp *TargetPool) Wait() {
	_ = tp.group.Wait()
	tp.pool.StopAndWait()
}

// orderedEmitter hands completed results to emit in submission order,
// as soon as every earlier result is also complete
type orderedEmitter struct {
	mu      sync.Mutex
	results []types.TargetSummary
	done    []bool
	next    int
	emit    func(types.TargetSummary)
}

func newOrderedEmitter(n int, emit func(types.TargetSummary)) *orderedEmitter {
	return &orderedEmitter{
		results: make([]types.TargetSummary, n),
		done:    make([]bool, n),
		emit:    emit,
	}
}

func (e *orderedEmitter) complete(i int, result types.TargetSummary) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.results[i] = result
	e.done[i] = true
	for e.next < len(e.done) && e.done[e.next] {
		e.emit(e.results[e.next])
		e.next++
	}
}
