package benchmark

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serverless-bench/internal/types"
)

func TestBenchmark_OrderedEmitter_EmitsInSubmissionOrder(t *testing.T) {
	t.Parallel()

	var emitted []string
	e := newOrderedEmitter(3, func(ts types.TargetSummary) {
		emitted = append(emitted, ts.Region)
	})

	e.complete(2, types.TargetSummary{Region: "c"})
	require.Empty(t, emitted)

	e.complete(0, types.TargetSummary{Region: "a"})
	require.Equal(t, []string{"a"}, emitted)

	e.complete(1, types.TargetSummary{Region: "b"})
	require.Equal(t, []string{"a", "b", "c"}, emitted)

	require.Equal(t, "c", e.results[2].Region)
}

func TestBenchmark_TargetPool_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var running, peak, done atomic.Int32
	pool := NewTargetPool(2)
	for range 8 {
		pool.Submit(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		})
	}
	pool.Wait()

	require.Equal(t, int32(8), done.Load())
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBenchmark_TargetPool_DefaultsToSequential(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	pool := NewTargetPool(0)
	for range 4 {
		pool.Submit(func() {
			n := running.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	require.Equal(t, int32(1), peak.Load())
}
