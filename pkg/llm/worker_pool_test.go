package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWorkerPool_ProcessesAllItems(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) { return 1, nil }},
		{ID: "b", Execute: func(ctx context.Context) (int, error) { return 2, nil }},
		{ID: "c", Execute: func(ctx context.Context) (int, error) { return 3, nil }},
	}

	results := Process(context.Background(), pool, items, nil)
	assert.Len(t, results, 3)

	sum := 0
	for _, r := range results {
		assert.NoError(t, r.Err)
		sum += r.Result
	}
	assert.Equal(t, 6, sum)
}

func TestWorkerPool_ContinuesPastFailures(t *testing.T) {
	pool := NewWorkerPool(DefaultWorkerPoolConfig(), zap.NewNop())

	items := []WorkItem[string]{
		{ID: "ok", Execute: func(ctx context.Context) (string, error) { return "fine", nil }},
		{ID: "bad", Execute: func(ctx context.Context) (string, error) { return "", errors.New("boom") }},
	}

	results := Process(context.Background(), pool, items, nil)
	assert.Len(t, results, 2)

	var failures, successes int
	for _, r := range results {
		if r.Err != nil {
			failures++
		} else {
			successes++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, successes)
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	var running, peak int32
	items := make([]WorkItem[struct{}], 4)
	for i := range items {
		items[i] = WorkItem[struct{}]{
			ID: "item",
			Execute: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return struct{}{}, nil
			},
		}
	}

	Process(context.Background(), pool, items, nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestWorkerPool_ReportsProgress(t *testing.T) {
	pool := NewWorkerPool(DefaultWorkerPoolConfig(), zap.NewNop())

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) { return 0, nil }},
		{ID: "b", Execute: func(ctx context.Context) (int, error) { return 0, nil }},
	}

	var calls []int
	Process(context.Background(), pool, items, func(completed, total int) {
		assert.Equal(t, 2, total)
		calls = append(calls, completed)
	})

	assert.Equal(t, []int{1, 2}, calls)
}

func TestWorkerPool_EmptyItems(t *testing.T) {
	pool := NewWorkerPool(DefaultWorkerPoolConfig(), zap.NewNop())
	assert.Nil(t, Process[int](context.Background(), pool, nil, nil))
}
