package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(4)
	pool.Start()
	defer pool.Close()

	var counter int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	pool.Wait()

	if got := atomic.LoadInt64(&counter); got != 100 {
		t.Errorf("Expected 100 jobs executed, got %d", got)
	}
}

func TestPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewPool(0)
	if pool.workers <= 0 {
		t.Errorf("Expected a positive default worker count, got %d", pool.workers)
	}
}

func TestPoolWaitReusable(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	defer pool.Close()

	var counter int64
	for round := 0; round < 3; round++ {
		for i := 0; i < 10; i++ {
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}
		pool.Wait()
	}

	if got := atomic.LoadInt64(&counter); got != 30 {
		t.Errorf("Expected 30 jobs executed across rounds, got %d", got)
	}
}
