package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osse101/PullBot_Go/internal/testing/leaktest"
)

type testJob struct {
	executed *int32
}

func (j *testJob) Process(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	return nil
}

func TestPool(t *testing.T) {
	var executed int32
	pool := NewPool(TestWorkerCount, TestQueueSize)
	pool.Start()

	job := &testJob{executed: &executed}
	pool.Enqueue(job)
	pool.Enqueue(job)

	// Wait a bit for workers to process
	time.Sleep(TestWorkerProcessWaitTime * time.Millisecond)

	pool.Stop()

	if atomic.LoadInt32(&executed) != TestExpectedJobCount {
		t.Errorf("Expected %d jobs executed, got %d", TestExpectedJobCount, executed)
	}
}

type blockingJob struct {
	started chan struct{}
}

func (j *blockingJob) Process(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestPool_StopCancelsRunningJobs(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()

	job := &blockingJob{started: make(chan struct{})}
	if !pool.Enqueue(job) {
		t.Fatal("expected job to be enqueued")
	}
	<-job.started

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after cancelling the running job")
	}

	if pool.Enqueue(&testJob{executed: new(int32)}) {
		t.Error("Enqueue after Stop should report false")
	}
}

func TestPool_TryEnqueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	var executed int32
	job := &testJob{executed: &executed}

	if !pool.TryEnqueue(job) {
		t.Fatal("first enqueue should fit")
	}
	if pool.TryEnqueue(job) {
		t.Error("second enqueue should find the queue full")
	}
	pool.Stop()
}

func TestPool_StopReleasesWorkers(t *testing.T) {
	leaktest.CheckNoGoroutineLeak(t, func() {
		pool := NewPool(4, 4)
		pool.Start()
		var executed int32
		pool.Enqueue(&testJob{executed: &executed})
		pool.Stop()
	})
}
