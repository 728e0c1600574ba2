package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/worker"
)

// Scheduler enqueues jobs onto a worker pool at fixed intervals
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. With runNow the job
// is also enqueued immediately so a restart does not wait a full interval.
// A tick that finds the pool queue full is skipped rather than blocking.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job, runNow bool) {
	logger.FromContext(context.Background()).Info(LogMsgJobScheduled, "interval", interval, "run_now", runNow)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if runNow {
			s.workerPool.TryEnqueue(job)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.workerPool.TryEnqueue(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs. It does not stop the pool.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}
