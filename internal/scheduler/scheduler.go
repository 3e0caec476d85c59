// Package scheduler runs the enrichment jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nomadlab/seoulbang/internal/logger"
)

// Job is one named periodic task. Run is invoked once immediately at startup
// and then every Interval until the scheduler's context is canceled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each registered job on its own ticker goroutine. A job
// returning an error or panicking is logged and retried on the next tick;
// jobs never take the process down.
type Scheduler struct {
	jobs []Job
	log  *logger.Logger
	wg   sync.WaitGroup
}

func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		log: log,
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per job and returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, job)
	}
	s.log.Info("Scheduler started", map[string]interface{}{
		"jobs": len(s.jobs),
	})
}

// Stop blocks until every job goroutine has exited. The context passed to
// Start must be canceled first.
func (s *Scheduler) Stop() {
	s.wg.Wait()
	s.log.Info("Scheduler stopped", nil)
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	defer s.wg.Done()

	log := s.log.WithJob(job.Name)
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.runOnce(ctx, job, log)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job, log)
		}
	}
}

// runOnce executes one job invocation with panic isolation.
func (s *Scheduler) runOnce(ctx context.Context, job Job, log *logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error("Job run failed", err, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return
	}
	log.Debug("Job run complete", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
