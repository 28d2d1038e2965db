package worker

// scheduler.go
// In-process periodic job runner for the inventory sweeps (low-stock check,
// auto-replenishment). Jobs are plain callables registered with a period; a
// per-job running flag guarantees a slow run is skipped rather than stacked
// when the next tick arrives. Job failures are logged, never retried
// mid-cycle, and never crash the process.

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is one schedulable unit of work.
type Job struct {
	Name    string
	Every   time.Duration
	Run     func(ctx context.Context) error
	running atomic.Bool
}

// Scheduler drives registered jobs on their fixed periods.
type Scheduler struct {
	jobs []*Job
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(name string, every time.Duration, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, &Job{Name: name, Every: every, Run: run})
}

// Start launches one goroutine per job. Each runs once immediately, then on
// every tick. It respects the context for graceful shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		go func(j *Job) {
			log.Info().Str("job", j.Name).Dur("every", j.Every).Msg("scheduler: job started")
			s.execute(ctx, j)

			ticker := time.NewTicker(j.Every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Info().Str("job", j.Name).Msg("scheduler: job shutting down")
					return
				case <-ticker.C:
					s.execute(ctx, j)
				}
			}
		}(job)
	}
}

func (s *Scheduler) execute(ctx context.Context, j *Job) {
	// Non-overlap guard: if the previous run is still going, skip this tick.
	if !j.running.CompareAndSwap(false, true) {
		log.Warn().Str("job", j.Name).Msg("scheduler: previous run still in progress, skipping tick")
		return
	}
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job", j.Name).Interface("panic", r).Msg("scheduler: job panicked")
		}
	}()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", j.Name).Msg("scheduler: job failed")
		return
	}
	log.Debug().Str("job", j.Name).Dur("took", time.Since(start)).Msg("scheduler: job finished")
}
