package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronScheduler implements Scheduler on robfig/cron with standard five-field
// expressions.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	jobs    map[string]Job
	ctx     context.Context
	started bool
}

var _ Scheduler = (*CronScheduler)(nil)

// CronOption configures the scheduler.
type CronOption func(*CronScheduler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) CronOption {
	return func(s *CronScheduler) {
		s.logger = logger
	}
}

// NewCronScheduler creates a scheduler.
func NewCronScheduler(opts ...CronOption) *CronScheduler {
	s := &CronScheduler{
		cron:    cron.New(),
		logger:  slog.Default().With(slog.String("component", "scheduler")),
		entries: make(map[string]cron.EntryID),
		jobs:    make(map[string]Job),
		ctx:     context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Schedule registers a job. Jobs may be added before or after Start.
func (s *CronScheduler) Schedule(job Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if job.Handler == nil {
		return fmt.Errorf("job handler is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.ID]; exists {
		return fmt.Errorf("job %q already scheduled", job.ID)
	}

	entryID, err := s.cron.AddFunc(job.CronExpr, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", job.ID, err)
	}

	s.entries[job.ID] = entryID
	s.jobs[job.ID] = job
	return nil
}

// runJob executes a job's handler, logging failures. A failed run is skipped;
// the next firing is the retry boundary.
func (s *CronScheduler) runJob(job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Info("running scheduled job", slog.String("job", job.Handler.Name()))

	if err := job.Handler.Execute(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", job.Handler.Name()),
			slog.Any("error", err))
	}
}

// Remove unschedules a job. Removing an unknown job is a no-op.
func (s *CronScheduler) Remove(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[jobID]
	if !ok {
		return nil
	}

	s.cron.Remove(entryID)
	delete(s.entries, jobID)
	delete(s.jobs, jobID)
	return nil
}

// Start begins firing scheduled jobs. Jobs run with the given context.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx = ctx
	s.started = true
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (s *CronScheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	return nil
}

// List returns the scheduled jobs with their next run times.
func (s *CronScheduler) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for id, job := range s.jobs {
		if entryID, ok := s.entries[id]; ok {
			job.NextRun = s.cron.Entry(entryID).Next
		}
		jobs = append(jobs, job)
	}
	return jobs
}
