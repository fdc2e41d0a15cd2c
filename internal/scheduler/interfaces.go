// Package scheduler provides cron job management for recurring tasks.
package scheduler

import (
	"context"
	"time"
)

// Scheduler manages scheduled jobs.
type Scheduler interface {
	// Schedule adds a new job with a cron expression
	Schedule(job Job) error

	// Remove removes a scheduled job
	Remove(jobID string) error

	// Start begins running scheduled jobs
	Start(ctx context.Context) error

	// Stop gracefully stops all jobs, waiting for running ones
	Stop() error

	// List returns all scheduled jobs
	List() []Job
}

// Job represents a scheduled task.
type Job struct {
	NextRun  time.Time
	Handler  JobHandler
	ID       string
	CronExpr string
}

// JobHandler executes a scheduled job.
type JobHandler interface {
	// Execute runs the job
	Execute(ctx context.Context) error

	// Name returns the job name for logging
	Name() string
}
