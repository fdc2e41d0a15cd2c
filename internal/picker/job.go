package picker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lunchybot/lunchy/internal/storage"
)

// announceFormat is the weekly pick announcement.
const announceFormat = "We're going to %s! Woo! (I'm marking this as visited, so if you don't go this week don't expect to see it pop up again soon...)"

// Announcer posts the pick to a named channel. Satisfied by the slack gateway.
type Announcer interface {
	Send(ctx context.Context, channelID string, text string) error
	ChannelIDByName(ctx context.Context, name string) (string, error)
}

// Job is the scheduled pick-and-announce task. Each execution is a fresh
// read-pick-mark cycle, so the scheduler may invoke it repeatedly; marking the
// chosen restaurant as visited is the one irreversible step and happens
// exactly once per execution.
type Job struct {
	store       storage.Store
	picker      *Picker
	announcer   Announcer
	channelName string
	logger      *slog.Logger
	now         func() time.Time
}

// JobOption configures the job.
type JobOption func(*Job)

// WithClock overrides the visit timestamp source, used by tests.
func WithClock(now func() time.Time) JobOption {
	return func(j *Job) {
		j.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) JobOption {
	return func(j *Job) {
		j.logger = logger
	}
}

// NewJob creates the scheduled pick job announcing into channelName.
func NewJob(store storage.Store, picker *Picker, announcer Announcer, channelName string, opts ...JobOption) *Job {
	j := &Job{
		store:       store,
		picker:      picker,
		announcer:   announcer,
		channelName: channelName,
		logger:      slog.Default().With(slog.String("component", "picker")),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Name identifies the job in scheduler logs.
func (j *Job) Name() string {
	return "pick-restaurant"
}

// Execute picks a restaurant, marks it visited, and announces it. Any failure
// skips the announcement; there is no retry until the next scheduled firing.
func (j *Job) Execute(ctx context.Context) error {
	j.logger.Info("picking a restaurant")

	restaurants, err := j.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list restaurants: %w", err)
	}

	choice, err := j.picker.Pick(restaurants)
	if err != nil {
		return fmt.Errorf("failed to pick a restaurant: %w", err)
	}

	visited := j.now()
	if err := j.store.SetLastVisited(ctx, choice.Name, visited); err != nil {
		return fmt.Errorf("failed to mark %q as visited: %w", choice.Name, err)
	}

	j.logger.Info("marked restaurant as visited",
		slog.String("name", choice.Name),
		slog.Time("last_visited", visited))

	channelID, err := j.announcer.ChannelIDByName(ctx, j.channelName)
	if err != nil {
		return fmt.Errorf("failed to resolve announce channel %q: %w", j.channelName, err)
	}

	if err := j.announcer.Send(ctx, channelID, fmt.Sprintf(announceFormat, choice.Name)); err != nil {
		return fmt.Errorf("failed to announce pick: %w", err)
	}

	return nil
}
