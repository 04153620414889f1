package daemon

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
)

const scheduledSyncJob = "scheduled-sync"

// Scheduler wraps a gocron scheduler running the scheduled sync on a cron expression.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	task      func()
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.DaemonError("failed to create scheduler").WithCause(err).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleSync registers task on the cron expression (five fields, no seconds).
// A run that is still going when the next one is due delays it.
func (s *Scheduler) ScheduleSync(expr string, task func()) error {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(task),
		gocron.WithName(scheduledSyncJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.ConfigError("invalid sync schedule").WithCause(err).WithContext("schedule", expr).Build()
	}
	s.job = job
	s.task = task
	return nil
}

// Reschedule moves the scheduled sync to a new cron expression.
func (s *Scheduler) Reschedule(expr string) error {
	if s.job == nil {
		return errors.DaemonError("no scheduled sync to update").Build()
	}
	job, err := s.scheduler.Update(
		s.job.ID(),
		gocron.CronJob(expr, false),
		gocron.NewTask(s.task),
		gocron.WithName(scheduledSyncJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.ConfigError("invalid sync schedule").WithCause(err).WithContext("schedule", expr).Build()
	}
	s.job = job
	slog.Info("Sync schedule updated", logfields.ScheduleName(expr))
	return nil
}

// NextRun reports when the scheduled sync runs next.
func (s *Scheduler) NextRun() (time.Time, bool) {
	if s.job == nil {
		return time.Time{}, false
	}
	next, err := s.job.NextRun()
	if err != nil || next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
