package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"
)

// Job is the daily broadcast the scheduler fires.
type Job interface {
	SendDailyCelebrations() *entity.CelebrationSummary
}

// Scheduler fires the celebration broadcast once per day at a configured
// wall-clock time in a configured timezone. A run already in progress is
// never overlapped; a trigger arriving mid-run is skipped.
type Scheduler struct {
	job          Job
	scheduleTime string
	location     *time.Location
	log          *slog.Logger
	stopCh       chan struct{}
	now          func() time.Time

	mu        sync.Mutex
	started   bool
	jobActive bool
	nextRun   time.Time
}

func New(conf *config.Config, log *slog.Logger) (*Scheduler, error) {
	scheduleTime := conf.Schedule.Time
	if _, err := time.Parse("15:04", scheduleTime); err != nil {
		return nil, fmt.Errorf("parse schedule time %q: %w", scheduleTime, err)
	}

	location, err := time.LoadLocation(conf.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", conf.Schedule.Timezone, err)
	}

	return &Scheduler{
		scheduleTime: scheduleTime,
		location:     location,
		log:          log.With(sl.Module("scheduler")),
		stopCh:       make(chan struct{}),
		now:          time.Now,
	}, nil
}

func (s *Scheduler) SetJob(job Job) {
	s.job = job
}

// SetClock replaces the time source. For tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start launches the timer goroutine. Safe to call once.
func (s *Scheduler) Start() {
	if s.job == nil {
		s.log.Error("scheduler job not set")
		return
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		for {
			next := s.NextRunTime(s.now())
			s.mu.Lock()
			s.nextRun = next
			s.mu.Unlock()

			timer := time.NewTimer(time.Until(next))

			select {
			case <-s.stopCh:
				timer.Stop()
				s.log.Info("scheduler stopped")
				return
			case <-timer.C:
				s.runOnce("scheduled")
			}
		}
	}()

	s.log.Info("scheduler started",
		slog.String("schedule_time", s.scheduleTime),
		slog.String("timezone", s.location.String()),
	)
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// NextRunTime computes the next firing after now: today at the configured
// wall-clock time in the configured zone, or the same time tomorrow when
// today's slot has passed.
func (s *Scheduler) NextRunTime(now time.Time) time.Time {
	parsed, _ := time.Parse("15:04", s.scheduleTime)
	local := now.In(s.location)

	candidate := time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, s.location)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// RunManual triggers the broadcast outside the schedule. Returns an error
// without sending when a run is already in progress.
func (s *Scheduler) RunManual() (*entity.CelebrationSummary, error) {
	if s.job == nil {
		return nil, fmt.Errorf("scheduler job not set")
	}
	summary, ok := s.runGuarded("manual")
	if !ok {
		return nil, fmt.Errorf("celebration run already in progress")
	}
	return summary, nil
}

func (s *Scheduler) runOnce(trigger string) {
	if _, ok := s.runGuarded(trigger); !ok {
		s.log.Warn("celebration run skipped, previous run still active",
			slog.String("trigger", trigger))
	}
}

func (s *Scheduler) runGuarded(trigger string) (*entity.CelebrationSummary, bool) {
	s.mu.Lock()
	if s.jobActive {
		s.mu.Unlock()
		return nil, false
	}
	s.jobActive = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.jobActive = false
		s.mu.Unlock()
	}()

	s.log.Info("celebration run starting", slog.String("trigger", trigger))
	summary := s.job.SendDailyCelebrations()
	s.log.Info("celebration run finished",
		slog.String("trigger", trigger),
		slog.Int("sent", summary.SentCount),
		slog.Int("failed", summary.FailedCount),
	)
	return summary, true
}

// Status reports scheduler state for the admin endpoint.
func (s *Scheduler) Status() *entity.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := &entity.SchedulerStatus{
		Running:      s.started,
		JobActive:    s.jobActive,
		ScheduleTime: s.scheduleTime,
		Timezone:     s.location.String(),
	}
	if s.started && !s.nextRun.IsZero() {
		status.NextRunTime = s.nextRun.Format(time.RFC3339)
	}
	return status
}
