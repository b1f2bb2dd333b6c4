// Package scheduler runs background jobs on a single worker using gocron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// State はジョブの状態を表します。
type State string

const (
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	// StateStopped is terminal and only reached on shutdown.
	StateStopped State = "stopped"
)

var (
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
	ErrInvalidTime     = errors.New("scheduler: hour must be 0-23 and minute 0-59")
	ErrDuplicateJob    = errors.New("scheduler: job name already registered")
)

// Job is the unit of work run by the scheduler. The context is cancelled on Stop.
type Job func(ctx context.Context) error

// Status is a snapshot of a job's state machine.
type Status struct {
	State      State
	LastResult State // succeeded or failed, empty before the first run
	LastError  string
	LastRun    time.Time
	Runs       int
}

// Scheduler wraps a gocron scheduler limited to one concurrent job.
// Coinciding firings wait for the worker instead of overlapping.
type Scheduler struct {
	cron   *gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
	kind   func(error) string

	mu       sync.Mutex
	statuses map[string]*Status
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithErrorKind sets the classifier whose result is logged as "kind" when a job fails.
func WithErrorKind(fn func(error) string) Option {
	return func(s *Scheduler) { s.kind = fn }
}

// New creates a scheduler whose daily triggers are anchored to loc.
func New(loc *time.Location, opts ...Option) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cron := gocron.NewScheduler(loc)
	// 上限1のWaitModeで、同じジョブの重複実行も他ジョブとの同時実行も防ぐ
	cron.SetMaxConcurrentJobs(1, gocron.WaitMode)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		kind:     func(error) string { return "unknown" },
		statuses: make(map[string]*Status),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers job to run at a fixed interval, starting when the scheduler starts.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if err := s.reserve(name); err != nil {
		return err
	}
	if _, err := s.cron.Every(interval).Tag(name).Do(s.run, name, job); err != nil {
		s.release(name)
		return fmt.Errorf("scheduler: register %s: %w", name, err)
	}
	slog.Info("job registered", "job", name, "interval", interval.String())
	return nil
}

// DailyAt registers job to run once a day at hour:minute in the scheduler's location.
func (s *Scheduler) DailyAt(name string, hour, minute int, job Job) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrInvalidTime
	}
	if err := s.reserve(name); err != nil {
		return err
	}
	at := fmt.Sprintf("%02d:%02d", hour, minute)
	if _, err := s.cron.Every(1).Day().At(at).Tag(name).Do(s.run, name, job); err != nil {
		s.release(name)
		return fmt.Errorf("scheduler: register %s: %w", name, err)
	}
	slog.Info("job registered", "job", name, "at", at, "location", s.cron.Location().String())
	return nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	slog.Info("scheduler started", "jobs", s.cron.Len())
}

// Stop tears the scheduler down. An in-flight job sees its context cancelled
// and may be abandoned.
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()

	s.mu.Lock()
	for _, st := range s.statuses {
		st.State = StateStopped
	}
	s.mu.Unlock()
	slog.Info("scheduler stopped")
}

// Status returns a copy of the named job's status.
func (s *Scheduler) Status(name string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[name]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// NextRun returns when the named job fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	jobs, err := s.cron.FindJobsByTag(name)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	return jobs[0].NextRun(), true
}

func (s *Scheduler) reserve(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	s.statuses[name] = &Status{State: StateScheduled}
	return nil
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.statuses, name)
	s.mu.Unlock()
}

// run drives one firing through Running to Succeeded or Failed and back to
// Scheduled. Errors and panics are logged and never propagate to gocron.
func (s *Scheduler) run(name string, job Job) {
	if s.ctx.Err() != nil {
		return
	}
	started := s.now()
	s.transition(name, func(st *Status) {
		st.State = StateRunning
		st.LastRun = started
		st.Runs++
	})
	slog.Debug("job running", "job", name, "state", StateRunning)

	err := safeCall(s.ctx, job)

	result := StateSucceeded
	if err != nil {
		result = StateFailed
		slog.Error("job failed",
			"job", name,
			"state", result,
			"kind", s.kind(err),
			"error", err,
			"duration", time.Since(started).String(),
		)
	} else {
		slog.Debug("job succeeded", "job", name, "state", result, "duration", time.Since(started).String())
	}

	s.transition(name, func(st *Status) {
		st.LastResult = result
		st.LastError = ""
		if err != nil {
			st.LastError = err.Error()
		}
		if st.State != StateStopped {
			st.State = StateScheduled
		}
	})
}

func (s *Scheduler) transition(name string, fn func(st *Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[name]
	if !ok {
		st = &Status{}
		s.statuses[name] = st
	}
	fn(st)
}

func safeCall(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job(ctx)
}
