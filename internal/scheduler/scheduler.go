package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobsearch/internal/model"
)

// Poller is one saved search run on every cycle.
type Poller interface {
	Name() string
	Poll(ctx context.Context) error
	Seed(ctx context.Context) error
}

// Scheduler runs every poller on a cron schedule. Cycles never overlap: a
// tick that fires while a cycle is still running is skipped.
type Scheduler struct {
	pollers   []Poller
	store     model.JobStore
	spec      string
	retention time.Duration
	pause     time.Duration // between pollers within one cycle
	logger    *slog.Logger

	mu     sync.Mutex
	seeded bool
}

// NewScheduler creates a scheduler for the given cron spec, e.g. "@every 30m".
// Seen keys older than retention are purged after each cycle.
func NewScheduler(pollers []Poller, store model.JobStore, spec string, retention time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:   pollers,
		store:     store,
		spec:      spec,
		retention: retention,
		pause:     time.Second,
		logger:    logger,
	}
}

// Run registers the cycle, runs one immediately and blocks until ctx is
// cancelled. It returns an error only for an invalid schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{s.logger}))
	if _, err := c.AddFunc(s.spec, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec, "searches", len(s.pollers))
	c.Start()

	s.runCycle(ctx)

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

// runCycle polls every search sequentially. On the very first cycle against
// an empty store, matches are recorded without notifying.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.mu.TryLock() {
		s.logger.Warn("previous cycle still running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	seed := false
	if !s.seeded {
		empty, err := s.store.IsEmpty()
		if err != nil {
			s.logger.Error("checking store", "error", err)
		}
		seed = empty
		s.seeded = true
		if seed {
			s.logger.Info("empty store, seeding without notifications")
		}
	}

	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}

		run := p.Poll
		if seed {
			run = p.Seed
		}
		if err := run(ctx); err != nil {
			s.logger.Error("poll failed", "search", p.Name(), "error", err)
		}

		if i < len(s.pollers)-1 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pause):
			}
		}
	}

	if s.retention > 0 {
		if err := s.store.Cleanup(s.retention); err != nil {
			s.logger.Error("cleanup failed", "error", err)
		}
	}
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
