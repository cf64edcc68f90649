// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is one scheduled invocation.
type RunFunc func(ctx context.Context) error

// Scheduler runs a single job on a standard five-field cron spec. A run
// that is still going when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	run      RunFunc
	logger   *slog.Logger
	entry    cron.EntryID
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New parses spec and prepares the job.
func New(spec string, run RunFunc, opts ...Option) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("run func is required")
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	s := &Scheduler{schedule: schedule, run: run, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	cl := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return s, nil
}

// Start schedules the job; every run derives from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.entry = s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		if err := s.run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled run failed", "error", err)
		}
	}))
	s.cron.Start()
	s.logger.InfoContext(ctx, "scheduler started", "next_run", s.Next())
}

// Stop stops scheduling and returns a context done once the running job,
// if any, has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next is the time of the next tick.
func (s *Scheduler) Next() time.Time {
	if s.entry != 0 {
		return s.cron.Entry(s.entry).Next
	}
	return s.schedule.Next(time.Now())
}

// cronLogger adapts slog to the cron logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
