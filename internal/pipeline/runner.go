// Package pipeline runs one reconcile, queue and deliver cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"fantamorto/internal/notification"
	"fantamorto/internal/platform/metrics"
	"fantamorto/internal/platform/tracing"
	"fantamorto/internal/roster"
	"fantamorto/internal/roster/models"
	"fantamorto/pkg/platform/sentinel"
)

// ErrAborted is returned when the identity service is unreachable. Nothing
// was queued or delivered by the aborted run.
var ErrAborted = errors.New("pipeline run aborted")

const (
	resultOK      = "ok"
	resultAborted = "aborted"
	resultError   = "error"
)

// Report summarizes one run.
type Report struct {
	RunID          string
	Teams          int
	Names          int
	SkippedRoster  bool
	Refresh        roster.RefreshReport
	Apply          roster.ApplyReport
	NotFoundQueued int
	Queue          notification.QueueReport
	Drain          notification.DrainReport
	Duration       time.Duration
}

// Runner wires the stages together.
type Runner struct {
	source     RosterSource
	reconciler Reconciler
	queuer     Queuer
	drainer    Drainer

	locker   Locker
	alerter  notification.Messenger
	admin    string
	composer *notification.Composer

	pushURL string
	pushJob string

	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLocker serializes runs across processes.
func WithLocker(l Locker) Option {
	return func(r *Runner) { r.locker = l }
}

// WithAlerts sends abort alerts to the admin address through m.
func WithAlerts(m notification.Messenger, admin string, c *notification.Composer) Option {
	return func(r *Runner) {
		r.alerter, r.admin, r.composer = m, admin, c
	}
}

// WithPushGateway pushes run metrics after every run.
func WithPushGateway(url, job string) Option {
	return func(r *Runner) { r.pushURL, r.pushJob = url, job }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(newID func() string) Option {
	return func(r *Runner) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// New constructs a Runner.
func New(source RosterSource, reconciler Reconciler, queuer Queuer, drainer Drainer, opts ...Option) (*Runner, error) {
	switch {
	case source == nil:
		return nil, errors.New("roster source is required")
	case reconciler == nil:
		return nil, errors.New("reconciler is required")
	case queuer == nil:
		return nil, errors.New("queuer is required")
	case drainer == nil:
		return nil, errors.New("drainer is required")
	}
	r := &Runner{
		source:     source,
		reconciler: reconciler,
		queuer:     queuer,
		drainer:    drainer,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one pipeline invocation. An empty roster skips the
// reconcile and queue stages; the outbox is still drained.
func (r *Runner) Run(ctx context.Context) (report Report, err error) {
	report.RunID = r.newID()
	logger := r.logger.With("run_id", report.RunID)
	start := r.now()

	ctx, span := tracing.Start(ctx, "pipeline.run", attribute.String("run_id", report.RunID))
	defer tracing.End(span, &err)
	defer func() {
		report.Duration = r.now().Sub(start)
		r.finish(ctx, logger, report, err)
	}()

	if r.locker != nil {
		lock, err := r.locker.Acquire(ctx)
		if err != nil {
			return report, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.WarnContext(ctx, "failed to release run lock", "error", err)
			}
		}()
	}

	logger.InfoContext(ctx, "pipeline run started")

	if err := r.reconcileAndQueue(ctx, logger, &report); err != nil {
		return report, err
	}

	err = stage(ctx, "pipeline.drain", func(ctx context.Context) (err error) {
		report.Drain, err = r.drainer.Drain(ctx)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("drain outbox: %w", err)
	}
	return report, nil
}

func (r *Runner) reconcileAndQueue(ctx context.Context, logger *slog.Logger, report *Report) error {
	var rs models.Roster
	err := stage(ctx, "pipeline.load", func(ctx context.Context) (err error) {
		rs, err = r.source.Load(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	report.Teams = len(rs.Teams)
	report.Names = len(rs.Names())
	if rs.Empty() {
		report.SkippedRoster = true
		logger.WarnContext(ctx, "roster is empty, skipping reconciliation")
		return nil
	}

	err = stage(ctx, "pipeline.refresh", func(ctx context.Context) error {
		plan, err := r.reconciler.Plan(ctx, rs)
		if err != nil {
			return err
		}
		report.Refresh, err = r.reconciler.Refresh(ctx, plan)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return r.abort(ctx, logger, err)
		}
		return fmt.Errorf("refresh people: %w", err)
	}

	if len(report.Refresh.NewMissing) > 0 {
		if report.NotFoundQueued, err = r.queuer.QueueNotFound(ctx, report.Refresh.NewMissing); err != nil {
			return err
		}
	}

	err = stage(ctx, "pipeline.apply", func(ctx context.Context) (err error) {
		report.Apply, err = r.reconciler.Apply(ctx, rs)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply roster: %w", err)
	}

	err = stage(ctx, "pipeline.queue", func(ctx context.Context) (err error) {
		report.Queue, err = r.queuer.Queue(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("queue notifications: %w", err)
	}
	return nil
}

// abort logs at the highest severity and alerts the admin directly, since
// the run must not touch the outbox.
func (r *Runner) abort(ctx context.Context, logger *slog.Logger, cause error) error {
	logger.ErrorContext(ctx, "identity service unreachable, run aborted", "error", cause)
	if r.alerter != nil && r.admin != "" && r.composer != nil {
		text := r.composer.AdminAlert("Run aborted: identity service unreachable.\n" + cause.Error())
		if err := r.alerter.Send(ctx, r.admin, text); err != nil {
			logger.ErrorContext(ctx, "failed to send abort alert", "error", err)
		}
	}
	return fmt.Errorf("%w: %w", ErrAborted, cause)
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, report Report, err error) {
	result := resultOK
	switch {
	case errors.Is(err, ErrAborted):
		result = resultAborted
	case err != nil:
		result = resultError
	}
	r.metrics.ObserveRun(result, report.Duration, r.now())

	if err == nil {
		logger.InfoContext(ctx, "pipeline run finished",
			"duration_ms", report.Duration.Milliseconds(),
			"teams", report.Teams,
			"names", report.Names,
			"processed", report.Refresh.Processed,
			"died", len(report.Refresh.Died),
			"jobs_queued", report.Queue.Jobs+report.NotFoundQueued,
			"delivered", report.Drain.Delivered,
			"failed", report.Drain.Failed,
			"retrying", report.Drain.Retrying,
		)
	} else if result == resultError {
		logger.ErrorContext(ctx, "pipeline run failed", "error", err)
	}

	if r.pushURL != "" {
		if perr := r.metrics.Push(context.WithoutCancel(ctx), r.pushURL, r.pushJob, ""); perr != nil {
			logger.WarnContext(ctx, "failed to push metrics", "error", perr)
		}
	}
}

func stage(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracing.Start(ctx, name)
	defer tracing.End(span, &err)
	return fn(ctx)
}
