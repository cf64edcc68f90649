package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fantamorto/internal/notification/models"
	"fantamorto/internal/platform/metrics"
)

// ErrChannelDisabled is returned by transports whose credentials are not
// configured. Jobs on such a channel fail every attempt until the cap.
var ErrChannelDisabled = errors.New("channel disabled")

const defaultDeliveryWorkers = 10

// DrainReport counts the outcomes of one drain.
type DrainReport struct {
	Attempted int
	Delivered int
	Failed    int // reached the attempt cap
	Retrying  int
}

// Engine drains the outbox.
type Engine struct {
	store       DeliveryStore
	messenger   Messenger
	mailer      Mailer
	publisher   Publisher
	workers     int
	maxAttempts int
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithDeliveryWorkers bounds concurrent delivery attempts.
func WithDeliveryWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxAttempts sets the attempt count at which a job fails permanently.
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithPublisher streams committed outcomes.
func WithPublisher(p Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(store DeliveryStore, messenger Messenger, mailer Mailer, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, errors.New("delivery store is required")
	}
	if messenger == nil {
		return nil, errors.New("messenger is required")
	}
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	e := &Engine{
		store:       store,
		messenger:   messenger,
		mailer:      mailer,
		workers:     defaultDeliveryWorkers,
		maxAttempts: models.DefaultMaxAttempts,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Drain attempts every outstanding job once. Attempts run in parallel; their
// results are applied to the store afterwards in a single transaction.
func (e *Engine) Drain(ctx context.Context) (DrainReport, error) {
	var report DrainReport

	jobs, err := e.store.ListOutbox(ctx)
	if err != nil {
		return report, fmt.Errorf("list outbox: %w", err)
	}
	e.metrics.SetOutboxSize(len(jobs))
	if len(jobs) == 0 {
		return report, nil
	}

	results := make([]error, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = e.deliver(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
	report.Attempted = len(jobs)

	var completed []models.HistoryEntry
	err = e.store.RunInTx(ctx, func(ctx context.Context) error {
		completed = completed[:0]
		for i, job := range jobs {
			entry, done, err := e.apply(ctx, job, results[i])
			if err != nil {
				return err
			}
			if done {
				completed = append(completed, entry)
			}
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("apply delivery results: %w", err)
	}

	for i, job := range jobs {
		switch {
		case results[i] == nil:
			report.Delivered++
			e.metrics.IncrementDelivery(string(job.Channel), string(models.OutcomeDelivered))
		case job.Attempts+1 >= e.maxAttempts:
			report.Failed++
			e.metrics.IncrementDelivery(string(job.Channel), string(models.OutcomeFailed))
		default:
			report.Retrying++
			e.metrics.IncrementDelivery(string(job.Channel), "retry")
		}
	}
	e.metrics.SetOutboxSize(report.Retrying)

	if e.publisher != nil && len(completed) > 0 {
		if err := e.publisher.Publish(ctx, completed); err != nil {
			e.logger.WarnContext(ctx, "failed to publish delivery outcomes",
				"count", len(completed),
				"error", err,
			)
		}
	}
	return report, nil
}

func (e *Engine) deliver(ctx context.Context, job models.Job) error {
	var err error
	switch job.Channel {
	case models.ChannelMessage:
		err = e.messenger.Send(ctx, job.Address, job.Body)
	case models.ChannelEmail:
		err = e.mailer.Send(ctx, job.Address, job.Subject, job.Body)
	default:
		err = fmt.Errorf("unknown channel %q", job.Channel)
	}
	if err != nil {
		e.logger.WarnContext(ctx, "delivery attempt failed",
			"job_id", job.ID,
			"channel", job.Channel,
			"attempt", job.Attempts+1,
			"error", err,
		)
	}
	return err
}

// apply moves a terminal job to history or records a failed attempt.
func (e *Engine) apply(ctx context.Context, job models.Job, result error) (models.HistoryEntry, bool, error) {
	job.Attempts++
	if result == nil {
		entry, err := e.store.CompleteJob(ctx, models.NewHistoryEntry(job, models.OutcomeDelivered, "", e.now()))
		return entry, true, err
	}
	if job.Attempts >= e.maxAttempts {
		entry, err := e.store.CompleteJob(ctx, models.NewHistoryEntry(job, models.OutcomeFailed, result.Error(), e.now()))
		if err == nil {
			e.logger.ErrorContext(ctx, "job failed permanently",
				"job_id", job.ID,
				"channel", job.Channel,
				"address", job.Address,
				"attempts", job.Attempts,
				"error", result,
			)
		}
		return entry, true, err
	}
	return models.HistoryEntry{}, false, e.store.RecordAttempt(ctx, job.ID, job.Attempts, result.Error())
}
