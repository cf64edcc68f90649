package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fantamorto/internal/biography"
	"fantamorto/internal/identity"
	"fantamorto/internal/notification"
	"fantamorto/internal/notification/events"
	"fantamorto/internal/pipeline"
	"fantamorto/internal/platform/config"
	"fantamorto/internal/platform/httpserver"
	"fantamorto/internal/platform/metrics"
	"fantamorto/internal/platform/redis"
	"fantamorto/internal/roster"
	"fantamorto/internal/storage"
	"fantamorto/internal/transport/email"
	"fantamorto/internal/transport/telegram"
	"fantamorto/internal/wikidata"
)

// app is the wired process. Optional parts are nil when not configured.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *storage.Store
	metrics *metrics.Metrics
	redis   *redis.Client
	events  *events.Publisher
	runner  *pipeline.Runner
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	defer func() {
		if err != nil {
			if cerr := a.Close(); cerr != nil {
				logger.WarnContext(ctx, "close after failed startup", "error", cerr)
			}
		}
	}()

	a.store, err = storage.Open(ctx, cfg.Database, storage.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	wd := wikidata.NewClient(cfg.Wikidata, wikidata.WithLogger(logger))
	resolver, err := identity.New(a.store, wd,
		identity.WithLogger(logger),
		identity.WithMetrics(a.metrics),
		identity.WithLocale(cfg.Wikidata.Locale),
		identity.WithHumanMarker(cfg.Wikidata.HumanDescription),
		identity.WithWorkers(cfg.Pipeline.LookupWorkers),
	)
	if err != nil {
		return nil, err
	}
	fetcher, err := biography.New(wd,
		biography.WithLogger(logger),
		biography.WithMetrics(a.metrics),
		biography.WithLocale(cfg.Wikidata.Locale),
		biography.WithChunkSize(cfg.Wikidata.ChunkSize),
		biography.WithWorkers(cfg.Pipeline.LookupWorkers),
	)
	if err != nil {
		return nil, err
	}
	reconciler, err := roster.New(a.store, resolver, fetcher, roster.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	composer := notification.NewComposer(cfg.Wikidata.Locale)
	queuer, err := notification.NewQueuer(a.store, composer,
		notification.WithQueuerLogger(logger),
		notification.WithQueuerMetrics(a.metrics),
		notification.WithAdminAddress(cfg.Telegram.AdminChatID),
	)
	if err != nil {
		return nil, err
	}

	messenger := telegram.NewClient(cfg.Telegram, telegram.WithLogger(logger))
	if !messenger.Enabled() {
		logger.WarnContext(ctx, "telegram bot token not set, message jobs will retry until configured")
	}
	mailer := email.NewMailer(cfg.Email, email.WithLogger(logger))
	if !cfg.Email.Enabled() {
		logger.WarnContext(ctx, "smtp credentials not set, email jobs will retry until configured")
	}

	engineOpts := []notification.EngineOption{
		notification.WithEngineLogger(logger),
		notification.WithEngineMetrics(a.metrics),
		notification.WithDeliveryWorkers(cfg.Pipeline.DeliveryWorkers),
		notification.WithMaxAttempts(cfg.Pipeline.MaxAttempts),
	}
	if cfg.Kafka.Enabled() {
		a.events, err = events.NewPublisher(cfg.Kafka, events.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := a.events.EnsureTopic(ctx); err != nil {
			logger.WarnContext(ctx, "could not ensure outcome topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		engineOpts = append(engineOpts, notification.WithPublisher(a.events))
	}
	engine, err := notification.NewEngine(a.store, messenger, mailer, engineOpts...)
	if err != nil {
		return nil, err
	}

	runnerOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithAlerts(messenger, cfg.Telegram.AdminChatID, composer),
		pipeline.WithPushGateway(cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName),
	}
	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if a.redis != nil {
		runnerOpts = append(runnerOpts, pipeline.WithLocker(redisLocker{
			locker: redis.NewLocker(a.redis.Client, cfg.Redis.LockKey, cfg.Redis.LockTTL),
		}))
	}

	loader := roster.NewLoader(cfg.Teams.Folder, roster.WithLoaderLogger(logger))
	a.runner, err = pipeline.New(loader, reconciler, queuer, engine, runnerOpts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// checks lists the dependencies reported by /healthz.
func (a *app) checks() map[string]httpserver.Checker {
	checks := map[string]httpserver.Checker{"database": a.store}
	if a.redis != nil {
		checks["redis"] = a.redis
	}
	return checks
}

func (a *app) Close() error {
	var errs []error
	if a.events != nil {
		a.events.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// redisLocker adapts the redis lock to the pipeline.
type redisLocker struct {
	locker *redis.Locker
}

func (l redisLocker) Acquire(ctx context.Context) (pipeline.Lock, error) {
	lock, err := l.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// openStore connects to the database without wiring the pipeline.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage.Store, error) {
	store, err := storage.Open(ctx, cfg.Database, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}
