// Package e2e drives the full pipeline against fake external services.
package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fantamorto/e2e/fakes"
	"fantamorto/internal/biography"
	"fantamorto/internal/identity"
	"fantamorto/internal/notification"
	notifmodels "fantamorto/internal/notification/models"
	"fantamorto/internal/pipeline"
	"fantamorto/internal/platform/config"
	"fantamorto/internal/roster"
	"fantamorto/internal/roster/models"
	"fantamorto/internal/storage"
	"fantamorto/internal/transport/email"
	"fantamorto/internal/transport/telegram"
	"fantamorto/internal/wikidata"
)

// World is the per-scenario state shared by the step definitions.
type World struct {
	dir      string
	teamsDir string
	admin    string

	Wikidata *fakes.Wikidata
	Telegram *fakes.Telegram
	store    *storage.Store

	LastReport pipeline.Report
	LastErr    error
}

// Start brings up the fakes and a scratch directory.
func (w *World) Start() error {
	dir, err := os.MkdirTemp("", "fantamorto-e2e-")
	if err != nil {
		return err
	}
	w.dir = dir
	w.teamsDir = filepath.Join(dir, "teams")
	w.Wikidata = fakes.NewWikidata()
	w.Telegram = fakes.NewTelegram()
	return os.MkdirAll(w.teamsDir, 0o755)
}

// Close stops the fakes and removes the scratch directory.
func (w *World) Close() {
	if w.store != nil {
		_ = w.store.Close()
	}
	if w.Wikidata != nil {
		w.Wikidata.Close()
	}
	if w.Telegram != nil {
		w.Telegram.Close()
	}
	if w.dir != "" {
		_ = os.RemoveAll(w.dir)
	}
}

func (w *World) SetAdmin(chatID string) { w.admin = chatID }

// WriteTeam writes a team file named from its parts.
func (w *World) WriteTeam(team, owner, chatID string, anyDeath bool, members []string) error {
	parts := []string{team, owner}
	if chatID != "" {
		parts = append(parts, chatID)
	}
	if anyDeath {
		parts = append(parts, roster.AnyDeathMarker)
	}
	name := strings.Join(parts, roster.FileSeparator) + ".csv"
	return os.WriteFile(filepath.Join(w.teamsDir, name), []byte(strings.Join(members, "\n")+"\n"), 0o600)
}

func (w *World) cfg() config.Config {
	cfg := config.Default()
	cfg.Database = config.Database{Driver: "sqlite", DSN: filepath.Join(w.dir, "fantamorto.db")}
	cfg.Teams.Folder = w.teamsDir
	cfg.Wikidata.SearchURL = w.Wikidata.URL + "/w/api.php"
	cfg.Wikidata.SPARQLURL = w.Wikidata.URL + "/sparql"
	cfg.Wikidata.Timeout = 5 * time.Second
	cfg.Telegram.APIURL = w.Telegram.URL
	cfg.Telegram.BotToken = "e2e-token"
	cfg.Telegram.AdminChatID = w.admin
	return cfg
}

// Run wires the pipeline the way the binary does and runs it once.
func (w *World) Run(ctx context.Context) error {
	cfg := w.cfg()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if w.store == nil {
		store, err := storage.Open(ctx, cfg.Database, storage.WithLogger(logger))
		if err != nil {
			return err
		}
		w.store = store
	}

	wd := wikidata.NewClient(cfg.Wikidata, wikidata.WithLogger(logger))
	resolver, err := identity.New(w.store, wd, identity.WithLogger(logger), identity.WithLocale(cfg.Wikidata.Locale))
	if err != nil {
		return err
	}
	fetcher, err := biography.New(wd, biography.WithLogger(logger), biography.WithLocale(cfg.Wikidata.Locale))
	if err != nil {
		return err
	}
	reconciler, err := roster.New(w.store, resolver, fetcher, roster.WithLogger(logger))
	if err != nil {
		return err
	}
	composer := notification.NewComposer(cfg.Wikidata.Locale)
	queuer, err := notification.NewQueuer(w.store, composer,
		notification.WithQueuerLogger(logger), notification.WithAdminAddress(cfg.Telegram.AdminChatID))
	if err != nil {
		return err
	}
	messenger := telegram.NewClient(cfg.Telegram, telegram.WithLogger(logger))
	engine, err := notification.NewEngine(w.store, messenger, email.NewMailer(cfg.Email),
		notification.WithEngineLogger(logger))
	if err != nil {
		return err
	}
	runner, err := pipeline.New(roster.NewLoader(cfg.Teams.Folder, roster.WithLoaderLogger(logger)),
		reconciler, queuer, engine,
		pipeline.WithLogger(logger),
		pipeline.WithAlerts(messenger, cfg.Telegram.AdminChatID, composer))
	if err != nil {
		return err
	}

	w.LastReport, w.LastErr = runner.Run(ctx)
	return nil
}

// Person reads a tracked person from the store.
func (w *World) Person(ctx context.Context, name string) (models.Person, error) {
	if w.store == nil {
		return models.Person{}, fmt.Errorf("pipeline has not run")
	}
	return w.store.FindPersonByName(ctx, name)
}

func (w *World) Outbox(ctx context.Context) ([]notifmodels.Job, error) {
	if w.store == nil {
		return nil, nil
	}
	return w.store.ListOutbox(ctx)
}

func (w *World) History(ctx context.Context) ([]notifmodels.HistoryEntry, error) {
	if w.store == nil {
		return nil, nil
	}
	return w.store.ListHistory(ctx, 0)
}

func (w *World) KnowledgeBase() *fakes.Wikidata { return w.Wikidata }

func (w *World) Chats() *fakes.Telegram { return w.Telegram }

// RunError is the error of the last run.
func (w *World) RunError() error { return w.LastErr }
