package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"fantamorto/internal/platform/config"
	"fantamorto/pkg/platform/sentinel"
)

// Report summarises one download.
type Report struct {
	Teams   int
	Written []string
	Skipped []string
}

// Downloader fetches the league sheet and writes team files.
type Downloader struct {
	http   *resty.Client
	cfg    config.Sheets
	logger *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHTTPClient replaces the resty client.
func WithHTTPClient(c *resty.Client) Option {
	return func(d *Downloader) {
		if c != nil {
			d.http = c
		}
	}
}

// NewDownloader requires a sheet id.
func NewDownloader(cfg config.Sheets, opts ...Option) (*Downloader, error) {
	if cfg.SheetID == "" {
		return nil, errors.New("sheet id is required")
	}
	d := &Downloader{
		http:   resty.New(),
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ExportURL is the CSV export address of the configured sheet.
func (d *Downloader) ExportURL() string {
	return fmt.Sprintf(d.cfg.ExportURL, d.cfg.SheetID, d.cfg.GID)
}

// Fetch downloads and parses the sheet.
func (d *Downloader) Fetch(ctx context.Context) ([]Team, error) {
	resp, err := d.http.R().SetContext(ctx).Get(d.ExportURL())
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sheet: %w", sentinel.ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch sheet: status %d", resp.StatusCode())
	}
	r := csv.NewReader(bytes.NewReader(resp.Body()))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}
	return ParseSheet(rows)
}

// Download writes one file per team with players into outputDir. Teams
// without players are skipped.
func (d *Downloader) Download(ctx context.Context, outputDir string) (Report, error) {
	var report Report

	teams, err := d.Fetch(ctx)
	if err != nil {
		return report, err
	}
	report.Teams = len(teams)

	contacts, err := d.loadContacts(ctx)
	if err != nil {
		return report, err
	}
	corrections, err := d.loadCorrections(ctx)
	if err != nil {
		return report, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	for _, t := range teams {
		if len(t.Players) == 0 {
			report.Skipped = append(report.Skipped, t.Name)
			continue
		}
		contact, ok := contacts.Lookup(t.Name, t.Owner)
		if !ok {
			d.logger.DebugContext(ctx, "no contact for team", "team", t.Name, "owner", t.Owner)
		}
		players := make([]string, len(t.Players))
		for i, p := range t.Players {
			players[i] = corrections.Apply(p)
		}

		name := FileName(t.Name, t.Owner, contact)
		if err := writeTeamFile(filepath.Join(outputDir, name), players); err != nil {
			return report, fmt.Errorf("write %s: %w", name, err)
		}
		report.Written = append(report.Written, name)
	}

	d.logger.InfoContext(ctx, "team files downloaded",
		"teams", report.Teams, "written", len(report.Written), "skipped", len(report.Skipped))
	return report, nil
}

func (d *Downloader) loadContacts(ctx context.Context) (Contacts, error) {
	var out Contacts
	err := d.readOptional(ctx, d.cfg.NotificationsFile, func(r io.Reader) (err error) {
		out, err = ParseContacts(r)
		return err
	})
	if out == nil {
		out = Contacts{}
	}
	return out, err
}

func (d *Downloader) loadCorrections(ctx context.Context) (Corrections, error) {
	var out Corrections
	err := d.readOptional(ctx, d.cfg.CorrectionsFile, func(r io.Reader) (err error) {
		out, err = ParseCorrections(r)
		return err
	})
	if out == nil {
		out = Corrections{}
	}
	return out, err
}

// readOptional parses path when it exists. A missing file is logged.
func (d *Downloader) readOptional(ctx context.Context, path string, parse func(io.Reader) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.WarnContext(ctx, "optional sheet file missing", "file", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func writeTeamFile(path string, players []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	for _, p := range players {
		if err := w.Write([]string{p}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
