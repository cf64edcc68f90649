package biography

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"fantamorto/internal/platform/config"
	"fantamorto/internal/platform/metrics"
	"fantamorto/internal/wikidata"
)

// Source runs one facts query for a batch of identifiers.
type Source interface {
	Facts(ctx context.Context, ids []string, locale string) ([]wikidata.Fact, error)
}

// Facts is the biography of one entity. Dates are YYYY-MM-DD or empty.
type Facts struct {
	DisplayName  string
	BirthDate    string
	DeathDate    string
	ReferenceURL string
}

// Fetcher retrieves facts in chunks on a bounded pool.
type Fetcher struct {
	source    Source
	locale    string
	chunkSize int
	workers   int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func WithLocale(locale string) Option {
	return func(f *Fetcher) {
		if locale != "" {
			f.locale = locale
		}
	}
}

// WithChunkSize sets the batch size, clamped to 1..config.MaxChunkSize.
func WithChunkSize(n int) Option {
	return func(f *Fetcher) {
		switch {
		case n < 1:
			f.chunkSize = 1
		case n > config.MaxChunkSize:
			f.chunkSize = config.MaxChunkSize
		default:
			f.chunkSize = n
		}
	}
}

func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// New constructs a Fetcher.
func New(source Source, opts ...Option) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New("facts source is required")
	}
	f := &Fetcher{
		source:    source,
		locale:    "it",
		chunkSize: config.MaxChunkSize,
		workers:   5,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// FetchBatch returns facts for as many ids as could be fetched. A failed
// chunk is logged and its ids are absent from the result; callers keep
// whatever they had persisted for them.
func (f *Fetcher) FetchBatch(ctx context.Context, ids []string) map[string]Facts {
	ids = uniqueIDs(ids)
	result := make(map[string]Facts, len(ids))
	if len(ids) == 0 {
		return result
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for _, chunk := range chunks(ids, f.chunkSize) {
		g.Go(func() error {
			facts, err := f.source.Facts(gctx, chunk, f.locale)
			if err != nil {
				f.metrics.IncrementBiographyChunk(false)
				f.logger.ErrorContext(gctx, "biography chunk failed",
					"ids", len(chunk),
					"first_id", chunk[0],
					"error", err,
				)
				return nil
			}
			f.metrics.IncrementBiographyChunk(true)

			mu.Lock()
			defer mu.Unlock()
			for _, fact := range facts {
				merge(result, fact)
			}
			return nil
		})
	}
	_ = g.Wait()
	return result
}

// merge folds one result row into out. Entities with several recorded dates
// come back as several rows; the first non-empty value wins.
func merge(out map[string]Facts, fact wikidata.Fact) {
	next := Facts{
		DisplayName:  fact.Label,
		BirthDate:    NormalizeDate(fact.BirthDate),
		DeathDate:    NormalizeDate(fact.DeathDate),
		ReferenceURL: fact.URL,
	}
	prev, ok := out[fact.ID]
	if !ok {
		out[fact.ID] = next
		return
	}
	if prev.BirthDate == "" {
		prev.BirthDate = next.BirthDate
	}
	if prev.DeathDate == "" {
		prev.DeathDate = next.DeathDate
	}
	out[fact.ID] = prev
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate keeps only the date part of a knowledge base timestamp.
// Values that are not a calendar date (unknown-value nodes) become empty.
func NormalizeDate(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "+")
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		raw = raw[:i]
	}
	if !isoDate.MatchString(raw) {
		return ""
	}
	return raw
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}
