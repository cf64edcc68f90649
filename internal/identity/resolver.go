package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"fantamorto/internal/platform/metrics"
	"fantamorto/internal/storage"
	"fantamorto/internal/wikidata"
	"fantamorto/pkg/platform/sentinel"
)

// Store is the identity cache.
type Store interface {
	FindIdentity(ctx context.Context, name string) (string, error)
	SaveIdentity(ctx context.Context, name, stableID string) error
	IdentityOwner(ctx context.Context, stableID string) (string, error)
}

// Searcher ranks knowledge base entities for a free-text name.
type Searcher interface {
	Search(ctx context.Context, name, locale string) ([]wikidata.Candidate, error)
}

// Status is the outcome of a resolution.
type Status string

const (
	StatusResolved Status = "resolved"
	StatusCached   Status = "cached"
	StatusNotFound Status = "not_found"
)

// Resolution maps a name to a stable identifier. Collision names the
// cache owner when the identifier was already taken by another name; the
// identifier is still returned but was not cached for Name.
type Resolution struct {
	Name      string
	StableID  string
	Status    Status
	Collision string
}

// HumanMarkers are the descriptions marking a human being per locale.
var HumanMarkers = map[string]string{
	"it": "essere umano",
	"en": "human",
	"fr": "être humain",
	"de": "mensch",
	"es": "ser humano",
}

const defaultWorkers = 5

// Resolver turns names into stable identifiers, consulting the cache first.
type Resolver struct {
	store    Store
	searcher Searcher
	locale   string
	marker   string
	workers  int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLocale sets the search language and its default human marker.
func WithLocale(locale string) Option {
	return func(r *Resolver) {
		if locale != "" {
			r.locale = locale
		}
	}
}

// WithHumanMarker overrides the description substring preferred in results.
func WithHumanMarker(marker string) Option {
	return func(r *Resolver) {
		if marker != "" {
			r.marker = marker
		}
	}
}

// WithWorkers bounds ResolveAll concurrency.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New constructs a Resolver.
func New(store Store, searcher Searcher, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("identity store is required")
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	r := &Resolver{
		store:    store,
		searcher: searcher,
		locale:   "it",
		workers:  defaultWorkers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.marker == "" {
		r.marker = HumanMarkers[r.locale]
	}
	r.marker = strings.ToLower(r.marker)
	return r, nil
}

// Resolve returns the stable identifier for name. Lookup failures wrap
// sentinel.ErrUnavailable; a name without candidates is StatusNotFound with
// no error.
func (r *Resolver) Resolve(ctx context.Context, name string) (Resolution, error) {
	res := Resolution{Name: name}

	cached, err := r.store.FindIdentity(ctx, name)
	switch {
	case err == nil:
		res.StableID, res.Status = cached, StatusCached
		r.metrics.IncrementResolution(string(StatusCached))
		return res, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return res, fmt.Errorf("read identity cache for %q: %w", name, err)
	}

	candidates, err := r.searcher.Search(ctx, name, r.locale)
	if err != nil {
		r.metrics.IncrementResolution("error")
		if errors.Is(err, sentinel.ErrUnavailable) {
			return res, fmt.Errorf("search %q: %w", name, err)
		}
		return res, fmt.Errorf("search %q: %w: %w", name, sentinel.ErrUnavailable, err)
	}
	if len(candidates) == 0 {
		r.logger.WarnContext(ctx, "no identifier found", "name", name)
		res.Status = StatusNotFound
		r.metrics.IncrementResolution(string(StatusNotFound))
		return res, nil
	}

	res.StableID, res.Status = r.pick(candidates).ID, StatusResolved
	if err := r.store.SaveIdentity(ctx, name, res.StableID); err != nil {
		if !storage.IsConflictOn(err, "stable_id") {
			return res, fmt.Errorf("cache identity for %q: %w", name, err)
		}
		owner, ownerErr := r.store.IdentityOwner(ctx, res.StableID)
		if ownerErr != nil {
			owner = "unknown"
		}
		res.Collision = owner
		r.logger.WarnContext(ctx, "identifier collision, mapping not cached",
			"name", name,
			"stable_id", res.StableID,
			"cached_for", owner,
		)
		r.metrics.IncrementResolution("collision")
		return res, nil
	}
	r.metrics.IncrementResolution(string(StatusResolved))
	return res, nil
}

// pick prefers the first candidate described as a human being.
func (r *Resolver) pick(candidates []wikidata.Candidate) wikidata.Candidate {
	if r.marker != "" {
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.Description), r.marker) {
				return c
			}
		}
	}
	return candidates[0]
}

// ResolveAll resolves names on a bounded pool. The first error cancels the
// remaining lookups and is returned; results are in input order.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) ([]Resolution, error) {
	out := make([]Resolution, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, name := range names {
		g.Go(func() error {
			res, err := r.Resolve(gctx, name)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
