package roster

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"fantamorto/internal/biography"
	"fantamorto/internal/identity"
	"fantamorto/internal/roster/models"
)

// Store is the persistence the reconciler diffs against.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListPeople(ctx context.Context) ([]models.Person, error)
	UpsertPerson(ctx context.Context, p models.Person) (models.Person, bool, error)
	DeletePeople(ctx context.Context, ids []int64) error

	ListTeams(ctx context.Context) ([]models.Team, error)
	CreateTeams(ctx context.Context, teams []models.Team) ([]models.Team, error)
	UpdateTeams(ctx context.Context, teams []models.Team) error
	DeleteTeams(ctx context.Context, ids []int64) error

	ListMemberships(ctx context.Context) ([]models.Membership, error)
	AddMemberships(ctx context.Context, links []models.Link) error
	RemoveMemberships(ctx context.Context, links []models.Link) error
}

// Resolver maps names to stable identifiers.
type Resolver interface {
	ResolveAll(ctx context.Context, names []string) ([]identity.Resolution, error)
}

// Fetcher retrieves biographies by stable identifier.
type Fetcher interface {
	FetchBatch(ctx context.Context, ids []string) map[string]biography.Facts
}

// Plan is the set of names to refresh this run.
type Plan struct {
	Names []string
	// New marks names with no persisted person yet.
	New map[string]bool
}

// RefreshReport summarizes a refresh.
type RefreshReport struct {
	Processed  int
	Written    int
	NotFound   []string
	NewMissing []string // not found on first sighting
	Collisions []identity.Resolution
	Died       []string
}

// ApplyReport summarizes the team, link and prune steps.
type ApplyReport struct {
	TeamsCreated int
	TeamsUpdated int
	TeamsDeleted int
	LinksAdded   int
	LinksRemoved int
	PeoplePruned int
}

// Changed reports whether any step mutated the store.
func (r ApplyReport) Changed() bool {
	return r != ApplyReport{}
}

// Reconciler mirrors the roster into the store.
type Reconciler struct {
	store    Store
	resolver Resolver
	fetcher  Fetcher
	logger   *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Reconciler.
func New(store Store, resolver Resolver, fetcher Fetcher, opts ...Option) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	r := &Reconciler{store: store, resolver: resolver, fetcher: fetcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Plan selects the roster names that are new or still alive. People with a
// recorded death are never rechecked.
func (r *Reconciler) Plan(ctx context.Context, roster models.Roster) (Plan, error) {
	people, err := r.store.ListPeople(ctx)
	if err != nil {
		return Plan{}, err
	}
	known := make(map[string]models.Person, len(people))
	for _, p := range people {
		known[p.OriginalName] = p
	}

	plan := Plan{New: make(map[string]bool)}
	for _, name := range roster.Names() {
		p, ok := known[name]
		switch {
		case !ok:
			plan.Names = append(plan.Names, name)
			plan.New[name] = true
		case !p.Deceased():
			plan.Names = append(plan.Names, name)
		}
	}
	r.logger.InfoContext(ctx, "names to process", "total", len(plan.Names), "new", len(plan.New))
	return plan, nil
}

// Refresh resolves and fetches every planned name and upserts the person
// rows in one transaction. A transient identity failure aborts before any
// write. Identifiers missing from the biography result keep their persisted
// facts.
func (r *Reconciler) Refresh(ctx context.Context, plan Plan) (RefreshReport, error) {
	report := RefreshReport{Processed: len(plan.Names)}
	if len(plan.Names) == 0 {
		return report, nil
	}

	resolutions, err := r.resolver.ResolveAll(ctx, plan.Names)
	if err != nil {
		return report, err
	}

	var ids []string
	for _, res := range resolutions {
		if res.StableID != "" {
			ids = append(ids, res.StableID)
		}
		if res.Collision != "" {
			report.Collisions = append(report.Collisions, res)
		}
	}
	facts := r.fetcher.FetchBatch(ctx, ids)

	people, err := r.store.ListPeople(ctx)
	if err != nil {
		return report, err
	}
	existing := make(map[string]models.Person, len(people))
	for _, p := range people {
		existing[p.OriginalName] = p
	}

	err = r.store.RunInTx(ctx, func(ctx context.Context) error {
		for _, res := range resolutions {
			prev, had := existing[res.Name]
			next, ok := desiredPerson(res, facts, prev, had)
			if !ok {
				continue
			}
			saved, written, err := r.store.UpsertPerson(ctx, next)
			if err != nil {
				return err
			}
			if !written {
				continue
			}
			report.Written++
			if saved.Deceased() && !prev.Deceased() {
				report.Died = append(report.Died, res.Name)
				r.logger.WarnContext(ctx, "death recorded", "name", res.Name, "death_date", saved.DeathDate)
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, res := range resolutions {
		if res.Status != identity.StatusNotFound {
			continue
		}
		report.NotFound = append(report.NotFound, res.Name)
		if plan.New[res.Name] {
			report.NewMissing = append(report.NewMissing, res.Name)
		}
	}
	return report, nil
}

// desiredPerson computes the row to upsert for a resolution. ok is false
// when the persisted row must be left as is.
func desiredPerson(res identity.Resolution, facts map[string]biography.Facts, prev models.Person, had bool) (models.Person, bool) {
	if res.Status == identity.StatusNotFound {
		return models.NotFoundPerson(res.Name), true
	}
	f, ok := facts[res.StableID]
	if !ok {
		if had && prev.StableID == res.StableID {
			return prev, false
		}
		// First sighting, or the identifier changed: record it and wait for
		// the next run to fill in the facts.
		p := models.Person{OriginalName: res.Name, StableID: res.StableID}
		if had {
			p.ResolvedName, p.BirthDate, p.DeathDate, p.ReferenceURL =
				prev.ResolvedName, prev.BirthDate, prev.DeathDate, prev.ReferenceURL
		}
		return p, true
	}
	return models.Person{
		OriginalName: res.Name,
		ResolvedName: f.DisplayName,
		BirthDate:    f.BirthDate,
		DeathDate:    f.DeathDate,
		ReferenceURL: f.ReferenceURL,
		StableID:     res.StableID,
	}, true
}

// Apply mirrors teams and links and prunes people no team lists. Each step
// commits in its own transaction.
func (r *Reconciler) Apply(ctx context.Context, roster models.Roster) (ApplyReport, error) {
	var report ApplyReport

	if err := r.store.RunInTx(ctx, func(ctx context.Context) error {
		return r.applyTeams(ctx, roster, &report)
	}); err != nil {
		return report, err
	}
	if err := r.store.RunInTx(ctx, func(ctx context.Context) error {
		return r.applyLinks(ctx, roster, &report)
	}); err != nil {
		return report, err
	}
	if err := r.store.RunInTx(ctx, func(ctx context.Context) error {
		return r.prune(ctx, roster, &report)
	}); err != nil {
		return report, err
	}

	r.logger.InfoContext(ctx, "roster reconciled",
		"teams_created", report.TeamsCreated,
		"teams_updated", report.TeamsUpdated,
		"teams_deleted", report.TeamsDeleted,
		"links_added", report.LinksAdded,
		"links_removed", report.LinksRemoved,
		"people_pruned", report.PeoplePruned,
	)
	return report, nil
}

func (r *Reconciler) applyTeams(ctx context.Context, roster models.Roster, report *ApplyReport) error {
	persisted, err := r.store.ListTeams(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]models.Team, len(persisted))
	for _, t := range persisted {
		byName[t.Name] = t
	}

	var create, update []models.Team
	for _, name := range sortedTeamNames(roster) {
		want := roster.Teams[name].Team()
		have, ok := byName[name]
		if !ok {
			create = append(create, want)
			continue
		}
		if !have.SameSettings(want) {
			want.ID = have.ID
			update = append(update, want)
		}
	}
	var remove []int64
	for _, t := range persisted {
		if _, ok := roster.Teams[t.Name]; !ok {
			remove = append(remove, t.ID)
		}
	}

	if err := r.store.DeleteTeams(ctx, remove); err != nil {
		return err
	}
	if _, err := r.store.CreateTeams(ctx, create); err != nil {
		return err
	}
	if err := r.store.UpdateTeams(ctx, update); err != nil {
		return err
	}
	report.TeamsCreated, report.TeamsUpdated, report.TeamsDeleted = len(create), len(update), len(remove)
	return nil
}

func (r *Reconciler) applyLinks(ctx context.Context, roster models.Roster, report *ApplyReport) error {
	teams, err := r.store.ListTeams(ctx)
	if err != nil {
		return err
	}
	people, err := r.store.ListPeople(ctx)
	if err != nil {
		return err
	}
	current, err := r.store.ListMemberships(ctx)
	if err != nil {
		return err
	}

	teamIDs := make(map[string]int64, len(teams))
	for _, t := range teams {
		teamIDs[t.Name] = t.ID
	}
	personIDs := make(map[string]int64, len(people))
	for _, p := range people {
		personIDs[p.OriginalName] = p.ID
	}

	desired := make(map[models.Link]struct{})
	for _, name := range sortedTeamNames(roster) {
		teamID, ok := teamIDs[name]
		if !ok {
			r.logger.WarnContext(ctx, "team missing after sync, skipping links", "team", name)
			continue
		}
		for _, member := range roster.Teams[name].Members {
			if personID, ok := personIDs[member]; ok {
				desired[models.Link{TeamID: teamID, PersonID: personID}] = struct{}{}
			}
		}
	}

	have := make(map[models.Link]struct{}, len(current))
	var remove []models.Link
	for _, m := range current {
		l := m.Link()
		have[l] = struct{}{}
		if _, ok := desired[l]; !ok {
			remove = append(remove, l)
		}
	}
	var add []models.Link
	for l := range desired {
		if _, ok := have[l]; !ok {
			add = append(add, l)
		}
	}
	sortLinks(add)

	if err := r.store.RemoveMemberships(ctx, remove); err != nil {
		return err
	}
	if err := r.store.AddMemberships(ctx, add); err != nil {
		return err
	}
	report.LinksAdded, report.LinksRemoved = len(add), len(remove)
	return nil
}

func (r *Reconciler) prune(ctx context.Context, roster models.Roster, report *ApplyReport) error {
	people, err := r.store.ListPeople(ctx)
	if err != nil {
		return err
	}
	listed := roster.NameSet()
	var stale []int64
	for _, p := range people {
		if _, ok := listed[p.OriginalName]; !ok {
			stale = append(stale, p.ID)
			r.logger.InfoContext(ctx, "pruning person no team lists", "name", p.OriginalName)
		}
	}
	if err := r.store.DeletePeople(ctx, stale); err != nil {
		return err
	}
	report.PeoplePruned = len(stale)
	return nil
}

func sortedTeamNames(roster models.Roster) []string {
	names := make([]string, 0, len(roster.Teams))
	for name := range roster.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortLinks(links []models.Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].TeamID != links[j].TeamID {
			return links[i].TeamID < links[j].TeamID
		}
		return links[i].PersonID < links[j].PersonID
	})
}
