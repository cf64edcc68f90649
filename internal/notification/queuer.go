package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fantamorto/internal/notification/models"
	"fantamorto/internal/platform/metrics"
	rostermodels "fantamorto/internal/roster/models"
)

const (
	passGlobal   = "global"
	passTeam     = "team"
	passNotFound = "not_found"
)

// QueueReport counts what a Queue call enqueued.
type QueueReport struct {
	GlobalPeople int
	TeamNotices  int
	Jobs         int
}

// Queuer turns recorded deaths into outbox jobs. The notified flags gate
// re-queueing, so running it again without new deaths enqueues nothing.
type Queuer struct {
	store    QueueStore
	composer *Composer
	admin    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// QueuerOption configures a Queuer.
type QueuerOption func(*Queuer)

func WithQueuerLogger(logger *slog.Logger) QueuerOption {
	return func(q *Queuer) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func WithQueuerMetrics(m *metrics.Metrics) QueuerOption {
	return func(q *Queuer) { q.metrics = m }
}

// WithAdminAddress sets the message-channel recipient of global notices.
// Without it admin jobs are skipped.
func WithAdminAddress(address string) QueuerOption {
	return func(q *Queuer) { q.admin = address }
}

// NewQueuer constructs a Queuer.
func NewQueuer(store QueueStore, composer *Composer, opts ...QueuerOption) (*Queuer, error) {
	if store == nil {
		return nil, errors.New("queue store is required")
	}
	if composer == nil {
		return nil, errors.New("composer is required")
	}
	q := &Queuer{
		store:    store,
		composer: composer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Queue runs the global pass then the team pass. Each person (global) and
// each membership (team) commits its jobs and its flag in one transaction.
func (q *Queuer) Queue(ctx context.Context) (QueueReport, error) {
	var report QueueReport
	if err := q.queueGlobal(ctx, &report); err != nil {
		return report, err
	}
	if err := q.queueTeams(ctx, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (q *Queuer) queueGlobal(ctx context.Context, report *QueueReport) error {
	deaths, err := q.store.ListPendingDeaths(ctx)
	if err != nil {
		return fmt.Errorf("list pending deaths: %w", err)
	}
	if len(deaths) == 0 {
		return nil
	}
	subscribers, err := q.store.ListAnyDeathTeams(ctx)
	if err != nil {
		return fmt.Errorf("list any-death teams: %w", err)
	}

	for _, d := range deaths {
		jobs := q.globalJobs(d, subscribers)
		err := q.store.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := q.store.EnqueueJobs(ctx, jobs); err != nil {
				return err
			}
			return q.store.MarkGlobalNotified(ctx, d.Person.ID)
		})
		if err != nil {
			return fmt.Errorf("queue global notice for %s: %w", d.Person.OriginalName, err)
		}
		report.GlobalPeople++
		report.Jobs += len(jobs)
		q.record(passGlobal, jobs)
		q.logger.InfoContext(ctx, "global notice queued",
			"name", d.Person.OriginalName,
			"death_date", d.Person.DeathDate,
			"jobs", len(jobs),
		)
	}
	return nil
}

// globalJobs builds the admin job plus one set per any-death subscriber that
// does not list the person; those teams get the team-specific notice instead.
func (q *Queuer) globalJobs(d models.Death, subscribers []rostermodels.Team) []models.Job {
	p := d.Person
	var jobs []models.Job
	if q.admin != "" {
		jobs = append(jobs, models.Job{
			Channel:    models.ChannelMessage,
			Address:    q.admin,
			Body:       q.composer.AdminDeath(p, d.Teams),
			PersonID:   &p.ID,
			PersonName: p.OriginalName,
		})
	}
	listed := make(map[string]bool, len(d.Teams))
	for _, name := range d.Teams {
		listed[name] = true
	}
	for _, t := range subscribers {
		if listed[t.Name] {
			continue
		}
		jobs = append(jobs, q.teamJobs(t, p, d.Teams)...)
	}
	return jobs
}

func (q *Queuer) queueTeams(ctx context.Context, report *QueueReport) error {
	notices, err := q.store.ListPendingTeamNotices(ctx)
	if err != nil {
		return fmt.Errorf("list pending team notices: %w", err)
	}
	for _, n := range notices {
		jobs := q.teamJobs(n.Team, n.Person, n.Teams)
		link := rostermodels.Link{TeamID: n.Team.ID, PersonID: n.Person.ID}
		err := q.store.RunInTx(ctx, func(ctx context.Context) error {
			if len(jobs) > 0 {
				if _, err := q.store.EnqueueJobs(ctx, jobs); err != nil {
					return err
				}
			}
			return q.store.MarkTeamNotified(ctx, link)
		})
		if err != nil {
			return fmt.Errorf("queue team notice %s/%s: %w", n.Team.Name, n.Person.OriginalName, err)
		}
		report.TeamNotices++
		report.Jobs += len(jobs)
		q.record(passTeam, jobs)
		if len(jobs) == 0 {
			q.logger.DebugContext(ctx, "team has no address, notice marked",
				"team", n.Team.Name,
				"name", n.Person.OriginalName,
			)
			continue
		}
		q.logger.InfoContext(ctx, "team notice queued",
			"team", n.Team.Name,
			"name", n.Person.OriginalName,
			"jobs", len(jobs),
		)
	}
	return nil
}

func (q *Queuer) teamJobs(t rostermodels.Team, p rostermodels.Person, teams []string) []models.Job {
	msg := q.composer.TeamDeath(t.Name, p, teams)
	var jobs []models.Job
	if t.NotificationEmail != "" {
		jobs = append(jobs, models.Job{
			Channel:    models.ChannelEmail,
			Address:    t.NotificationEmail,
			Subject:    msg.Subject,
			Body:       msg.EmailBody,
			TeamID:     &t.ID,
			PersonID:   &p.ID,
			TeamName:   t.Name,
			PersonName: p.OriginalName,
		})
	}
	if t.NotificationChatID != "" {
		jobs = append(jobs, models.Job{
			Channel:    models.ChannelMessage,
			Address:    t.NotificationChatID,
			Body:       msg.Text,
			TeamID:     &t.ID,
			PersonID:   &p.ID,
			TeamName:   t.Name,
			PersonName: p.OriginalName,
		})
	}
	return jobs
}

// QueueNotFound enqueues one admin notice per name the knowledge base has
// no entry for. Without an admin address it is a no-op.
func (q *Queuer) QueueNotFound(ctx context.Context, names []string) (int, error) {
	if q.admin == "" || len(names) == 0 {
		return 0, nil
	}
	jobs := make([]models.Job, 0, len(names))
	for _, name := range names {
		jobs = append(jobs, models.Job{
			Channel:    models.ChannelMessage,
			Address:    q.admin,
			Body:       q.composer.AdminNotFound(name),
			PersonName: name,
		})
	}
	err := q.store.RunInTx(ctx, func(ctx context.Context) error {
		_, err := q.store.EnqueueJobs(ctx, jobs)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("queue not-found notices: %w", err)
	}
	q.record(passNotFound, jobs)
	q.logger.InfoContext(ctx, "not-found notices queued", "count", len(jobs))
	return len(jobs), nil
}

func (q *Queuer) record(pass string, jobs []models.Job) {
	counts := make(map[models.Channel]int)
	for _, j := range jobs {
		counts[j.Channel]++
	}
	for ch, n := range counts {
		q.metrics.AddJobsQueued(string(ch), pass, n)
	}
}
