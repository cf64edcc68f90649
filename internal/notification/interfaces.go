package notification

import (
	"context"

	"fantamorto/internal/notification/models"
	rostermodels "fantamorto/internal/roster/models"
)

// QueueStore is the persistence the queuer reads pending notices from and
// writes jobs to.
type QueueStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListPendingDeaths(ctx context.Context) ([]models.Death, error)
	ListPendingTeamNotices(ctx context.Context) ([]models.TeamNotice, error)
	ListAnyDeathTeams(ctx context.Context) ([]rostermodels.Team, error)

	EnqueueJobs(ctx context.Context, jobs []models.Job) ([]models.Job, error)
	MarkGlobalNotified(ctx context.Context, personID int64) error
	MarkTeamNotified(ctx context.Context, link rostermodels.Link) error
}

// Messenger sends instant messages.
type Messenger interface {
	Send(ctx context.Context, address, text string) error
}

// Mailer sends emails.
type Mailer interface {
	Send(ctx context.Context, address, subject, body string) error
}

// DeliveryStore is the outbox and history persistence.
type DeliveryStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListOutbox(ctx context.Context) ([]models.Job, error)
	RecordAttempt(ctx context.Context, jobID int64, attempts int, lastErr string) error
	CompleteJob(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error)
}

// Publisher receives terminal outcomes after they are committed.
type Publisher interface {
	Publish(ctx context.Context, entries []models.HistoryEntry) error
}
