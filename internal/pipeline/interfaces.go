package pipeline

import (
	"context"

	"fantamorto/internal/notification"
	"fantamorto/internal/roster"
	"fantamorto/internal/roster/models"
)

// RosterSource reads the current team files.
type RosterSource interface {
	Load(ctx context.Context) (models.Roster, error)
}

// Reconciler refreshes people and mirrors teams and links.
type Reconciler interface {
	Plan(ctx context.Context, r models.Roster) (roster.Plan, error)
	Refresh(ctx context.Context, plan roster.Plan) (roster.RefreshReport, error)
	Apply(ctx context.Context, r models.Roster) (roster.ApplyReport, error)
}

// Queuer turns deaths into outbox jobs.
type Queuer interface {
	Queue(ctx context.Context) (notification.QueueReport, error)
	QueueNotFound(ctx context.Context, names []string) (int, error)
}

// Drainer delivers outbox jobs.
type Drainer interface {
	Drain(ctx context.Context) (notification.DrainReport, error)
}

// Lock is a held run lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker keeps two runs from overlapping.
type Locker interface {
	Acquire(ctx context.Context) (Lock, error)
}
