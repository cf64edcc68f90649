package storage

import (
	"context"
	"database/sql"

	"fantamorto/internal/notification/models"
)

// ListHistory returns the most recent terminal outcomes, newest first. A
// non-positive limit returns everything.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	q := `
		SELECT id, job_id, channel, address, subject, body, team_id, person_id, team_name, person_name,
		       attempts, outcome, error, recorded_at
		FROM notification_history
		ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, s.wrap("list history", err)
	}
	entries, err := scanAll(rows, func(r *sql.Rows) (models.HistoryEntry, error) {
		var h models.HistoryEntry
		err := r.Scan(&h.ID, &h.JobID, &h.Channel, &h.Address, &h.Subject, &h.Body, &h.TeamID, &h.PersonID,
			&h.TeamName, &h.PersonName, &h.Attempts, &h.Outcome, &h.Error, &h.RecordedAt)
		return h, err
	})
	return entries, s.wrap("list history", err)
}
