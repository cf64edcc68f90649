package storage

import (
	"context"
	"database/sql"

	"fantamorto/internal/notification/models"
)

const jobColumns = `id, channel, address, subject, body, team_id, person_id, team_name, person_name, attempts, last_error, created_at`

func scanJob(row interface{ Scan(...any) error }) (models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Channel, &j.Address, &j.Subject, &j.Body, &j.TeamID, &j.PersonID,
		&j.TeamName, &j.PersonName, &j.Attempts, &j.LastError, &j.CreatedAt)
	return j, err
}

// EnqueueJobs appends jobs to the outbox and returns them with ids.
func (s *Store) EnqueueJobs(ctx context.Context, jobs []models.Job) ([]models.Job, error) {
	out := make([]models.Job, 0, len(jobs))
	now := s.now().UTC()
	for _, j := range jobs {
		id, err := s.insert(ctx, `
			INSERT INTO notification_outbox
				(channel, address, subject, body, team_id, person_id, team_name, person_name, attempts, last_error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, '', ?)
			RETURNING id`,
			string(j.Channel), j.Address, j.Subject, j.Body, j.TeamID, j.PersonID, j.TeamName, j.PersonName, now)
		if err != nil {
			return nil, s.wrap("enqueue job", err)
		}
		j.ID, j.Attempts, j.LastError, j.CreatedAt = id, 0, "", now
		out = append(out, j)
	}
	return out, nil
}

// ListOutbox returns every outstanding job, oldest first.
func (s *Store) ListOutbox(ctx context.Context) ([]models.Job, error) {
	rows, err := s.query(ctx, `SELECT `+jobColumns+` FROM notification_outbox ORDER BY id`)
	if err != nil {
		return nil, s.wrap("list outbox", err)
	}
	jobs, err := scanAll(rows, func(r *sql.Rows) (models.Job, error) { return scanJob(r) })
	return jobs, s.wrap("list outbox", err)
}

// RecordAttempt stores the new attempt count and last error of a job that
// stays in the outbox.
func (s *Store) RecordAttempt(ctx context.Context, jobID int64, attempts int, lastErr string) error {
	res, err := s.exec(ctx, `UPDATE notification_outbox SET attempts = ?, last_error = ? WHERE id = ?`,
		attempts, lastErr, jobID)
	if err != nil {
		return s.wrap("record attempt", err)
	}
	return s.wrap("record attempt", requireAffected(res))
}

// CompleteJob appends the terminal history entry and removes the job from
// the outbox. Callers wrap it in RunInTx with the rest of the batch.
func (s *Store) CompleteJob(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error) {
	id, err := s.insert(ctx, `
		INSERT INTO notification_history
			(job_id, channel, address, subject, body, team_id, person_id, team_name, person_name, attempts, outcome, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		entry.JobID, string(entry.Channel), entry.Address, entry.Subject, entry.Body, entry.TeamID, entry.PersonID,
		entry.TeamName, entry.PersonName, entry.Attempts, string(entry.Outcome), entry.Error, entry.RecordedAt.UTC())
	if err != nil {
		return models.HistoryEntry{}, s.wrap("append history", err)
	}
	res, err := s.exec(ctx, `DELETE FROM notification_outbox WHERE id = ?`, entry.JobID)
	if err != nil {
		return models.HistoryEntry{}, s.wrap("delete job", err)
	}
	if err := requireAffected(res); err != nil {
		return models.HistoryEntry{}, s.wrap("delete job", err)
	}
	entry.ID = id
	return entry, nil
}
