package storage

import (
	"context"
	"database/sql"

	"fantamorto/internal/roster/models"
)

const teamColumns = `id, name, owner_name, notification_email, notification_chat_id, notify_on_any_death`

func scanTeam(row interface{ Scan(...any) error }) (models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.OwnerName, &t.NotificationEmail, &t.NotificationChatID, &t.NotifyOnAnyDeath)
	return t, err
}

// ListTeams returns every persisted team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, s.wrap("list teams", err)
	}
	teams, err := scanAll(rows, func(r *sql.Rows) (models.Team, error) { return scanTeam(r) })
	return teams, s.wrap("list teams", err)
}

// CreateTeams inserts teams and returns them with their ids.
func (s *Store) CreateTeams(ctx context.Context, teams []models.Team) ([]models.Team, error) {
	out := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		id, err := s.insert(ctx, `
			INSERT INTO teams (name, owner_name, notification_email, notification_chat_id, notify_on_any_death)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			t.Name, t.OwnerName, t.NotificationEmail, t.NotificationChatID, t.NotifyOnAnyDeath)
		if err != nil {
			return nil, s.wrap("create team "+t.Name, err)
		}
		t.ID = id
		out = append(out, t)
	}
	return out, nil
}

// UpdateTeams rewrites the mutable fields of teams matched by id.
func (s *Store) UpdateTeams(ctx context.Context, teams []models.Team) error {
	for _, t := range teams {
		res, err := s.exec(ctx, `
			UPDATE teams
			SET owner_name = ?, notification_email = ?, notification_chat_id = ?, notify_on_any_death = ?
			WHERE id = ?`,
			t.OwnerName, t.NotificationEmail, t.NotificationChatID, t.NotifyOnAnyDeath, t.ID)
		if err != nil {
			return s.wrap("update team "+t.Name, err)
		}
		if err := requireAffected(res); err != nil {
			return s.wrap("update team "+t.Name, err)
		}
	}
	return nil
}

// DeleteTeams removes teams by id; their memberships cascade.
func (s *Store) DeleteTeams(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.exec(ctx, `DELETE FROM teams WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	return s.wrap("delete teams", err)
}

// ListAnyDeathTeams returns teams subscribed to every death.
func (s *Store) ListAnyDeathTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.query(ctx, `SELECT `+teamColumns+` FROM teams WHERE notify_on_any_death = ? ORDER BY name`, true)
	if err != nil {
		return nil, s.wrap("list any-death teams", err)
	}
	teams, err := scanAll(rows, func(r *sql.Rows) (models.Team, error) { return scanTeam(r) })
	return teams, s.wrap("list any-death teams", err)
}
