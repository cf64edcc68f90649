package storage

import (
	"context"
	"database/sql"

	"fantamorto/internal/roster/models"
)

// ListMemberships returns every team-person link with its notification flag.
func (s *Store) ListMemberships(ctx context.Context) ([]models.Membership, error) {
	rows, err := s.query(ctx, `SELECT team_id, person_id, team_notified FROM memberships ORDER BY team_id, person_id`)
	if err != nil {
		return nil, s.wrap("list memberships", err)
	}
	ms, err := scanAll(rows, func(r *sql.Rows) (models.Membership, error) {
		var m models.Membership
		err := r.Scan(&m.TeamID, &m.PersonID, &m.TeamNotified)
		return m, err
	})
	return ms, s.wrap("list memberships", err)
}

// AddMemberships links people to teams with the notification flag cleared.
func (s *Store) AddMemberships(ctx context.Context, links []models.Link) error {
	for _, l := range links {
		if _, err := s.exec(ctx, `INSERT INTO memberships (team_id, person_id, team_notified) VALUES (?, ?, ?)`,
			l.TeamID, l.PersonID, false); err != nil {
			return s.wrap("add membership", err)
		}
	}
	return nil
}

// RemoveMemberships deletes the given links.
func (s *Store) RemoveMemberships(ctx context.Context, links []models.Link) error {
	for _, l := range links {
		if _, err := s.exec(ctx, `DELETE FROM memberships WHERE team_id = ? AND person_id = ?`,
			l.TeamID, l.PersonID); err != nil {
			return s.wrap("remove membership", err)
		}
	}
	return nil
}

// MarkTeamNotified records that a team has been told about a member's death.
func (s *Store) MarkTeamNotified(ctx context.Context, link models.Link) error {
	res, err := s.exec(ctx, `UPDATE memberships SET team_notified = ? WHERE team_id = ? AND person_id = ?`,
		true, link.TeamID, link.PersonID)
	if err != nil {
		return s.wrap("mark team notified", err)
	}
	return s.wrap("mark team notified", requireAffected(res))
}
