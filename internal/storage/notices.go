package storage

import (
	"context"
	"database/sql"
	"sort"

	notifmodels "fantamorto/internal/notification/models"
	"fantamorto/internal/roster/models"
)

// ListPendingDeaths returns deceased people whose global announcement has
// not been queued yet, each with the names of the teams listing them.
func (s *Store) ListPendingDeaths(ctx context.Context) ([]notifmodels.Death, error) {
	rows, err := s.query(ctx, `
		SELECT `+personColumns+` FROM people
		WHERE death_date <> '' AND global_notified = ?
		ORDER BY original_name`, false)
	if err != nil {
		return nil, s.wrap("list pending deaths", err)
	}
	people, err := scanAll(rows, func(r *sql.Rows) (models.Person, error) { return scanPerson(r) })
	if err != nil {
		return nil, s.wrap("list pending deaths", err)
	}

	deaths := make([]notifmodels.Death, 0, len(people))
	for _, p := range people {
		teams, err := s.teamNamesFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		deaths = append(deaths, notifmodels.Death{Person: p, Teams: teams})
	}
	return deaths, nil
}

// ListPendingTeamNotices returns every membership of a deceased person whose
// team has not been notified yet.
func (s *Store) ListPendingTeamNotices(ctx context.Context) ([]notifmodels.TeamNotice, error) {
	rows, err := s.query(ctx, `
		SELECT p.id, p.original_name, p.resolved_name, p.birth_date, p.death_date, p.reference_url, p.stable_id, p.global_notified,
		       t.id, t.name, t.owner_name, t.notification_email, t.notification_chat_id, t.notify_on_any_death
		FROM memberships m
		JOIN people p ON p.id = m.person_id
		JOIN teams t ON t.id = m.team_id
		WHERE p.death_date <> '' AND m.team_notified = ?
		ORDER BY p.original_name, t.name`, false)
	if err != nil {
		return nil, s.wrap("list pending team notices", err)
	}
	notices, err := scanAll(rows, func(r *sql.Rows) (notifmodels.TeamNotice, error) {
		var n notifmodels.TeamNotice
		p, t := &n.Person, &n.Team
		err := r.Scan(&p.ID, &p.OriginalName, &p.ResolvedName, &p.BirthDate, &p.DeathDate, &p.ReferenceURL, &p.StableID, &p.GlobalNotified,
			&t.ID, &t.Name, &t.OwnerName, &t.NotificationEmail, &t.NotificationChatID, &t.NotifyOnAnyDeath)
		return n, err
	})
	if err != nil {
		return nil, s.wrap("list pending team notices", err)
	}

	byPerson := make(map[int64][]string)
	for i := range notices {
		pid := notices[i].Person.ID
		if _, ok := byPerson[pid]; !ok {
			teams, err := s.teamNamesFor(ctx, pid)
			if err != nil {
				return nil, err
			}
			byPerson[pid] = teams
		}
		notices[i].Teams = byPerson[pid]
	}
	return notices, nil
}

func (s *Store) teamNamesFor(ctx context.Context, personID int64) ([]string, error) {
	rows, err := s.query(ctx, `
		SELECT t.name FROM memberships m JOIN teams t ON t.id = m.team_id
		WHERE m.person_id = ?`, personID)
	if err != nil {
		return nil, s.wrap("list team names", err)
	}
	names, err := scanAll(rows, func(r *sql.Rows) (string, error) {
		var n string
		err := r.Scan(&n)
		return n, err
	})
	if err != nil {
		return nil, s.wrap("list team names", err)
	}
	sort.Strings(names)
	return names, nil
}
