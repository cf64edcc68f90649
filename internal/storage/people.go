package storage

import (
	"context"
	"database/sql"
	"errors"

	"fantamorto/internal/roster/models"
)

const personColumns = `id, original_name, resolved_name, birth_date, death_date, reference_url, stable_id, global_notified`

func scanPerson(row interface{ Scan(...any) error }) (models.Person, error) {
	var p models.Person
	err := row.Scan(&p.ID, &p.OriginalName, &p.ResolvedName, &p.BirthDate, &p.DeathDate,
		&p.ReferenceURL, &p.StableID, &p.GlobalNotified)
	return p, err
}

// ListPeople returns every tracked person ordered by original name.
func (s *Store) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := s.query(ctx, `SELECT `+personColumns+` FROM people ORDER BY original_name`)
	if err != nil {
		return nil, s.wrap("list people", err)
	}
	people, err := scanAll(rows, func(r *sql.Rows) (models.Person, error) { return scanPerson(r) })
	return people, s.wrap("list people", err)
}

// FindPersonByName looks a person up by the name used in the team files.
func (s *Store) FindPersonByName(ctx context.Context, name string) (models.Person, error) {
	p, err := scanPerson(s.queryRow(ctx, `SELECT `+personColumns+` FROM people WHERE original_name = ?`, name))
	if err != nil {
		return models.Person{}, s.wrap("find person", err)
	}
	return p, nil
}

// UpsertPerson inserts or refreshes a person keyed by original name. The
// global notification flag is never touched here. The returned bool reports
// whether a row was written; an unchanged person is left alone.
func (s *Store) UpsertPerson(ctx context.Context, p models.Person) (models.Person, bool, error) {
	existing, err := s.FindPersonByName(ctx, p.OriginalName)
	switch {
	case err == nil:
		if existing.SameFacts(p) {
			return existing, false, nil
		}
		_, err = s.exec(ctx, `
			UPDATE people
			SET resolved_name = ?, birth_date = ?, death_date = ?, reference_url = ?, stable_id = ?, updated_at = ?
			WHERE id = ?`,
			p.ResolvedName, p.BirthDate, p.DeathDate, p.ReferenceURL, p.StableID, s.now().UTC(), existing.ID)
		if err != nil {
			return models.Person{}, false, s.wrap("update person", err)
		}
		p.ID = existing.ID
		p.GlobalNotified = existing.GlobalNotified
		return p, true, nil
	case errors.Is(err, ErrNotFound):
	default:
		return models.Person{}, false, err
	}

	id, err := s.insert(ctx, `
		INSERT INTO people (original_name, resolved_name, birth_date, death_date, reference_url, stable_id, global_notified, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		p.OriginalName, p.ResolvedName, p.BirthDate, p.DeathDate, p.ReferenceURL, p.StableID, false, s.now().UTC())
	if err != nil {
		return models.Person{}, false, s.wrap("insert person", err)
	}
	p.ID = id
	p.GlobalNotified = false
	return p, true, nil
}

// DeletePeople removes people by id along with every identity cache entry
// keyed by their name or their stable identifier. Memberships cascade and
// outbox rows keep their snapshot with the person reference cleared.
func (s *Store) DeletePeople(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.query(ctx, `SELECT `+personColumns+` FROM people WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return s.wrap("load people to delete", err)
	}
	people, err := scanAll(rows, func(r *sql.Rows) (models.Person, error) { return scanPerson(r) })
	if err != nil {
		return s.wrap("load people to delete", err)
	}

	for _, p := range people {
		if _, err := s.exec(ctx, `DELETE FROM identity_cache WHERE original_name = ?`, p.OriginalName); err != nil {
			return s.wrap("delete identity by name", err)
		}
		if p.Found() {
			if _, err := s.exec(ctx, `DELETE FROM identity_cache WHERE stable_id = ?`, p.StableID); err != nil {
				return s.wrap("delete identity by stable id", err)
			}
		}
	}
	if _, err := s.exec(ctx, `DELETE FROM people WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...); err != nil {
		return s.wrap("delete people", err)
	}
	return nil
}

// MarkGlobalNotified records that the global announcement for a person has
// been queued.
func (s *Store) MarkGlobalNotified(ctx context.Context, personID int64) error {
	res, err := s.exec(ctx, `UPDATE people SET global_notified = ? WHERE id = ?`, true, personID)
	if err != nil {
		return s.wrap("mark global notified", err)
	}
	return s.wrap("mark global notified", requireAffected(res))
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
