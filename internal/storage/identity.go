package storage

import "context"

// FindIdentity returns the cached stable identifier for an exact name.
func (s *Store) FindIdentity(ctx context.Context, name string) (string, error) {
	var stableID string
	err := s.queryRow(ctx, `SELECT stable_id FROM identity_cache WHERE original_name = ?`, name).Scan(&stableID)
	if err != nil {
		return "", s.wrap("find identity", err)
	}
	return stableID, nil
}

// SaveIdentity caches name -> stableID. A stable identifier already owned by
// another name surfaces as a *ConflictError on stable_id and nothing is
// written. Re-saving the same pair is a no-op.
func (s *Store) SaveIdentity(ctx context.Context, name, stableID string) error {
	_, err := s.exec(ctx, `
		INSERT INTO identity_cache (original_name, stable_id, resolved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (original_name) DO UPDATE SET stable_id = excluded.stable_id, resolved_at = excluded.resolved_at`,
		name, stableID, s.now().UTC())
	return s.wrap("save identity", err)
}

// IdentityOwner returns the name that owns stableID in the cache.
func (s *Store) IdentityOwner(ctx context.Context, stableID string) (string, error) {
	var name string
	err := s.queryRow(ctx, `SELECT original_name FROM identity_cache WHERE stable_id = ?`, stableID).Scan(&name)
	if err != nil {
		return "", s.wrap("find identity owner", err)
	}
	return name, nil
}
