package storage

import (
	"errors"
	"fmt"

	"fantamorto/pkg/platform/sentinel"
)

// ErrNotFound keeps store misses consistent across dialects.
var ErrNotFound = sentinel.ErrNotFound

// ConflictError reports a write rejected by a uniqueness constraint on a
// specific column. It matches sentinel.ErrConflict with errors.Is.
type ConflictError struct {
	Table string
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint on %s.%s: %v", e.Table, e.Field, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, sentinel.ErrConflict) succeed.
func (e *ConflictError) Is(target error) bool { return target == sentinel.ErrConflict }

// IsConflictOn reports whether err is a uniqueness conflict on field.
func IsConflictOn(err error, field string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Field == field
}
