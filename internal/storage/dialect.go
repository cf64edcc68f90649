package storage

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect hides the differences between the SQL engines the store runs on.
type Dialect interface {
	Name() string
	// DriverName is the database/sql driver to open.
	DriverName() string
	// Rebind rewrites ? placeholders into the engine's native form.
	Rebind(query string) string
	// Conflict maps a uniqueness violation onto a ConflictError.
	Conflict(err error) (*ConflictError, bool)
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "sqlite":
		return SQLite{}, nil
	case "postgres":
		return Postgres{}, nil
	}
	return nil, errors.New("unknown database driver " + strconv.Quote(name))
}

// SQLite targets modernc.org/sqlite.
type SQLite struct{}

func (SQLite) Name() string               { return "sqlite" }
func (SQLite) DriverName() string         { return "sqlite" }
func (SQLite) Rebind(query string) string { return query }

var sqliteUnique = regexp.MustCompile(`UNIQUE constraint failed: (\w+)\.(\w+)`)

func (SQLite) Conflict(err error) (*ConflictError, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil, false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return nil, false
	}
	ce := &ConflictError{Err: err}
	if m := sqliteUnique.FindStringSubmatch(se.Error()); m != nil {
		ce.Table, ce.Field = m[1], m[2]
	}
	return ce, true
}

// Postgres targets github.com/lib/pq.
type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "postgres" }

func (Postgres) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

const pgUniqueViolation = "23505"

var pgKeyDetail = regexp.MustCompile(`Key \(([^)]+)\)`)

func (Postgres) Conflict(err error) (*ConflictError, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return nil, false
	}
	ce := &ConflictError{Table: pqErr.Table, Err: err}
	if m := pgKeyDetail.FindStringSubmatch(pqErr.Detail); m != nil {
		ce.Field = m[1]
	}
	return ce, true
}
