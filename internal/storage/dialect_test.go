package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantamorto/pkg/platform/sentinel"
)

func TestPostgresRebind(t *testing.T) {
	got := Postgres{}.Rebind(`SELECT a FROM t WHERE x = ? AND y IN (?, ?)`)
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)`, got)
	assert.Equal(t, "SELECT 1", SQLite{}.Rebind("SELECT 1"))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:data.db?"+sqlitePragmas, sqliteDSN("data.db"))
	assert.Equal(t, "file:data.db?mode=rwc&"+sqlitePragmas, sqliteDSN("file:data.db?mode=rwc"))
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(1)", sqliteDSN("file:x.db?_pragma=foreign_keys(1)"))
}

func TestPostgresConflictMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres{}, WithClock(func() time.Time { return time.Unix(0, 0) }))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identity_cache`)).
		WithArgs("Francesco Totti", "Q1", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{
			Code:   "23505",
			Table:  "identity_cache",
			Detail: "Key (stable_id)=(Q1) already exists.",
		})

	err = s.SaveIdentity(context.Background(), "Francesco Totti", "Q1")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "identity_cache", ce.Table)
	assert.Equal(t, "stable_id", ce.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOtherErrorsAreNotConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres{})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identity_cache`)).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err = s.SaveIdentity(context.Background(), "Mina", "Q2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresQueriesAreRebound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, Postgres{})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stable_id FROM identity_cache WHERE original_name = $1`)).
		WithArgs("Mina").
		WillReturnRows(sqlmock.NewRows([]string{"stable_id"}).AddRow("Q2"))

	id, err := s.FindIdentity(context.Background(), "Mina")
	require.NoError(t, err)
	assert.Equal(t, "Q2", id)
	require.NoError(t, mock.ExpectationsWereMet())
}
