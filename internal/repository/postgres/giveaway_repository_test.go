package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

var columns = []string{"id", "title", "end_time", "state", "participants", "total_participants", "total_entries",
	"winner_id", "version", "created_at", "updated_at", "completed_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM giveaways WHERE id=$1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := NewGiveawayRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, dg.ErrNotFound)
}

func TestGetByIDScansRow(t *testing.T) {
	db, mock := newMock(t)
	end := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	done := end.Add(time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("FROM giveaways WHERE id=$1")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("g1", "Weekly", end, "complete", "{u1,u2}", 2, 2, "u2", int64(4), end, done, done))

	g, err := NewGiveawayRepository(db).GetByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, dg.StateComplete, g.State)
	assert.Equal(t, []string{"u1", "u2"}, g.Participants)
	require.NotNil(t, g.Winner)
	assert.Equal(t, "u2", *g.Winner)
	assert.Equal(t, int64(4), g.Version)
	require.NotNil(t, g.CompletedAt)
	assert.NoError(t, g.Validate())
}

func TestListDueFiltersActiveAndEnded(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE state='active' AND end_time <= $1 ORDER BY end_time ASC")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("g1", "A", now.Add(-time.Hour), "active", "{}", 0, 0, nil, int64(1), now, now, nil))

	due, err := NewGiveawayRepository(db).ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Empty(t, due[0].Participants)
	assert.Nil(t, due[0].Winner)
}

func saveFixture() *dg.Giveaway {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	w := "u1"
	return &dg.Giveaway{
		ID: "g1", Title: "A", EndTime: now, State: dg.StateComplete,
		Participants: []string{"u1"}, TotalParticipants: 1, TotalEntries: 1,
		Winner: &w, Version: 3, UpdatedAt: now, CompletedAt: &now,
	}
}

func TestSaveBumpsVersion(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE giveaways SET")).
		WithArgs("g1", "A", sqlmock.AnyArg(), "complete", sqlmock.AnyArg(), int64(1), int64(1),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	g := saveFixture()
	require.NoError(t, NewGiveawayRepository(db).Save(context.Background(), g, 3))
	assert.Equal(t, int64(4), g.Version)
}

func TestSaveVersionConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id=$1 AND version=$11")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	g := saveFixture()
	err := NewGiveawayRepository(db).Save(context.Background(), g, 3)
	assert.ErrorIs(t, err, dg.ErrVersionConflict)
	assert.Equal(t, int64(3), g.Version)
}

func TestSaveMissingRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE giveaways SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := NewGiveawayRepository(db).Save(context.Background(), saveFixture(), 3)
	assert.ErrorIs(t, err, dg.ErrNotFound)
}

func TestUserGetByID(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "external_handle", "role", "created_at"}).
			AddRow("u1", "kickname", "RainName", "user", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "external_handle", "role", "created_at"}))

	repo := NewUserRepository(db)
	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "RainName", u.ExternalHandle)

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
