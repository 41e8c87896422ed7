package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocity/waste-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func profileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "email", "role", "credits", "created_at", "updated_at"})
}

func TestProfileRepositoryGetOrCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, email, role, credits, created_at, updated_at FROM profiles WHERE user_id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(profileRows().AddRow("p1", "u1", "Asha Verma", "asha@example.com", "user", 100, time.Now(), time.Now()))

	profile, err := repo.GetOrCreate(context.Background(), &models.Profile{
		UserID:  "u1",
		Name:    "Asha Verma",
		Email:   "asha@example.com",
		Role:    models.RoleUser,
		Credits: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", profile.ID)
	assert.Equal(t, 100, profile.Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryAddCredits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET credits = credits + $2, updated_at = $3 WHERE user_id = $1 RETURNING id, user_id, name, email, role, credits, created_at, updated_at")).
		WithArgs("u1", 120, sqlmock.AnyArg()).
		WillReturnRows(profileRows().AddRow("p1", "u1", "Asha Verma", "asha@example.com", "user", 120, time.Now(), time.Now()))

	profile, err := repo.AddCredits(context.Background(), "u1", 120)
	require.NoError(t, err)
	assert.Equal(t, 120, profile.Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryAddCreditsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("UPDATE profiles SET credits").
		WithArgs("ghost", 10, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AddCredits(context.Background(), "ghost", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryTopByCredits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, email, role, credits, created_at, updated_at FROM profiles WHERE role = 'user' ORDER BY credits DESC, created_at ASC LIMIT 1")).
		WillReturnRows(profileRows().AddRow("p2", "u2", "Ravi Kumar", "ravi@example.com", "user", 240, time.Now(), time.Now()))

	profile, err := repo.TopByCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", profile.Name)
	assert.Equal(t, 240, profile.Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, email, role, credits, created_at, updated_at FROM profiles WHERE 1=1 AND role = $1 AND credits >= $2 ORDER BY created_at ASC")).
		WithArgs("user", 1).
		WillReturnRows(profileRows().AddRow("p1", "u1", "Asha Verma", "asha@example.com", "user", 240, time.Now(), time.Now()))

	role := models.RoleUser
	minCredits := 1
	profiles, err := repo.List(context.Background(), models.ProfileFilter{Role: &role, MinCredits: &minCredits})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
