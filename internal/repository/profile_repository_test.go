package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
)

func TestGetScheduleSkipsUnknownWeekdays(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"profile_id", "weekday", "subjects", "updated_at"}).
		AddRow("p1", "Monday", "Math, Art", now).
		AddRow("p1", "Funday", "Chaos", now).
		AddRow("p1", "Friday", "PE", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT profile_id, weekday, subjects, updated_at FROM schedule_entries WHERE profile_id = $1")).
		WithArgs("p1").
		WillReturnRows(rows)

	schedule, err := repo.GetSchedule(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.WeeklySchedule{"Monday": "Math, Art", "Friday": "PE"}, schedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVacations(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"to_char"}).
		AddRow("2026-03-02").
		AddRow("2026-04-10")
	mock.ExpectQuery("SELECT to_char").WithArgs("p1").WillReturnRows(rows)

	dates, err := repo.ListVacations(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02", "2026-04-10"}, dates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceScheduleWritesCanonicalDaysOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_entries").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	schedule := models.WeeklySchedule{"Monday": "Math", "Wednesday": "Art"}
	err := repo.ReplaceSchedule(context.Background(), "p1", schedule)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_entries").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM vacations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM profiles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET last_profile_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotifiable(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"owner_id", "profile_id", "profile_name"}).
		AddRow("u1", "p1", "Ana").
		AddRow("u2", "p2", "Leo")
	mock.ExpectQuery("SELECT p.owner_id AS owner_id").WillReturnRows(rows)

	targets, err := repo.ListNotifiable(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "Ana", targets[0].ProfileName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
