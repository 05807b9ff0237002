package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type scheduleRepoStub struct {
	profile   *models.Profile
	schedule  models.WeeklySchedule
	vacations []string
}

func (s *scheduleRepoStub) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	if s.profile == nil || s.profile.ID != profileID || s.profile.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func (s *scheduleRepoStub) GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error) {
	return s.schedule, nil
}

func (s *scheduleRepoStub) ReplaceSchedule(ctx context.Context, profileID string, schedule models.WeeklySchedule) error {
	s.schedule = schedule
	return nil
}

func (s *scheduleRepoStub) ListVacations(ctx context.Context, profileID string) ([]string, error) {
	return s.vacations, nil
}

func (s *scheduleRepoStub) ReplaceVacations(ctx context.Context, profileID string, dates []string) error {
	s.vacations = dates
	return nil
}

func newScheduleStub() *scheduleRepoStub {
	return &scheduleRepoStub{
		profile:   &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"},
		schedule:  models.WeeklySchedule{"Monday": "Math"},
		vacations: []string{"2026-04-10"},
	}
}

func TestScheduleUpdateScheduleOnly(t *testing.T) {
	repo := newScheduleStub()
	cache := &cacheStub{}
	svc := NewScheduleService(repo, cache, nil, nil)

	schedule := models.WeeklySchedule{"Tuesday": " Biology , Art "}
	result, err := svc.Update(context.Background(), "u1", "p1", ScheduleUpdateRequest{Schedule: &schedule})
	require.NoError(t, err)

	assert.Equal(t, models.WeeklySchedule{"Tuesday": "Biology , Art"}, result.Schedule)
	assert.Equal(t, []string{"2026-04-10"}, result.Vacations, "vacations stay untouched when omitted")
	assert.Contains(t, cache.deleted, "advice:p1:*")
}

func TestScheduleUpdateVacationsOnly(t *testing.T) {
	repo := newScheduleStub()
	svc := NewScheduleService(repo, nil, nil, nil)

	vacations := []string{"2026-05-02", "2026-05-01", "2026-05-01"}
	result, err := svc.Update(context.Background(), "u1", "p1", ScheduleUpdateRequest{Vacations: &vacations})
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-05-01", "2026-05-02"}, result.Vacations, "dates deduplicated and sorted")
	assert.Equal(t, models.WeeklySchedule{"Monday": "Math"}, result.Schedule)
}

func TestScheduleUpdateRejectsUnknownWeekday(t *testing.T) {
	svc := NewScheduleService(newScheduleStub(), nil, nil, nil)

	schedule := models.WeeklySchedule{"Funday": "Chaos"}
	_, err := svc.Update(context.Background(), "u1", "p1", ScheduleUpdateRequest{Schedule: &schedule})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpdateRejectsMalformedVacationDate(t *testing.T) {
	svc := NewScheduleService(newScheduleStub(), nil, nil, nil)

	vacations := []string{"10/04/2026"}
	_, err := svc.Update(context.Background(), "u1", "p1", ScheduleUpdateRequest{Vacations: &vacations})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpdateRejectsEmptyRequest(t *testing.T) {
	svc := NewScheduleService(newScheduleStub(), nil, nil, nil)

	_, err := svc.Update(context.Background(), "u1", "p1", ScheduleUpdateRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleGetUnknownProfile(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
}
