package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type adviceRepoStub struct {
	profile   *models.Profile
	schedule  models.WeeklySchedule
	vacations []string

	scheduleLoads int
}

func (s *adviceRepoStub) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	if s.profile == nil || s.profile.ID != profileID || s.profile.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func (s *adviceRepoStub) GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error) {
	s.scheduleLoads++
	return s.schedule, nil
}

func (s *adviceRepoStub) ListVacations(ctx context.Context, profileID string) ([]string, error) {
	return s.vacations, nil
}

type cacheStub struct {
	entries map[string][]byte
	deleted []string
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	s.entries[key] = raw
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

// mondayAt returns a fixed Monday (2026-03-02) at the given hour.
func mondayAt(hour int) time.Time {
	return time.Date(2026, time.March, 2, hour, 0, 0, 0, time.Local)
}

func TestAdviceResolveBeforeCutoff(t *testing.T) {
	repo := &adviceRepoStub{
		profile:  &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"},
		schedule: models.WeeklySchedule{"Monday": "Math, History"},
	}
	svc := NewAdviceService(repo, nil, AdviceCacheConfig{}, nil)

	result, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(9))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", result.TargetDate)
	assert.Equal(t, models.LabelToday, result.Label)
	assert.Equal(t, []string{"Math", "History"}, result.Notebooks)
	assert.Equal(t, "p1", result.ProfileID)
	assert.Equal(t, "Ana", result.ProfileName)
}

func TestAdviceResolveAfterCutoff(t *testing.T) {
	repo := &adviceRepoStub{
		profile:  &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"},
		schedule: models.WeeklySchedule{"Tuesday": "Biology"},
	}
	svc := NewAdviceService(repo, nil, AdviceCacheConfig{}, nil)

	result, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(16))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", result.TargetDate)
	assert.Equal(t, models.LabelTomorrow, result.Label)
	assert.Equal(t, []string{"Biology"}, result.Notebooks)
}

func TestAdviceResolveVacation(t *testing.T) {
	repo := &adviceRepoStub{
		profile:   &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"},
		schedule:  models.WeeklySchedule{"Monday": "Math"},
		vacations: []string{"2026-03-02"},
	}
	svc := NewAdviceService(repo, nil, AdviceCacheConfig{}, nil)

	result, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(9))
	require.NoError(t, err)
	assert.True(t, result.IsVacation)
	assert.Empty(t, result.Notebooks)
}

func TestAdviceResolveUnconfiguredSchedule(t *testing.T) {
	repo := &adviceRepoStub{profile: &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"}}
	svc := NewAdviceService(repo, nil, AdviceCacheConfig{}, nil)

	result, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(9))
	require.NoError(t, err)
	assert.False(t, result.Configured)
	assert.Empty(t, result.Notebooks)
}

func TestAdviceResolveUnknownProfile(t *testing.T) {
	svc := NewAdviceService(&adviceRepoStub{}, nil, AdviceCacheConfig{}, nil)

	_, err := svc.Resolve(context.Background(), "u1", "missing", mondayAt(9))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErr.Code)
}

func TestAdviceResolveOwnershipEnforced(t *testing.T) {
	repo := &adviceRepoStub{profile: &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"}}
	svc := NewAdviceService(repo, nil, AdviceCacheConfig{}, nil)

	_, err := svc.Resolve(context.Background(), "other-user", "p1", mondayAt(9))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdviceCacheSecondResolveSkipsLoad(t *testing.T) {
	repo := &adviceRepoStub{
		profile:  &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana"},
		schedule: models.WeeklySchedule{"Monday": "Math"},
	}
	cache := &cacheStub{}
	svc := NewAdviceService(repo, cache, AdviceCacheConfig{Enabled: true, TTL: time.Minute}, nil)

	first, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(9))
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "u1", "p1", mondayAt(10))
	require.NoError(t, err)

	assert.Equal(t, first.TargetDate, second.TargetDate)
	assert.Equal(t, 1, repo.scheduleLoads)
}

func TestAdviceCacheKeySplitsOnCutoff(t *testing.T) {
	svc := NewAdviceService(&adviceRepoStub{}, nil, AdviceCacheConfig{}, nil)

	before := svc.cacheKey("p1", mondayAt(14))
	after := svc.cacheKey("p1", mondayAt(15))
	assert.NotEqual(t, before, after)
}
