package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type profileRepoStub struct {
	profiles []models.Profile
}

func (s *profileRepoStub) ListByOwner(ctx context.Context, ownerID string) ([]models.Profile, error) {
	result := []models.Profile{}
	for _, p := range s.profiles {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *profileRepoStub) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	for i := range s.profiles {
		if s.profiles[i].ID == profileID && s.profiles[i].OwnerID == ownerID {
			return &s.profiles[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	s.profiles = append(s.profiles, *profile)
	return nil
}

func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	for i := range s.profiles {
		if s.profiles[i].ID == profile.ID {
			s.profiles[i] = *profile
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *profileRepoStub) Delete(ctx context.Context, ownerID, profileID string) error {
	for i := range s.profiles {
		if s.profiles[i].ID == profileID && s.profiles[i].OwnerID == ownerID {
			s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type profileUserStub struct {
	user     models.User
	selected *string
}

func (s *profileUserStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user := s.user
	user.LastProfileID = s.selected
	return &user, nil
}

func (s *profileUserStub) SetLastProfile(ctx context.Context, id string, profileID *string) error {
	s.selected = profileID
	return nil
}

func TestProfileCreateFirstBecomesSelected(t *testing.T) {
	repo := &profileRepoStub{}
	users := &profileUserStub{user: models.User{ID: "u1"}}
	svc := NewProfileService(repo, users, nil, nil, nil)

	profile, err := svc.Create(context.Background(), "u1", ProfileRequest{Name: " Ana "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
	require.NotNil(t, users.selected)
	assert.Equal(t, profile.ID, *users.selected)

	second, err := svc.Create(context.Background(), "u1", ProfileRequest{Name: "Leo"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, *users.selected, "second profile must not steal selection")
	assert.NotEqual(t, profile.ID, second.ID)
}

func TestProfileSelectedFallsBackToFirst(t *testing.T) {
	repo := &profileRepoStub{profiles: []models.Profile{
		{ID: "p1", OwnerID: "u1", Name: "Ana"},
		{ID: "p2", OwnerID: "u1", Name: "Leo"},
	}}
	stale := "gone"
	users := &profileUserStub{user: models.User{ID: "u1"}, selected: &stale}
	svc := NewProfileService(repo, users, nil, nil, nil)

	selected, err := svc.Selected(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", selected.ID)
}

func TestProfileSelectedNoProfiles(t *testing.T) {
	users := &profileUserStub{user: models.User{ID: "u1"}}
	svc := NewProfileService(&profileRepoStub{}, users, nil, nil, nil)

	_, err := svc.Selected(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileSelectRejectsForeignProfile(t *testing.T) {
	repo := &profileRepoStub{profiles: []models.Profile{{ID: "p1", OwnerID: "someone-else", Name: "Ana"}}}
	users := &profileUserStub{user: models.User{ID: "u1"}}
	svc := NewProfileService(repo, users, nil, nil, nil)

	err := svc.Select(context.Background(), "u1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, users.selected)
}

func TestProfileDeleteInvalidatesAdvice(t *testing.T) {
	repo := &profileRepoStub{profiles: []models.Profile{{ID: "p1", OwnerID: "u1", Name: "Ana"}}}
	users := &profileUserStub{user: models.User{ID: "u1"}}
	cache := &cacheStub{}
	svc := NewProfileService(repo, users, cache, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "u1", "p1"))
	assert.Contains(t, cache.deleted, "advice:p1:*")

	err := svc.Delete(context.Background(), "u1", "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileUpdateTogglesNotify(t *testing.T) {
	repo := &profileRepoStub{profiles: []models.Profile{{ID: "p1", OwnerID: "u1", Name: "Ana"}}}
	users := &profileUserStub{user: models.User{ID: "u1"}}
	svc := NewProfileService(repo, users, nil, nil, nil)

	notify := true
	updated, err := svc.Update(context.Background(), "u1", "p1", ProfileRequest{Name: "Ana", Notify: &notify})
	require.NoError(t, err)
	assert.True(t, updated.Notify)

	updated, err = svc.Update(context.Background(), "u1", "p1", ProfileRequest{Name: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.True(t, updated.Notify, "omitted notify keeps previous value")
}
