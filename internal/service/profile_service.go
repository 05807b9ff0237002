package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type profileRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Profile, error)
	Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, ownerID, profileID string) error
}

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetLastProfile(ctx context.Context, id string, profileID *string) error
}

// ProfileRequest is the create/update payload for a child profile.
type ProfileRequest struct {
	Name   string `json:"name" validate:"required,max=80"`
	Notify *bool  `json:"notify"`
}

// ProfileService manages child profiles within a parent account.
type ProfileService struct {
	repo      profileRepository
	users     profileUserRepository
	cache     adviceCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(repo profileRepository, users profileUserRepository, cache adviceCache, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// List returns all profiles owned by the user, oldest first.
func (s *ProfileService) List(ctx context.Context, ownerID string) ([]models.Profile, error) {
	profiles, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	return profiles, nil
}

// Get returns one profile scoped to its owner.
func (s *ProfileService) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	profile, err := s.repo.Get(ctx, ownerID, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Create adds a new child profile. The first profile of an account becomes
// the selected one automatically.
func (s *ProfileService) Create(ctx context.Context, ownerID string, req ProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	existing, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}

	profile := &models.Profile{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
		Notify:  req.Notify != nil && *req.Notify,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}

	if len(existing) == 0 {
		if err := s.users.SetLastProfile(ctx, ownerID, &profile.ID); err != nil {
			s.logger.Warn("failed to select first profile", zap.Error(err))
		}
	}

	s.logger.Info("profile created", zap.String("profile_id", profile.ID))
	return profile, nil
}

// Update renames a profile or toggles its notification flag.
func (s *ProfileService) Update(ctx context.Context, ownerID, profileID string, req ProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.Get(ctx, ownerID, profileID)
	if err != nil {
		return nil, err
	}

	profile.Name = strings.TrimSpace(req.Name)
	if req.Notify != nil {
		profile.Notify = *req.Notify
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// Delete removes a profile together with its schedule and vacations.
func (s *ProfileService) Delete(ctx context.Context, ownerID, profileID string) error {
	if err := s.repo.Delete(ctx, ownerID, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete profile")
	}
	s.invalidateAdvice(ctx, profileID)
	return nil
}

// Select marks a profile as the account's active one.
func (s *ProfileService) Select(ctx context.Context, ownerID, profileID string) error {
	if _, err := s.Get(ctx, ownerID, profileID); err != nil {
		return err
	}
	if err := s.users.SetLastProfile(ctx, ownerID, &profileID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select profile")
	}
	return nil
}

// Selected returns the account's last selected profile, falling back to the
// first profile when the pointer is unset or stale.
func (s *ProfileService) Selected(ctx context.Context, ownerID string) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.LastProfileID != nil {
		profile, err := s.repo.Get(ctx, ownerID, *user.LastProfileID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected profile")
		}
	}

	profiles, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	if len(profiles) == 0 {
		return nil, appErrors.Clone(appErrors.ErrProfileNotFound, "account has no profiles")
	}
	return &profiles[0], nil
}

func (s *ProfileService) invalidateAdvice(ctx context.Context, profileID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("advice:%s:*", profileID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate advice cache", zap.String("profile_id", profileID), zap.Error(err))
	}
}
