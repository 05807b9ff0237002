package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type scheduleExtractor interface {
	ExtractSchedule(ctx context.Context, image []byte, mimeType string) (models.WeeklySchedule, error)
}

type importRepository interface {
	Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error)
	GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error)
	UpsertDays(ctx context.Context, profileID string, schedule models.WeeklySchedule) error
}

// ImportConfig bounds what the photo import endpoint accepts.
type ImportConfig struct {
	Enabled          bool
	MaxImageBytes    int64
	AllowedMIMETypes []string
}

// ImportResult reports what the extraction produced and the merged outcome.
type ImportResult struct {
	Extracted models.WeeklySchedule `json:"extracted"`
	Schedule  models.WeeklySchedule `json:"schedule"`
}

// ImportService turns a photographed timetable into stored schedule days.
// Extraction only reads the image; the merge keeps days the photo did not
// mention.
type ImportService struct {
	repo      importRepository
	extractor scheduleExtractor
	cache     adviceCache
	config    ImportConfig
	logger    *zap.Logger
}

// NewImportService constructs an ImportService instance.
func NewImportService(repo importRepository, extractor scheduleExtractor, cache adviceCache, config ImportConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{repo: repo, extractor: extractor, cache: cache, config: config, logger: logger}
}

// Import extracts a weekly schedule from the image and merges it into the
// profile's stored schedule.
func (s *ImportService) Import(ctx context.Context, ownerID, profileID string, image []byte, mimeType string) (*ImportResult, error) {
	if !s.config.Enabled || s.extractor == nil {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "schedule import is disabled")
	}

	if _, err := s.repo.Get(ctx, ownerID, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if err := s.validateImage(image, mimeType); err != nil {
		return nil, err
	}

	extracted, err := s.extractor.ExtractSchedule(ctx, image, mimeType)
	if err != nil {
		s.logger.Warn("schedule extraction failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "schedule extraction failed")
	}

	extracted = extracted.Normalized()
	if len(extracted) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no schedule could be read from the image")
	}

	if err := s.repo.UpsertDays(ctx, profileID, extracted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store extracted schedule")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("advice:%s:*", profileID)); err != nil {
			s.logger.Warn("failed to invalidate advice cache", zap.String("profile_id", profileID), zap.Error(err))
		}
	}

	merged, err := s.repo.GetSchedule(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload schedule")
	}

	s.logger.Info("schedule imported from photo",
		zap.String("profile_id", profileID),
		zap.Int("days_extracted", len(extracted)))
	return &ImportResult{Extracted: extracted, Schedule: merged}, nil
}

func (s *ImportService) validateImage(image []byte, mimeType string) error {
	if len(image) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "image is empty")
	}
	if s.config.MaxImageBytes > 0 && int64(len(image)) > s.config.MaxImageBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.config.MaxImageBytes))
	}
	if len(s.config.AllowedMIMETypes) > 0 {
		for _, allowed := range s.config.AllowedMIMETypes {
			if mimeType == allowed {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported image type %q", mimeType))
	}
	return nil
}
