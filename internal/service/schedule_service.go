package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/advisor"
	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type scheduleRepository interface {
	Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error)
	GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error)
	ReplaceSchedule(ctx context.Context, profileID string, schedule models.WeeklySchedule) error
	ListVacations(ctx context.Context, profileID string) ([]string, error)
	ReplaceVacations(ctx context.Context, profileID string, dates []string) error
}

// ScheduleUpdateRequest carries a partial schedule update. A nil field leaves
// the stored counterpart untouched; a present field replaces it entirely.
type ScheduleUpdateRequest struct {
	Schedule  *models.WeeklySchedule `json:"schedule"`
	Vacations *[]string              `json:"vacations"`
}

// ScheduleService manages the stored weekly schedule and vacation dates.
type ScheduleService struct {
	repo      scheduleRepository
	cache     adviceCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(repo scheduleRepository, cache adviceCache, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get loads the schedule and vacation list for a profile.
func (s *ScheduleService) Get(ctx context.Context, ownerID, profileID string) (*models.ProfileSchedule, error) {
	if err := s.requireProfile(ctx, ownerID, profileID); err != nil {
		return nil, err
	}

	schedule, err := s.repo.GetSchedule(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	vacations, err := s.repo.ListVacations(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacations")
	}
	return &models.ProfileSchedule{Schedule: schedule, Vacations: vacations}, nil
}

// Update applies a partial schedule update and invalidates cached advice.
func (s *ScheduleService) Update(ctx context.Context, ownerID, profileID string, req ScheduleUpdateRequest) (*models.ProfileSchedule, error) {
	if err := s.requireProfile(ctx, ownerID, profileID); err != nil {
		return nil, err
	}
	if req.Schedule == nil && req.Vacations == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	if req.Schedule != nil {
		for day := range *req.Schedule {
			if !models.IsWeekdayName(day) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", day))
			}
		}
		if err := s.repo.ReplaceSchedule(ctx, profileID, req.Schedule.Normalized()); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
		}
	}

	if req.Vacations != nil {
		dates, err := normalizeVacationDates(*req.Vacations)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceVacations(ctx, profileID, dates); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store vacations")
		}
	}

	s.invalidateAdvice(ctx, profileID)
	return s.Get(ctx, ownerID, profileID)
}

func (s *ScheduleService) requireProfile(ctx context.Context, ownerID, profileID string) error {
	if _, err := s.repo.Get(ctx, ownerID, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return nil
}

func (s *ScheduleService) invalidateAdvice(ctx context.Context, profileID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("advice:%s:*", profileID)); err != nil {
		s.logger.Warn("failed to invalidate advice cache", zap.String("profile_id", profileID), zap.Error(err))
	}
}

// normalizeVacationDates validates and deduplicates dates, keeping them in
// chronological order.
func normalizeVacationDates(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	parsed := make([]time.Time, 0, len(raw))
	for _, date := range raw {
		t, err := time.Parse(advisor.DateLayout, date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid vacation date %q, expected YYYY-MM-DD", date))
		}
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		parsed = append(parsed, t)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })
	out := make([]string, len(parsed))
	for i, t := range parsed {
		out[i] = t.Format(advisor.DateLayout)
	}
	return out, nil
}
