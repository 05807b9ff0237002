package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/advisor"
	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type adviceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type adviceRepository interface {
	Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error)
	GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error)
	ListVacations(ctx context.Context, profileID string) ([]string, error)
}

// AdviceCacheConfig tunes caching of resolved advice.
type AdviceCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AdviceService resolves which notebooks to pack for a profile. The cutoff
// policy itself lives in the advisor package; this layer adds ownership
// checks and caching.
type AdviceService struct {
	repo   adviceRepository
	cache  adviceCache
	config AdviceCacheConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAdviceService constructs an AdviceService instance.
func NewAdviceService(repo adviceRepository, cache adviceCache, config AdviceCacheConfig, logger *zap.Logger) *AdviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdviceService{repo: repo, cache: cache, config: config, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *AdviceService) WithClock(now func() time.Time) *AdviceService {
	s.now = now
	return s
}

// Resolve computes the packing advice for a profile. When at is non-zero it
// is used as the resolution instant instead of the current time.
func (s *AdviceService) Resolve(ctx context.Context, ownerID, profileID string, at time.Time) (*models.AdviceResult, error) {
	profile, err := s.repo.Get(ctx, ownerID, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	moment := at
	if moment.IsZero() {
		moment = s.now()
	}

	cacheKey := s.cacheKey(profileID, moment)
	if s.cacheEnabled() {
		var cached models.AdviceResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	schedule, err := s.repo.GetSchedule(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	vacations, err := s.repo.ListVacations(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacations")
	}

	result := advisor.ResolveAdvice(moment, schedule, vacations, profile.Name)
	result.ProfileID = profile.ID
	result.Configured = len(schedule) > 0

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.config.TTL); err != nil {
			s.logger.Warn("failed to cache advice", zap.String("profile_id", profileID), zap.Error(err))
		}
	}
	return &result, nil
}

func (s *AdviceService) cacheEnabled() bool {
	return s.config.Enabled && s.cache != nil
}

// cacheKey buckets by target date and cutoff side so an entry never outlives
// the decision it encodes.
func (s *AdviceService) cacheKey(profileID string, moment time.Time) string {
	side := "before"
	if moment.Hour() >= advisor.CutoffHour {
		side = "after"
	}
	return fmt.Sprintf("advice:%s:%s:%s", profileID, moment.Format(advisor.DateLayout), side)
}
