package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

// Cache is the cached-lookup dependency shared by the domain services. A nil
// Cache disables caching entirely.
type Cache = adviceCache

// CacheService wraps the Redis-backed cache with metrics and a default TTL.
// It satisfies the cache dependency of the other services, so disabling it
// in config simply drops it from the wiring.
type CacheService struct {
	repo       adviceCache
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewCacheService constructs a CacheService instance.
func NewCacheService(repo adviceCache, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger}
}

// Get retrieves a cached entry, recording hit or miss.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	err := s.repo.Get(ctx, key, dest)
	if err != nil {
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return err
	}
	s.metrics.RecordCacheLookup(true)
	return nil
}

// Set stores the value in cache, falling back to the default TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// DeleteByPattern removes cached values matching the pattern.
func (s *CacheService) DeleteByPattern(ctx context.Context, pattern string) error {
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
