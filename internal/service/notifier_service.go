package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/advisor"
	"github.com/mochila-app/backpack-api/internal/models"
	"github.com/mochila-app/backpack-api/pkg/jobs"
)

type notifierRepository interface {
	ListNotifiable(ctx context.Context) ([]models.NotificationTarget, error)
	GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error)
	ListVacations(ctx context.Context, profileID string) ([]string, error)
}

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotifierConfig tunes the background reminder sweep.
type NotifierConfig struct {
	Interval   time.Duration
	WebhookURL string
}

// NotifierService periodically sweeps opted-in profiles and raises backpack
// reminders. It applies the same cutoff policy as the advice endpoint, so a
// sweep after 15:00 reminds about tomorrow's notebooks.
type NotifierService struct {
	repo          notifierRepository
	notifications notificationWriter
	queue         jobEnqueuer
	config        NotifierConfig
	httpClient    *http.Client
	metrics       *MetricsService
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotifierService constructs a NotifierService instance.
func NewNotifierService(repo notifierRepository, notifications notificationWriter, queue jobEnqueuer, config NotifierConfig, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = 12 * time.Hour
	}
	return &NotifierService{
		repo:          repo,
		notifications: notifications,
		queue:         queue,
		config:        config,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *NotifierService) WithClock(now func() time.Time) *NotifierService {
	s.now = now
	return s
}

// WithMetrics attaches sweep instrumentation.
func (s *NotifierService) WithMetrics(metrics *MetricsService) *NotifierService {
	s.metrics = metrics
	return s
}

// Run sweeps on the configured interval until the context is cancelled. An
// initial sweep fires immediately so a restart does not skip a cycle.
func (s *NotifierService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("notifier sweep failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("notifier sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single sweep and returns how many reminders it raised.
// Vacation days and days without notebooks produce no reminder.
func (s *NotifierService) RunOnce(ctx context.Context) (int, error) {
	targets, err := s.repo.ListNotifiable(ctx)
	if err != nil {
		return 0, fmt.Errorf("list notifiable profiles: %w", err)
	}

	moment := s.now()
	raised := 0
	for _, target := range targets {
		schedule, err := s.repo.GetSchedule(ctx, target.ProfileID)
		if err != nil {
			s.logger.Warn("skipping profile, schedule load failed",
				zap.String("profile_id", target.ProfileID), zap.Error(err))
			continue
		}
		vacations, err := s.repo.ListVacations(ctx, target.ProfileID)
		if err != nil {
			s.logger.Warn("skipping profile, vacation load failed",
				zap.String("profile_id", target.ProfileID), zap.Error(err))
			continue
		}

		advice := advisor.ResolveAdvice(moment, schedule, vacations, target.ProfileName)
		if advice.IsVacation || !advice.Configured || len(advice.Notebooks) == 0 {
			continue
		}

		notification := models.Notification{
			ID:          uuid.NewString(),
			OwnerID:     target.OwnerID,
			ProfileID:   target.ProfileID,
			ProfileName: target.ProfileName,
			TargetDate:  advice.TargetDate,
			Title:       fmt.Sprintf("Backpack reminder for %s", target.ProfileName),
			Body:        fmt.Sprintf("Pack for %s (%s): %s", advice.Label, advice.Weekday, strings.Join(advice.Notebooks, ", ")),
			CreatedAt:   moment.UTC(),
		}
		if err := s.queue.Enqueue(jobs.Job{
			ID:      notification.ID,
			Type:    "backpack-reminder",
			Payload: notification,
		}); err != nil {
			s.logger.Warn("failed to enqueue reminder",
				zap.String("profile_id", target.ProfileID), zap.Error(err))
			continue
		}
		raised++
	}

	s.metrics.RecordReminders(raised)
	s.logger.Info("notifier sweep completed",
		zap.Int("targets", len(targets)),
		zap.Int("raised", raised))
	return raised, nil
}

// Dispatch is the queue handler: it records the notification and, when a
// webhook is configured, pushes it out.
func (s *NotifierService) Dispatch(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	if err := s.notifications.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if s.config.WebhookURL == "" {
		return nil
	}
	return s.postWebhook(ctx, notification)
}

func (s *NotifierService) postWebhook(ctx context.Context, notification models.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
