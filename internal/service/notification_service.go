package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type notificationRepository interface {
	ListByOwner(ctx context.Context, ownerID string, filter models.NotificationFilter) ([]models.Notification, int, error)
}

// NotificationService exposes the stored reminder history.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns reminders for the account, newest first.
func (s *NotificationService) List(ctx context.Context, ownerID string, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	notifications, total, err := s.repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}

	return notifications, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}, nil
}
