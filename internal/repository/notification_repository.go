package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mochila-app/backpack-api/internal/models"
)

// NotificationRepository persists raised backpack reminders.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, owner_id, profile_id, profile_name, target_date, title, body, created_at)
VALUES (:id, :owner_id, :profile_id, :profile_name, :target_date, :title, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's notification history, newest first.
func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string, filter models.NotificationFilter) ([]models.Notification, int, error) {
	base := "FROM notifications"
	where := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	if filter.ProfileID != "" {
		where = append(where, fmt.Sprintf("profile_id = $%d", len(args)+1))
		args = append(args, filter.ProfileID)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, owner_id, profile_id, profile_name, target_date, title, body, created_at
%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return notifications, total, nil
}
