package models

import "time"

// Notification is a recorded backpack reminder raised by the background
// notifier sweep.
type Notification struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"-"`
	ProfileID   string    `db:"profile_id" json:"profile_id"`
	ProfileName string    `db:"profile_name" json:"profile_name"`
	TargetDate  string    `db:"target_date" json:"target_date"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows the notification history listing.
type NotificationFilter struct {
	ProfileID string
	Page      int
	PageSize  int
}
