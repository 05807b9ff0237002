package models

import "time"

// Profile is one child schedule owner within a parent account.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Notify    bool      `db:"notify" json:"notify"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NotificationTarget pairs a profile with its owner for the background
// notifier sweep.
type NotificationTarget struct {
	OwnerID     string `db:"owner_id"`
	ProfileID   string `db:"profile_id"`
	ProfileName string `db:"profile_name"`
}
