package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mochila-app/backpack-api/internal/models"
)

// ProfileRepository persists child profiles with their weekly schedules and
// vacation dates.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ListByOwner returns all profiles belonging to an account.
func (r *ProfileRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Profile, error) {
	const query = `SELECT id, owner_id, name, notify, created_at, updated_at FROM profiles WHERE owner_id = $1 ORDER BY created_at ASC`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, ownerID); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Get fetches one profile scoped to its owner.
func (r *ProfileRepository) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	const query = `SELECT id, owner_id, name, notify, created_at, updated_at FROM profiles WHERE id = $1 AND owner_id = $2 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, profileID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Create inserts a profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO profiles (id, owner_id, name, notify, created_at, updated_at)
VALUES (:id, :owner_id, :name, :notify, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update modifies a profile's mutable fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET name = :name, notify = :notify, updated_at = :updated_at WHERE id = :id AND owner_id = :owner_id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// Delete removes a profile and cascades to its schedule entries and
// vacations inside one transaction. The owner's last-selected pointer is
// cleared when it referenced the deleted profile.
func (r *ProfileRepository) Delete(ctx context.Context, ownerID, profileID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete profile: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("delete schedule entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vacations WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("delete vacations: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1 AND owner_id = $2`, profileID, ownerID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET last_profile_id = NULL WHERE id = $1 AND last_profile_id = $2`, ownerID, profileID); err != nil {
		return fmt.Errorf("clear last profile pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete profile: %w", err)
	}
	return nil
}

// GetSchedule loads the stored weekly schedule for a profile. Rows with
// non-canonical weekday keys are skipped rather than surfaced as errors.
func (r *ProfileRepository) GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error) {
	const query = `SELECT profile_id, weekday, subjects, updated_at FROM schedule_entries WHERE profile_id = $1`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, profileID); err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	schedule := make(models.WeeklySchedule, len(entries))
	for _, entry := range entries {
		if !models.IsWeekdayName(entry.Weekday) {
			continue
		}
		schedule[entry.Weekday] = entry.Subjects
	}
	return schedule, nil
}

// ReplaceSchedule swaps the entire stored schedule for the provided one.
func (r *ProfileRepository) ReplaceSchedule(ctx context.Context, profileID string, schedule models.WeeklySchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("clear schedule entries: %w", err)
	}
	now := time.Now().UTC()
	for _, weekday := range models.WeekdayNames {
		subjects, ok := schedule[weekday]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_entries (profile_id, weekday, subjects, updated_at) VALUES ($1, $2, $3, $4)`,
			profileID, weekday, subjects, now); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedule: %w", err)
	}
	return nil
}

// UpsertDays merges per-day entries into the stored schedule, leaving days
// absent from the input untouched. Used by the photo import flow.
func (r *ProfileRepository) UpsertDays(ctx context.Context, profileID string, schedule models.WeeklySchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert days: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, weekday := range models.WeekdayNames {
		subjects, ok := schedule[weekday]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_entries (profile_id, weekday, subjects, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (profile_id, weekday) DO UPDATE SET subjects = EXCLUDED.subjects, updated_at = EXCLUDED.updated_at`,
			profileID, weekday, subjects, now); err != nil {
			return fmt.Errorf("upsert schedule entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert days: %w", err)
	}
	return nil
}

// ListVacations returns the profile's vacation dates as ISO date strings in
// ascending order.
func (r *ProfileRepository) ListVacations(ctx context.Context, profileID string) ([]string, error) {
	const query = `SELECT to_char(date, 'YYYY-MM-DD') FROM vacations WHERE profile_id = $1 ORDER BY date ASC`
	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query, profileID); err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	return dates, nil
}

// ReplaceVacations swaps the stored vacation set for the provided dates.
func (r *ProfileRepository) ReplaceVacations(ctx context.Context, profileID string, dates []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace vacations: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM vacations WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("clear vacations: %w", err)
	}
	for _, date := range dates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vacations (profile_id, date) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			profileID, date); err != nil {
			return fmt.Errorf("insert vacation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace vacations: %w", err)
	}
	return nil
}

// ListNotifiable returns every profile that opted into backpack reminders.
func (r *ProfileRepository) ListNotifiable(ctx context.Context) ([]models.NotificationTarget, error) {
	const query = `SELECT p.owner_id AS owner_id, p.id AS profile_id, p.name AS profile_name
FROM profiles p JOIN users u ON u.id = p.owner_id
WHERE p.notify = TRUE AND u.active = TRUE ORDER BY p.created_at ASC`
	var targets []models.NotificationTarget
	if err := r.db.SelectContext(ctx, &targets, query); err != nil {
		return nil, fmt.Errorf("list notifiable profiles: %w", err)
	}
	return targets, nil
}
