package models

import (
	"strings"
	"time"
)

// WeekdayNames lists the canonical schedule keys in display order.
var WeekdayNames = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

var weekdaySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(WeekdayNames))
	for _, name := range WeekdayNames {
		set[name] = struct{}{}
	}
	return set
}()

// IsWeekdayName reports whether name is one of the seven canonical weekday keys.
func IsWeekdayName(name string) bool {
	_, ok := weekdaySet[name]
	return ok
}

// WeeklySchedule maps a canonical weekday name to a comma-separated list of
// subjects. A missing or blank entry means no classes that day.
type WeeklySchedule map[string]string

// Normalized returns a copy restricted to canonical weekday keys with
// trimmed, non-blank values. Unknown keys are dropped rather than rejected.
func (s WeeklySchedule) Normalized() WeeklySchedule {
	out := make(WeeklySchedule, len(s))
	for day, subjects := range s {
		if !IsWeekdayName(day) {
			continue
		}
		trimmed := strings.TrimSpace(subjects)
		if trimmed == "" {
			continue
		}
		out[day] = trimmed
	}
	return out
}

// ScheduleEntry is one stored weekday row for a profile.
type ScheduleEntry struct {
	ProfileID string    `db:"profile_id" json:"-"`
	Weekday   string    `db:"weekday" json:"weekday"`
	Subjects  string    `db:"subjects" json:"subjects"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileSchedule bundles everything the advisor needs for one profile.
type ProfileSchedule struct {
	Schedule  WeeklySchedule `json:"schedule"`
	Vacations []string       `json:"vacations"`
}
