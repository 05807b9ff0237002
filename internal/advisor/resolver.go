// Package advisor contains the pure decision logic that picks the next
// relevant school day and derives the notebook list for it. It performs no
// I/O; callers inject "now" so every branch is deterministic under test.
package advisor

import (
	"strings"
	"time"

	"github.com/mochila-app/backpack-api/internal/models"
)

// CutoffHour is the local-time hour after which advice targets the next
// school day instead of today. A parent checking after school hours is
// packing for the next day.
const CutoffHour = 15

// DateLayout is the ISO calendar-date format used for vacation matching.
const DateLayout = "2006-01-02"

// ResolveTargetDate decides which single calendar date's schedule the user
// must prepare for. The choice is a fixed lookup by weekday and hour, never a
// forward scan: the resolved date may itself be a vacation day, which
// ResolveAdvice handles separately.
func ResolveTargetDate(now time.Time) (time.Time, models.AdviceLabel) {
	switch now.Weekday() {
	case time.Saturday:
		return startOfDay(now.AddDate(0, 0, 2)), models.LabelNextMonday
	case time.Sunday:
		return startOfDay(now.AddDate(0, 0, 1)), models.LabelNextMonday
	case time.Friday:
		if now.Hour() >= CutoffHour {
			return startOfDay(now.AddDate(0, 0, 3)), models.LabelNextMonday
		}
		return startOfDay(now), models.LabelToday
	default: // Monday through Thursday
		if now.Hour() >= CutoffHour {
			return startOfDay(now.AddDate(0, 0, 1)), models.LabelTomorrow
		}
		return startOfDay(now), models.LabelToday
	}
}

// ResolveAdvice computes the full recommendation for "now". It never fails:
// vacation days short-circuit to an empty list, and missing or malformed
// weekday entries mean no classes.
func ResolveAdvice(now time.Time, schedule models.WeeklySchedule, vacations []string, profileName string) models.AdviceResult {
	target, label := ResolveTargetDate(now)
	result := models.AdviceResult{
		ProfileName: profileName,
		TargetDate:  target.Format(DateLayout),
		Weekday:     target.Weekday().String(),
		Label:       label,
		Configured:  true,
		Notebooks:   []string{},
	}

	if isVacation(result.TargetDate, vacations) {
		result.IsVacation = true
		return result
	}

	result.Notebooks = SplitSubjects(schedule[result.Weekday])
	return result
}

// NotebooksForDate derives the packing list for a specific calendar date.
// Shared by foreground advice and the background notifier so both paths apply
// the same vacation and splitting policy.
func NotebooksForDate(date time.Time, schedule models.WeeklySchedule, vacations []string) []string {
	if isVacation(date.Format(DateLayout), vacations) {
		return []string{}
	}
	return SplitSubjects(schedule[date.Weekday().String()])
}

// SplitSubjects turns a comma-separated subject string into the ordered
// notebook list: entries are trimmed, blanks dropped, duplicates kept.
func SplitSubjects(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	notebooks := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		notebooks = append(notebooks, trimmed)
	}
	return notebooks
}

// Vacation comparison is exact calendar-date string equality, never a
// timestamp comparison.
func isVacation(date string, vacations []string) bool {
	for _, vacation := range vacations {
		if vacation == date {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
