package models

// AdviceLabel is the human-facing phrasing for the resolved target date.
type AdviceLabel string

const (
	LabelToday      AdviceLabel = "today"
	LabelTomorrow   AdviceLabel = "tomorrow"
	LabelNextMonday AdviceLabel = "next Monday"
)

// AdviceResult is the derived, date-specific packing recommendation. It is
// recomputed on every resolution and never persisted.
type AdviceResult struct {
	ProfileID   string      `json:"profile_id,omitempty"`
	ProfileName string      `json:"profile_name,omitempty"`
	TargetDate  string      `json:"target_date"`
	Weekday     string      `json:"weekday"`
	Label       AdviceLabel `json:"label"`
	IsVacation  bool        `json:"is_vacation"`
	Configured  bool        `json:"configured"`
	Notebooks   []string    `json:"notebooks"`
}
