package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
)

// 2026-03-02 is a Monday.
func localDate(day int, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 30, 0, 0, time.Local)
}

func TestResolveTargetDateWeekdaysBeforeCutoff(t *testing.T) {
	for day := 2; day <= 5; day++ { // Monday through Thursday
		now := localDate(day, 9)
		target, label := ResolveTargetDate(now)
		assert.Equal(t, models.LabelToday, label, "weekday %s", now.Weekday())
		assert.Equal(t, now.Day(), target.Day())
	}
}

func TestResolveTargetDateWeekdaysAfterCutoff(t *testing.T) {
	for day := 2; day <= 5; day++ {
		now := localDate(day, 15)
		target, label := ResolveTargetDate(now)
		assert.Equal(t, models.LabelTomorrow, label, "weekday %s", now.Weekday())
		assert.Equal(t, now.Day()+1, target.Day())
	}
}

func TestResolveTargetDateFriday(t *testing.T) {
	friday := localDate(6, 10)
	require.Equal(t, time.Friday, friday.Weekday())

	target, label := ResolveTargetDate(friday)
	assert.Equal(t, models.LabelToday, label)
	assert.Equal(t, friday.Day(), target.Day())

	lateFriday := localDate(6, 16)
	target, label = ResolveTargetDate(lateFriday)
	assert.Equal(t, models.LabelNextMonday, label)
	assert.Equal(t, time.Monday, target.Weekday())
	assert.Equal(t, friday.Day()+3, target.Day())
}

func TestResolveTargetDateWeekend(t *testing.T) {
	saturday := localDate(7, 11)
	require.Equal(t, time.Saturday, saturday.Weekday())
	target, label := ResolveTargetDate(saturday)
	assert.Equal(t, models.LabelNextMonday, label)
	assert.Equal(t, time.Monday, target.Weekday())
	assert.Equal(t, saturday.Day()+2, target.Day())

	sunday := localDate(8, 23)
	require.Equal(t, time.Sunday, sunday.Weekday())
	target, label = ResolveTargetDate(sunday)
	assert.Equal(t, models.LabelNextMonday, label)
	assert.Equal(t, time.Monday, target.Weekday())
	assert.Equal(t, sunday.Day()+1, target.Day())
}

func TestResolveTargetDateTruncatesTime(t *testing.T) {
	target, _ := ResolveTargetDate(localDate(3, 10))
	assert.Equal(t, 0, target.Hour())
	assert.Equal(t, 0, target.Minute())
}

func TestResolveAdviceVacationShortCircuits(t *testing.T) {
	tuesday := localDate(3, 10)
	require.Equal(t, time.Tuesday, tuesday.Weekday())

	schedule := models.WeeklySchedule{"Tuesday": "Art, Music"}
	vacations := []string{tuesday.Format(DateLayout)}

	result := ResolveAdvice(tuesday, schedule, vacations, "Ana")
	assert.True(t, result.IsVacation)
	assert.Empty(t, result.Notebooks)
	assert.Equal(t, models.LabelToday, result.Label)
	assert.Equal(t, "Ana", result.ProfileName)
}

func TestResolveAdviceSplitsAndTrims(t *testing.T) {
	monday := localDate(2, 8)
	schedule := models.WeeklySchedule{"Monday": "Math, History,  Biology ,,"}

	result := ResolveAdvice(monday, schedule, nil, "Ana")
	assert.Equal(t, []string{"Math", "History", "Biology"}, result.Notebooks)
	assert.False(t, result.IsVacation)
}

func TestResolveAdviceKeepsDuplicates(t *testing.T) {
	monday := localDate(2, 8)
	schedule := models.WeeklySchedule{"Monday": "Math, Math, Art"}

	result := ResolveAdvice(monday, schedule, nil, "")
	assert.Equal(t, []string{"Math", "Math", "Art"}, result.Notebooks)
}

func TestResolveAdviceEmptyDay(t *testing.T) {
	monday := localDate(2, 8)

	result := ResolveAdvice(monday, models.WeeklySchedule{"Monday": ""}, nil, "")
	assert.Empty(t, result.Notebooks)
	assert.False(t, result.IsVacation)

	result = ResolveAdvice(monday, models.WeeklySchedule{}, nil, "")
	assert.Empty(t, result.Notebooks)
}

func TestResolveAdviceIdempotent(t *testing.T) {
	now := localDate(4, 16)
	schedule := models.WeeklySchedule{"Thursday": "PE", "Friday": "Math, Art"}
	vacations := []string{"2026-03-09"}

	first := ResolveAdvice(now, schedule, vacations, "Leo")
	second := ResolveAdvice(now, schedule, vacations, "Leo")
	assert.Equal(t, first, second)
}

func TestResolveAdviceFridayAfternoonScenario(t *testing.T) {
	friday := localDate(6, 16)
	schedule := models.WeeklySchedule{"Monday": "Math"}

	result := ResolveAdvice(friday, schedule, nil, "")
	assert.Equal(t, models.LabelNextMonday, result.Label)
	assert.Equal(t, "Monday", result.Weekday)
	assert.Equal(t, []string{"Math"}, result.Notebooks)
}

func TestResolveAdviceSundayEmptyMonday(t *testing.T) {
	sunday := localDate(8, 13)
	result := ResolveAdvice(sunday, models.WeeklySchedule{"Monday": ""}, nil, "")
	assert.Equal(t, "Monday", result.Weekday)
	assert.Empty(t, result.Notebooks)
}

func TestNotebooksForDateMatchesAdvicePolicy(t *testing.T) {
	monday := localDate(9, 0)
	require.Equal(t, time.Monday, monday.Weekday())
	schedule := models.WeeklySchedule{"Monday": "Math, Science"}

	assert.Equal(t, []string{"Math", "Science"}, NotebooksForDate(monday, schedule, nil))
	assert.Empty(t, NotebooksForDate(monday, schedule, []string{monday.Format(DateLayout)}))
}

func TestSplitSubjectsBlank(t *testing.T) {
	assert.Empty(t, SplitSubjects(""))
	assert.Empty(t, SplitSubjects("   "))
	assert.Empty(t, SplitSubjects(",,,"))
}
