package tracker

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDocument 构造首次启动时的示例文档：两个习惯与今天的空日志
func DefaultDocument(now time.Time) *Document {
	version := DocumentVersion
	everyDay := []int{1, 2, 3, 4, 5, 6, 7}
	workoutDays := []int{1, 3, 5}
	noReminder, workoutReminder := "", "19:30"
	waterNotes, workoutNotes := "At least 2L total (track externally).", "Strength or cardio."

	raw := &RawDocument{
		Version: &version,
		Habits: []RawHabit{
			{
				ID:           uuid.NewString(),
				Name:         "Drink water",
				Icon:         "💧",
				Color:        "#5b8cff",
				Schedule:     &everyDay,
				ReminderTime: &noReminder,
				Notes:        &waterNotes,
			},
			{
				ID:           uuid.NewString(),
				Name:         "Workout",
				Icon:         "🏋️",
				Color:        "#ff5b6e",
				Schedule:     &workoutDays,
				ReminderTime: &workoutReminder,
				Notes:        &workoutNotes,
			},
		},
		Logs: map[string]DayLog{
			CanonicalDate(now): {},
		},
	}

	return Normalize(raw, now)
}
