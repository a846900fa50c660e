package tracker

import (
	"slices"
	"time"
)

// IsDueOn 判断习惯的排期是否包含该日期的星期
// 只检查 schedule 本身；归档状态由 IsActiveOn/DueHabits 过滤
func IsDueOn(habit Habit, date time.Time) bool {
	return slices.Contains(habit.Schedule, ISOWeekday(date))
}

// IsActiveOn 判断习惯在该日期是否"应打卡"：未归档且排期命中
func IsActiveOn(habit Habit, date time.Time) bool {
	return !habit.Archived && IsDueOn(habit, date)
}

// DueHabits 返回指定日期需要打卡的习惯（未归档且排期命中），保持文档中的顺序
func (d *Document) DueHabits(date string) ([]Habit, error) {
	day, err := ParseCanonicalDate(date)
	if err != nil {
		return nil, err
	}

	due := make([]Habit, 0, len(d.Habits))
	for _, h := range d.Habits {
		if IsActiveOn(h, day) {
			due = append(due, h)
		}
	}
	return due, nil
}
