package tracker

import (
	"fmt"
	"time"
)

// DashboardStats 汇总选中日期与所在月份的统计
type DashboardStats struct {
	Date       string        `json:"date"`
	DueCount   int           `json:"due_count"`
	DoneCount  int           `json:"done_count"`
	MonthStart string        `json:"month_start"`
	MonthEnd   string        `json:"month_end"`
	Month      Completion    `json:"month"`
	MonthRate  int           `json:"month_rate"`
	BestStreak *StreakResult `json:"best_streak,omitempty"`
}

// HabitStats 汇总单个习惯在区间内的完成情况
type HabitStats struct {
	HabitID       string     `json:"habit_id"`
	RangeStart    string     `json:"range_start"`
	RangeEnd      string     `json:"range_end"`
	Completion    Completion `json:"completion"`
	Rate          int        `json:"completion_rate"`
	LongestStreak int        `json:"longest_streak"`
}

// Dashboard 以选中日期的应打卡习惯为范围，统计当日完成数、月份完成率与最佳连胜
func (d *Document) Dashboard(date string, month time.Time) (DashboardStats, error) {
	due, err := d.DueHabits(date)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{Date: date, DueCount: len(due)}
	for _, h := range due {
		if d.IsDone(h.ID, date) {
			stats.DoneCount++
		}
	}

	stats.MonthStart, stats.MonthEnd = MonthBounds(month)
	stats.Month, err = d.Aggregate(due, stats.MonthStart, stats.MonthEnd)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.MonthRate = stats.Month.Percent()

	if best, ok := d.BestStreakAcross(due); ok {
		stats.BestStreak = &best
	}

	return stats, nil
}

// StatsFor 计算单个习惯在区间内的完成率与最长连胜
func (d *Document) StatsFor(habitID, start, end string) (HabitStats, error) {
	habit, ok := d.FindHabit(habitID)
	if !ok {
		return HabitStats{}, fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
	}

	completion, err := d.Aggregate([]Habit{habit}, start, end)
	if err != nil {
		return HabitStats{}, err
	}

	return HabitStats{
		HabitID:       habitID,
		RangeStart:    start,
		RangeEnd:      end,
		Completion:    completion,
		Rate:          completion.Percent(),
		LongestStreak: d.LongestStreak(habitID),
	}, nil
}
