package tracker

import (
	"maps"
	"slices"
)

// StreakResult 描述某个习惯的最长连续打卡
type StreakResult struct {
	HabitID string `json:"habit_id"`
	Name    string `json:"name"`
	Days    int    `json:"days"`
}

// LongestStreak 计算习惯的最长连续完成天数。
//
// 按时间顺序遍历 logs 中出现过的日期，跳过习惯不存在、已归档或当天不需打卡的日期；
// 未完成的应打卡日既不延续也不打断连胜，只在两次"已完成"日期相隔恰好一天时延续。
// 因此排期不连续的习惯（如一三五）最长连胜恒为 1。
func (d *Document) LongestStreak(habitID string) int {
	habit, ok := d.FindHabit(habitID)
	if !ok || habit.Archived {
		return 0
	}

	best, current := 0, 0
	prev := ""

	for _, date := range slices.Sorted(maps.Keys(d.Logs)) {
		day, err := ParseCanonicalDate(date)
		if err != nil || !IsDueOn(habit, day) {
			continue
		}
		if !d.IsDone(habitID, date) {
			continue
		}

		if diff, err := DaysBetween(prev, date); prev != "" && err == nil && diff == 1 {
			current++
		} else {
			current = 1
		}
		best = max(best, current)
		prev = date
	}

	return best
}

// BestStreakAcross 返回一组习惯中最长连胜的那个；最长为 0 时返回 false
func (d *Document) BestStreakAcross(habits []Habit) (StreakResult, bool) {
	var best StreakResult
	found := false

	for _, h := range habits {
		days := d.LongestStreak(h.ID)
		if !found || days > best.Days {
			best = StreakResult{HabitID: h.ID, Name: h.Name, Days: days}
			found = true
		}
	}

	if !found || best.Days == 0 {
		return StreakResult{}, false
	}
	return best, true
}
