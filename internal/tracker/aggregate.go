package tracker

import "math"

// Completion 汇总区间内应打卡次数与完成次数
type Completion struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent 返回四舍五入后的完成率百分比，Total 为 0 时返回 0
func (c Completion) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
}

// Aggregate 统计 [start, end] 闭区间内，给定习惯按排期应打卡的次数及其中完成的次数。
// 传入的习惯集合由调用方决定，显式传入的已归档习惯同样按排期计入。
func (d *Document) Aggregate(habits []Habit, start, end string) (Completion, error) {
	var result Completion

	dates, err := DateRange(start, end)
	if err != nil {
		return result, err
	}

	for date := range dates {
		day, err := ParseCanonicalDate(date)
		if err != nil {
			return result, err
		}
		for _, h := range habits {
			if !IsDueOn(h, day) {
				continue
			}
			result.Total++
			if d.IsDone(h.ID, date) {
				result.Completed++
			}
		}
	}

	return result, nil
}
