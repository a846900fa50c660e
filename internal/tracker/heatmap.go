package tracker

import "fmt"

// maxHeatmapDays 限制单次热力图查询的跨度
const maxHeatmapDays = 366

// HeatmapDay 表示热力图中的单日完成情况
type HeatmapDay struct {
	Date      string `json:"date"`
	Due       int    `json:"due"`
	Completed int    `json:"completed"`
}

// Heatmap 逐日统计 [start, end] 内未归档习惯的应打卡数与完成数
func (d *Document) Heatmap(start, end string) ([]HeatmapDay, error) {
	span, err := DaysBetween(start, end)
	if err != nil {
		return nil, err
	}
	if span < 0 {
		return nil, fmt.Errorf("%w: invalid range: end before start", ErrValidation)
	}
	if span >= maxHeatmapDays {
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrValidation, maxHeatmapDays)
	}

	dates, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}

	days := make([]HeatmapDay, 0, span+1)
	for date := range dates {
		due, err := d.DueHabits(date)
		if err != nil {
			return nil, err
		}
		day := HeatmapDay{Date: date, Due: len(due)}
		for _, h := range due {
			if d.IsDone(h.ID, date) {
				day.Completed++
			}
		}
		days = append(days, day)
	}
	return days, nil
}
