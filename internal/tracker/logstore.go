package tracker

import (
	"fmt"
	"time"
)

// Day 返回指定日期的打卡记录；不存在时返回空记录，读取不会修改文档
func (d *Document) Day(date string) DayLog {
	if day, ok := d.Logs[date]; ok && day != nil {
		return day
	}
	return DayLog{}
}

// EnsureDay 返回指定日期的打卡记录，不存在时先创建并写入文档。仅供写操作使用。
func (d *Document) EnsureDay(date string) (DayLog, error) {
	if !IsCanonicalDate(date) {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	if d.Logs == nil {
		d.Logs = make(map[string]DayLog)
	}

	day, ok := d.Logs[date]
	if !ok || day == nil {
		day = DayLog{}
		d.Logs[date] = day
	}
	return day, nil
}

// Entry 返回习惯在指定日期的打卡记录
func (d *Document) Entry(habitID, date string) (LogEntry, bool) {
	entry, ok := d.Logs[date][habitID]
	return entry, ok
}

// IsDone 返回习惯在指定日期是否已完成；日期或记录缺失都视为未完成
func (d *Document) IsDone(habitID, date string) bool {
	entry, ok := d.Entry(habitID, date)
	return ok && entry.Done
}

// SetDone 创建或覆盖打卡记录：保留已有备注和未识别字段，Value 随 done 取 1/0，At 更新为当前时间。
// 以相同的 done 重复调用只会推进 At。
func (d *Document) SetDone(habitID, date string, done bool, now time.Time) (LogEntry, error) {
	day, err := d.EnsureDay(date)
	if err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Done:  done,
		Value: doneValue(done),
		Note:  day[habitID].Note,
		At:    now.UnixMilli(),
		Extra: day[habitID].Extra,
	}
	day[habitID] = entry
	return entry, nil
}

// SetNote 显式替换打卡备注，done/value 保持不变
func (d *Document) SetNote(habitID, date, note string, now time.Time) (LogEntry, error) {
	day, err := d.EnsureDay(date)
	if err != nil {
		return LogEntry{}, err
	}

	entry := day[habitID]
	entry.Value = doneValue(entry.Done)
	entry.Note = note
	entry.At = now.UnixMilli()
	entry.omitted = nil
	day[habitID] = entry
	return entry, nil
}

// MarkAll 对一组习惯批量设置同一完成状态。
// 非原子：中途失败时，之前已写入的习惯保持更新。
func (d *Document) MarkAll(habits []Habit, date string, done bool, now time.Time) (int, error) {
	marked := 0
	for _, h := range habits {
		if _, err := d.SetDone(h.ID, date, done, now); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

func doneValue(done bool) float64 {
	if done {
		return 1
	}
	return 0
}
