package tracker

import (
	"fmt"
	"iter"
	"time"
)

// DateLayout 是日志键使用的规范日期格式（本地日历日，无时区）
const DateLayout = "2006-01-02"

// CanonicalDate 将时间点转换为 YYYY-MM-DD。
// 使用 t 自身所在时区的日历日，调用方应传入本地时间，避免跨零点时按 UTC 错位一天。
func CanonicalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCanonicalDate 将规范日期解析为本地零点时间
func ParseCanonicalDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
	}
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
	}
	return t, nil
}

// IsCanonicalDate 判断字符串是否为合法的规范日期
func IsCanonicalDate(value string) bool {
	_, err := ParseCanonicalDate(value)
	return err == nil
}

// ISOWeekday 返回 ISO 星期编号：周一=1 ... 周日=7
func ISOWeekday(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

// DaysBetween 返回 b 与 a 之间的整天差值（b - a）。
// 只比较日历日，换算到 UTC 零点后相减，不受夏令时影响。
func DaysBetween(a, b string) (int, error) {
	da, err := utcDate(a)
	if err != nil {
		return 0, err
	}
	db, err := utcDate(b)
	if err != nil {
		return 0, err
	}
	return int(db.Sub(da).Hours() / 24), nil
}

// DateRange 按日历日逐天产出 [start, end] 闭区间内的规范日期。
// 返回的序列是惰性的，可以重复遍历；end 早于 start 时为空序列。
func DateRange(start, end string) (iter.Seq[string], error) {
	from, err := utcDate(start)
	if err != nil {
		return nil, err
	}
	to, err := utcDate(end)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !yield(d.Format(DateLayout)) {
				return
			}
		}
	}, nil
}

// MonthBounds 返回 t 所在月份的首日与末日
func MonthBounds(t time.Time) (string, string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return CanonicalDate(first), CanonicalDate(last)
}

func utcDate(value string) (time.Time, error) {
	local, err := ParseCanonicalDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}
