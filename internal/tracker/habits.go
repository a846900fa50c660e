package tracker

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHabitColor = "#5b8cff"
	maxHabitTarget    = 9999
)

// HabitInput 定义创建/更新习惯时可配置的字段
// Schedule 为空时回退为每天，与表单勾选语义一致
type HabitInput struct {
	Name         string
	Icon         string
	Color        string
	Target       int
	Schedule     []int
	ReminderTime string
	Notes        string
}

// HabitFilter 描述习惯列表的筛选条件
// Status 支持 all/active/archived，Query 对名称与备注做不区分大小写的包含匹配
type HabitFilter struct {
	Status string
	Query  string
}

// DocumentMeta 汇总文档概况
type DocumentMeta struct {
	Version  int `json:"version"`
	Active   int `json:"active"`
	Archived int `json:"archived"`
	LogDays  int `json:"log_days"`
}

// CreateHabit 校验输入并追加新习惯
func (d *Document) CreateHabit(input HabitInput, now time.Time) (Habit, error) {
	fields, err := buildHabitFields(input)
	if err != nil {
		return Habit{}, err
	}

	fields.ID = uuid.NewString()
	fields.CreatedAt = now.UnixMilli()
	d.Habits = append(d.Habits, fields)
	return fields.clone(), nil
}

// UpdateHabit 替换习惯的可编辑字段，ID、归档状态、创建时间与未识别字段保持不变
func (d *Document) UpdateHabit(id string, input HabitInput) (Habit, error) {
	fields, err := buildHabitFields(input)
	if err != nil {
		return Habit{}, err
	}

	idx := d.habitIndex(id)
	if idx < 0 {
		return Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}

	existing := d.Habits[idx]
	fields.ID = existing.ID
	fields.Archived = existing.Archived
	fields.CreatedAt = existing.CreatedAt
	fields.Extra = existing.Extra
	d.Habits[idx] = fields
	return fields.clone(), nil
}

// ArchiveHabit 切换归档状态（归档 <-> 恢复），从不物理删除
func (d *Document) ArchiveHabit(id string) (Habit, error) {
	idx := d.habitIndex(id)
	if idx < 0 {
		return Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}

	d.Habits[idx].Archived = !d.Habits[idx].Archived
	return d.Habits[idx].clone(), nil
}

// FilterHabits 按状态与关键字筛选习惯
func (d *Document) FilterHabits(filter HabitFilter) []Habit {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	habits := make([]Habit, 0, len(d.Habits))
	for _, h := range d.Habits {
		switch status {
		case "active":
			if h.Archived {
				continue
			}
		case "archived":
			if !h.Archived {
				continue
			}
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(h.Name), query) &&
			!strings.Contains(strings.ToLower(h.Notes), query) {
			continue
		}
		habits = append(habits, h.clone())
	}
	return habits
}

// Meta 返回活跃/归档习惯数与有日志的天数
func (d *Document) Meta() DocumentMeta {
	meta := DocumentMeta{Version: d.Version, LogDays: len(d.Logs)}
	for _, h := range d.Habits {
		if h.Archived {
			meta.Archived++
		} else {
			meta.Active++
		}
	}
	return meta
}

func buildHabitFields(input HabitInput) (Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Habit{}, fmt.Errorf("%w: habit name is required", ErrValidation)
	}

	reminder := strings.TrimSpace(input.ReminderTime)
	if reminder != "" && !isClockTime(reminder) {
		return Habit{}, fmt.Errorf("%w: reminder time must be HH:MM, got %q", ErrValidation, input.ReminderTime)
	}

	schedule, err := normalizeSchedule(input.Schedule)
	if err != nil {
		return Habit{}, err
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultHabitColor
	}

	return Habit{
		Name:         name,
		Icon:         strings.TrimSpace(input.Icon),
		Color:        color,
		Target:       min(max(input.Target, 1), maxHabitTarget),
		Schedule:     schedule,
		ReminderTime: reminder,
		Notes:        strings.TrimSpace(input.Notes),
	}, nil
}

func normalizeSchedule(days []int) ([]int, error) {
	if len(days) == 0 {
		return slices.Clone(AllWeekdays), nil
	}

	schedule := make([]int, 0, len(days))
	for _, day := range days {
		if day < 1 || day > 7 {
			return nil, fmt.Errorf("%w: weekday %d out of range 1..7", ErrValidation, day)
		}
		schedule = append(schedule, day)
	}
	slices.Sort(schedule)
	return slices.Compact(schedule), nil
}

func isClockTime(value string) bool {
	t, err := time.Parse("15:04", value)
	return err == nil && t.Format("15:04") == value
}
