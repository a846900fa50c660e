package tracker

import (
	"encoding/json"
	"maps"
	"slices"
)

// DocumentVersion 当前文档结构版本
const DocumentVersion = 1

// AllWeekdays 是未设置计划时的默认排期：周一到周日
var AllWeekdays = []int{1, 2, 3, 4, 5, 6, 7}

// Habit 定义了可追踪的周期性习惯
// Schedule 为 ISO 星期编号集合，允许为空（表示从不需要打卡），与"未设置"不同
// Target 目前只作为展示提示，不与打卡数值比较
// Archived 为软删除标记，归档后历史日志仍然保留
// Extra 保存导入时无法识别的字段，序列化时原样写回
type Habit struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Target       int    `json:"target"`
	Schedule     []int  `json:"schedule"`
	ReminderTime string `json:"reminderTime"`
	Notes        string `json:"notes"`
	Archived     bool   `json:"archived"`
	CreatedAt    int64  `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// LogEntry 记录某个习惯在某一天的完成情况
// Value 约定完成为 1，否则为 0，预留给未来的部分完成
// At 为最后一次写入的毫秒时间戳
// 导入时缺失的已知字段记录在 omitted 中，序列化时不补写；Extra 同 Habit
type LogEntry struct {
	Done  bool    `json:"done"`
	Value float64 `json:"value"`
	Note  string  `json:"note"`
	At    int64   `json:"at"`

	Extra   map[string]json.RawMessage `json:"-"`
	omitted []string
}

// DayLog 为单个日历日内 习惯ID -> 打卡记录 的映射
type DayLog map[string]LogEntry

// Document 是整体持久化单元
// Logs 的键始终是规范日期字符串，字典序与时间顺序一致
type Document struct {
	Version int               `json:"version"`
	Habits  []Habit           `json:"habits"`
	Logs    map[string]DayLog `json:"logs"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON 在已知字段之外写回未识别字段
func (h Habit) MarshalJSON() ([]byte, error) {
	type plain Habit
	return marshalWithExtra(plain(h), h.Extra, nil)
}

// MarshalJSON 在已知字段之外写回未识别字段
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return marshalWithExtra(plain(d), d.Extra, nil)
}

// MarshalJSON 只写出记录实际拥有的字段，并写回未识别字段
func (e LogEntry) MarshalJSON() ([]byte, error) {
	type plain LogEntry
	return marshalWithExtra(plain(e), e.Extra, e.omitted)
}

// UnmarshalJSON 解析已知字段，记录缺失的字段，并把其余字段收集到 Extra
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	type plain LogEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, logEntryFields)
	if err != nil {
		return err
	}
	omitted, err := missingFields(data, logEntryFields)
	if err != nil {
		return err
	}

	*e = LogEntry(p)
	e.Extra = extra
	e.omitted = omitted
	return nil
}

func (e LogEntry) clone() LogEntry {
	e.Extra = maps.Clone(e.Extra)
	e.omitted = slices.Clone(e.omitted)
	return e
}

// FindHabit 根据 ID 查找习惯
func (d *Document) FindHabit(id string) (Habit, bool) {
	idx := d.habitIndex(id)
	if idx < 0 {
		return Habit{}, false
	}
	return d.Habits[idx], true
}

func (d *Document) habitIndex(id string) int {
	return slices.IndexFunc(d.Habits, func(h Habit) bool { return h.ID == id })
}

// Clone 返回文档的深拷贝，供会话外的读取方安全使用
func (d *Document) Clone() *Document {
	clone := &Document{
		Version: d.Version,
		Habits:  make([]Habit, 0, len(d.Habits)),
		Logs:    cloneLogs(d.Logs),
		Extra:   maps.Clone(d.Extra),
	}
	for _, h := range d.Habits {
		clone.Habits = append(clone.Habits, h.clone())
	}
	return clone
}

// Raw 将规范文档还原为输入形态，所有字段均视为"已提供"
func (d *Document) Raw() *RawDocument {
	version := d.Version
	raw := &RawDocument{
		Version: &version,
		Habits:  make([]RawHabit, 0, len(d.Habits)),
		Logs:    cloneLogs(d.Logs),
		Extra:   maps.Clone(d.Extra),
	}
	for _, h := range d.Habits {
		raw.Habits = append(raw.Habits, h.raw())
	}
	return raw
}

func (h Habit) clone() Habit {
	h.Schedule = slices.Clone(h.Schedule)
	if h.Schedule == nil {
		h.Schedule = []int{}
	}
	h.Extra = maps.Clone(h.Extra)
	return h
}

func (h Habit) raw() RawHabit {
	c := h.clone()
	return RawHabit{
		ID:           c.ID,
		Name:         c.Name,
		Icon:         c.Icon,
		Color:        c.Color,
		Target:       &c.Target,
		Schedule:     &c.Schedule,
		ReminderTime: &c.ReminderTime,
		Notes:        &c.Notes,
		Archived:     &c.Archived,
		CreatedAt:    &c.CreatedAt,
		Extra:        c.Extra,
	}
}

func cloneLogs(logs map[string]DayLog) map[string]DayLog {
	out := make(map[string]DayLog, len(logs))
	for date, day := range logs {
		copied := make(DayLog, len(day))
		for habitID, entry := range day {
			copied[habitID] = entry.clone()
		}
		out[date] = copied
	}
	return out
}

func marshalWithExtra(known any, extra map[string]json.RawMessage, omit []string) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || (len(extra) == 0 && len(omit) == 0) {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, key := range omit {
		delete(fields, key)
	}

	merged := make(map[string]json.RawMessage, len(extra)+len(fields))
	maps.Copy(merged, extra)
	maps.Copy(merged, fields)
	return json.Marshal(merged)
}
