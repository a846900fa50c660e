package tracker

import (
	"bytes"
	"encoding/json"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RawDocument 是反序列化得到、尚未修复的文档
// 指针字段区分"缺失/null"与"显式提供"，例如显式的空 schedule 不会被默认值覆盖
type RawDocument struct {
	Version *int              `json:"version"`
	Habits  []RawHabit        `json:"habits"`
	Logs    map[string]DayLog `json:"logs"`

	Extra map[string]json.RawMessage `json:"-"`
}

// RawHabit 是未经修复的习惯
type RawHabit struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Color        string  `json:"color"`
	Target       *int    `json:"target"`
	Schedule     *[]int  `json:"schedule"`
	ReminderTime *string `json:"reminderTime"`
	Notes        *string `json:"notes"`
	Archived     *bool   `json:"archived"`
	CreatedAt    *int64  `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	documentFields = []string{"version", "habits", "logs"}
	habitFields    = []string{"id", "name", "icon", "color", "target", "schedule", "reminderTime", "notes", "archived", "createdAt"}
	logEntryFields = []string{"done", "value", "note", "at"}
)

// UnmarshalJSON 解析已知字段，并把其余字段收集到 Extra
func (d *RawDocument) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	type plain RawDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, documentFields)
	if err != nil {
		return err
	}

	*d = RawDocument(p)
	d.Extra = extra
	return nil
}

// UnmarshalJSON 解析已知字段，并把其余字段收集到 Extra
func (h *RawHabit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	type plain RawHabit
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, habitFields)
	if err != nil {
		return err
	}

	*h = RawHabit(p)
	h.Extra = extra
	return nil
}

// MarshalJSON 保持与 Document 相同的输出形态
func (d RawDocument) MarshalJSON() ([]byte, error) {
	type plain RawDocument
	return marshalWithExtra(plain(d), d.Extra, nil)
}

// MarshalJSON 保持与 Habit 相同的输出形态
func (h RawHabit) MarshalJSON() ([]byte, error) {
	type plain RawHabit
	return marshalWithExtra(plain(h), h.Extra, nil)
}

// Normalize 将任意来源的文档修复为规范形态：
// 只在字段缺失或为 null 时补默认值，从不覆盖已有值；未识别字段原样保留。
// 缺失或重复的习惯 ID 会被重新分配，非规范日期的日志键会被丢弃。
// 对已规范化的文档再次调用不会产生任何变化。
func Normalize(raw *RawDocument, now time.Time) *Document {
	if raw == nil {
		raw = &RawDocument{}
	}

	doc := &Document{
		Version: DocumentVersion,
		Habits:  make([]Habit, 0, len(raw.Habits)),
		Logs:    make(map[string]DayLog, len(raw.Logs)),
		Extra:   raw.Extra,
	}
	if raw.Version != nil {
		doc.Version = *raw.Version
	}

	seen := make(map[string]struct{}, len(raw.Habits))
	for _, rh := range raw.Habits {
		habit := normalizeHabit(rh, now)
		if _, dup := seen[habit.ID]; dup || habit.ID == "" {
			reassigned := uuid.NewString()
			log.Printf("[tracker] habit %q has missing or duplicate id %q, assigned %s", habit.Name, habit.ID, reassigned)
			habit.ID = reassigned
		}
		seen[habit.ID] = struct{}{}
		doc.Habits = append(doc.Habits, habit)
	}

	for date, day := range raw.Logs {
		if !IsCanonicalDate(date) {
			log.Printf("[tracker] dropping log day with invalid key %q", date)
			continue
		}
		if day == nil {
			day = DayLog{}
		}
		doc.Logs[date] = day
	}

	return doc
}

func normalizeHabit(rh RawHabit, now time.Time) Habit {
	habit := Habit{
		ID:        rh.ID,
		Name:      rh.Name,
		Icon:      rh.Icon,
		Color:     rh.Color,
		Target:    1,
		Schedule:  slices.Clone(AllWeekdays),
		CreatedAt: now.UnixMilli(),
		Extra:     rh.Extra,
	}

	if rh.Target != nil {
		habit.Target = *rh.Target
	}
	if rh.Schedule != nil {
		habit.Schedule = slices.Clone(*rh.Schedule)
		if habit.Schedule == nil {
			habit.Schedule = []int{}
		}
	}
	if rh.ReminderTime != nil {
		habit.ReminderTime = *rh.ReminderTime
	}
	if rh.Notes != nil {
		habit.Notes = *rh.Notes
	}
	if rh.Archived != nil {
		habit.Archived = *rh.Archived
	}
	if rh.CreatedAt != nil {
		habit.CreatedAt = *rh.CreatedAt
	}

	return habit
}

func unknownFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}

	// 压缩空白，保证再次序列化后内容一致
	for key, value := range all {
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return nil, err
		}
		all[key] = json.RawMessage(buf.Bytes())
	}
	return all, nil
}

func missingFields(data []byte, known []string) ([]string, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range known {
		if _, ok := all[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}
