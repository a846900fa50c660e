package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/habitlog/internal/export"
	"github.com/habitlog/internal/tracker"
)

// PersistenceWarning 表示内存中的修改已生效，但写入存储失败。
// 该错误不影响后续读取，调用方只需提示用户及时导出。
type PersistenceWarning struct {
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("document kept in memory only: %v", w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// AsPersistenceWarning 判断错误是否只是持久化警告
func AsPersistenceWarning(err error) (*PersistenceWarning, bool) {
	var warning *PersistenceWarning
	if errors.As(err, &warning) {
		return warning, true
	}
	return nil, false
}

// TrackerService 持有会话内唯一的文档实例。
// 所有修改在互斥锁内同步执行，随后整份写回存储；写入失败只返回 PersistenceWarning。
type TrackerService struct {
	mu    sync.Mutex
	doc   *tracker.Document
	store DocumentStore
	now   func() time.Time
}

// Option 用于定制 TrackerService
type Option func(*TrackerService)

// WithClock 替换时间来源，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(s *TrackerService) {
		s.now = now
	}
}

// DayItem 描述某日一个应打卡习惯的状态
type DayItem struct {
	Habit tracker.Habit
	Entry tracker.LogEntry
	Done  bool
}

// NewTrackerService 从存储加载文档；不存在或内容损坏时使用示例文档。
// 加载后的文档统一规范化并立即写回。损坏的旧内容先另存备份，无法备份时不在启动时覆盖。
func NewTrackerService(ctx context.Context, store DocumentStore, opts ...Option) (*TrackerService, error) {
	s := &TrackerService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	writeBack := true
	payload, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		log.Printf("[tracker] no stored document, seeding defaults")
		s.doc = tracker.DefaultDocument(s.now())
	case err != nil:
		return nil, err
	default:
		raw, decodeErr := export.DecodeDocument(payload)
		if decodeErr != nil {
			log.Printf("[tracker] stored document unreadable, seeding defaults: %v", decodeErr)
			writeBack = backupUnreadable(ctx, store, payload)
			s.doc = tracker.DefaultDocument(s.now())
		} else {
			s.doc = tracker.Normalize(raw, s.now())
		}
	}

	if writeBack {
		if err := s.persistLocked(ctx); err != nil {
			log.Printf("[persist] initial write failed: %v", err)
		}
	}
	return s, nil
}

func backupUnreadable(ctx context.Context, store DocumentStore, payload []byte) bool {
	backuper, ok := store.(DocumentBackuper)
	if !ok {
		log.Printf("[tracker] store cannot keep a backup, leaving stored document untouched")
		return false
	}
	if err := backuper.Backup(ctx, payload); err != nil {
		log.Printf("[tracker] backup of unreadable document failed, leaving it untouched: %v", err)
		return false
	}
	log.Printf("[tracker] unreadable document backed up (%d bytes)", len(payload))
	return true
}

// Document 返回当前文档的深拷贝
func (s *TrackerService) Document() *tracker.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Meta 返回文档概况
func (s *TrackerService) Meta() tracker.DocumentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Meta()
}

// ListHabits 按条件筛选习惯
func (s *TrackerService) ListHabits(filter tracker.HabitFilter) []tracker.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.FilterHabits(filter)
}

// GetHabit 根据 ID 获取习惯
func (s *TrackerService) GetHabit(id string) (tracker.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, ok := s.doc.FindHabit(id)
	if !ok {
		return tracker.Habit{}, fmt.Errorf("%w: %s", tracker.ErrHabitNotFound, id)
	}
	return habit, nil
}

// LongestStreak 返回习惯的最长连胜
func (s *TrackerService) LongestStreak(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LongestStreak(id)
}

// CreateHabit 新建习惯
func (s *TrackerService) CreateHabit(ctx context.Context, input tracker.HabitInput) (tracker.Habit, error) {
	var habit tracker.Habit
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		var err error
		habit, err = doc.CreateHabit(input, s.now())
		return err
	})
	return habit, err
}

// UpdateHabit 更新习惯
func (s *TrackerService) UpdateHabit(ctx context.Context, id string, input tracker.HabitInput) (tracker.Habit, error) {
	var habit tracker.Habit
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		var err error
		habit, err = doc.UpdateHabit(id, input)
		return err
	})
	return habit, err
}

// ToggleArchive 归档或恢复习惯
func (s *TrackerService) ToggleArchive(ctx context.Context, id string) (tracker.Habit, error) {
	var habit tracker.Habit
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		var err error
		habit, err = doc.ArchiveHabit(id)
		return err
	})
	return habit, err
}

// SetDone 写入习惯在某日的完成状态，习惯不存在时不做任何修改
func (s *TrackerService) SetDone(ctx context.Context, habitID, date string, done bool) (tracker.LogEntry, error) {
	var entry tracker.LogEntry
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		if _, ok := doc.FindHabit(habitID); !ok {
			return fmt.Errorf("%w: %s", tracker.ErrHabitNotFound, habitID)
		}
		var err error
		entry, err = doc.SetDone(habitID, date, done, s.now())
		return err
	})
	return entry, err
}

// SetNote 替换某日打卡备注
func (s *TrackerService) SetNote(ctx context.Context, habitID, date, note string) (tracker.LogEntry, error) {
	var entry tracker.LogEntry
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		if _, ok := doc.FindHabit(habitID); !ok {
			return fmt.Errorf("%w: %s", tracker.ErrHabitNotFound, habitID)
		}
		var err error
		entry, err = doc.SetNote(habitID, date, note, s.now())
		return err
	})
	return entry, err
}

// MarkAll 将某日所有应打卡习惯设为同一状态，返回处理的习惯数
func (s *TrackerService) MarkAll(ctx context.Context, date string, done bool) (int, error) {
	var marked int
	err := s.mutate(ctx, func(doc *tracker.Document) error {
		due, err := doc.DueHabits(date)
		if err != nil {
			return err
		}
		marked, err = doc.MarkAll(due, date, done, s.now())
		return err
	})
	return marked, err
}

// DayView 返回某日应打卡习惯及其记录
func (s *TrackerService) DayView(date string) ([]DayItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, err := s.doc.DueHabits(date)
	if err != nil {
		return nil, err
	}

	items := make([]DayItem, 0, len(due))
	for _, h := range due {
		entry, _ := s.doc.Entry(h.ID, date)
		items = append(items, DayItem{Habit: h, Entry: entry, Done: entry.Done})
	}
	return items, nil
}

// Dashboard 计算选中日期与月份的统计
func (s *TrackerService) Dashboard(date string, month time.Time) (tracker.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Dashboard(date, month)
}

// HabitStats 计算单个习惯在区间内的统计
func (s *TrackerService) HabitStats(id, start, end string) (tracker.HabitStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.StatsFor(id, start, end)
}

// Heatmap 返回区间内逐日的完成情况
func (s *TrackerService) Heatmap(start, end string) ([]tracker.HeatmapDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Heatmap(start, end)
}

// ReminderCandidates 返回指定日期需要打卡且设置了提醒时间的习惯
func (s *TrackerService) ReminderCandidates(date string) ([]tracker.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, err := s.doc.DueHabits(date)
	if err != nil {
		return nil, err
	}

	habits := make([]tracker.Habit, 0, len(due))
	for _, h := range due {
		if h.ReminderTime != "" {
			habits = append(habits, h)
		}
	}
	return habits, nil
}

// Import 用导入内容整体替换文档；内容不合法时返回 ErrMalformedInput，原文档保持不变
func (s *TrackerService) Import(ctx context.Context, payload []byte) (tracker.DocumentMeta, error) {
	raw, err := export.DecodeDocument(payload)
	if err != nil {
		return tracker.DocumentMeta{}, err
	}

	var meta tracker.DocumentMeta
	err = s.mutate(ctx, func(doc *tracker.Document) error {
		*doc = *tracker.Normalize(raw, s.now())
		meta = doc.Meta()
		return nil
	})
	return meta, err
}

func (s *TrackerService) mutate(ctx context.Context, apply func(doc *tracker.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apply(s.doc); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

func (s *TrackerService) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(s.doc)
	if err != nil {
		return &PersistenceWarning{Err: err}
	}

	if err := s.store.Save(ctx, s.doc.Version, payload); err != nil {
		log.Printf("[persist] failed to save document: %v", err)
		return &PersistenceWarning{Err: err}
	}
	return nil
}
