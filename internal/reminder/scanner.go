package reminder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/habitlog/internal/tracker"
)

const (
	// DefaultInterval 为两次扫描之间的间隔
	DefaultInterval = 30 * time.Second
	defaultBody     = "Time to do this habit."
)

// Source 提供某日需要提醒的习惯（未归档、排期命中、设置了提醒时间）
type Source interface {
	ReminderCandidates(date string) ([]tracker.Habit, error)
}

// Notifier 负责实际发送提醒
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Reminder 为一次待发送的提醒
type Reminder struct {
	HabitID string
	Date    string
	Time    string
	Title   string
	Body    string
}

func (r Reminder) key() string {
	return fmt.Sprintf("%s:%s:%s", r.HabitID, r.Date, r.Time)
}

// LogNotifier 将提醒写入日志
type LogNotifier struct{}

// Notify 输出提醒内容
func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	log.Printf("[reminder] %s %s %s: %s", r.Date, r.Time, r.Title, r.Body)
	return nil
}

// Scanner 定时检查当前分钟是否有习惯需要提醒。
// 同一习惯在同一天同一分钟只提醒一次。
type Scanner struct {
	source   Source
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]string
}

// NewScanner 构造 Scanner，interval 非正数时使用默认值
func NewScanner(source Source, notifier Notifier, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scanner{
		source:   source,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		sent:     make(map[string]string),
	}
}

// Run 按间隔扫描，直到 ctx 结束
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[reminder] scanner started, interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[reminder] scanner stopped")
			return
		case <-ticker.C:
			if _, err := s.Scan(ctx, s.now()); err != nil {
				log.Printf("[reminder] scan failed: %v", err)
			}
		}
	}
}

// Scan 检查给定时刻需要发送的提醒并发送，返回本次发送的提醒
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]Reminder, error) {
	date := tracker.CanonicalDate(now)
	clock := now.Format("15:04")

	habits, err := s.source.ReminderCandidates(date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(date)

	var fired []Reminder
	for _, h := range habits {
		if h.ReminderTime != clock {
			continue
		}

		r := Reminder{HabitID: h.ID, Date: date, Time: clock, Title: h.Name, Body: defaultBody}
		if notes := strings.TrimSpace(h.Notes); notes != "" {
			r.Body = notes
		}
		if _, done := s.sent[r.key()]; done {
			continue
		}

		if err := s.notifier.Notify(ctx, r); err != nil {
			log.Printf("[reminder] notify %s failed: %v", h.ID, err)
			continue
		}
		s.sent[r.key()] = date
		fired = append(fired, r)
	}
	return fired, nil
}

// 丢弃早于当天的去重记录，避免长时间运行后无限增长
func (s *Scanner) pruneLocked(today string) {
	for key, date := range s.sent {
		if date < today {
			delete(s.sent, key)
		}
	}
}
