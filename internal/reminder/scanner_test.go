package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habitlog/internal/tracker"
)

type stubSource struct {
	habits []tracker.Habit
	err    error
	dates  []string
}

func (s *stubSource) ReminderCandidates(date string) ([]tracker.Habit, error) {
	s.dates = append(s.dates, date)
	return s.habits, s.err
}

type recordingNotifier struct {
	sent []Reminder
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, r)
	return nil
}

func TestScanFiresOncePerMinute(t *testing.T) {
	source := &stubSource{habits: []tracker.Habit{
		{ID: "gym", Name: "Workout", ReminderTime: "19:30", Notes: "Strength or cardio."},
		{ID: "read", Name: "Read", ReminderTime: "21:00"},
	}}
	notifier := &recordingNotifier{}
	scanner := NewScanner(source, notifier, time.Minute)

	at := time.Date(2024, 1, 3, 19, 30, 5, 0, time.Local)
	fired, err := scanner.Scan(context.Background(), at)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(fired) != 1 || fired[0].HabitID != "gym" || fired[0].Body != "Strength or cardio." {
		t.Fatalf("unexpected reminders: %+v", fired)
	}
	if source.dates[0] != "2024-01-03" {
		t.Fatalf("expected canonical date lookup, got %s", source.dates[0])
	}

	// 同一分钟内再次扫描不重复提醒
	fired, err = scanner.Scan(context.Background(), at.Add(25*time.Second))
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(fired) != 0 {
		t.Fatalf("expected no duplicate reminder, got %+v", fired)
	}

	// 次日同一时间再次提醒
	fired, _ = scanner.Scan(context.Background(), at.AddDate(0, 0, 1))
	if len(fired) != 1 {
		t.Fatalf("expected reminder on next day, got %+v", fired)
	}
	if len(scanner.sent) != 1 {
		t.Fatalf("expected previous day keys to be pruned, got %v", scanner.sent)
	}
}

func TestScanDefaultBodyAndErrors(t *testing.T) {
	source := &stubSource{habits: []tracker.Habit{{ID: "read", Name: "Read", ReminderTime: "21:00"}}}
	notifier := &recordingNotifier{err: errors.New("offline")}
	scanner := NewScanner(source, notifier, 0)

	if scanner.interval != DefaultInterval {
		t.Fatalf("expected default interval, got %s", scanner.interval)
	}

	at := time.Date(2024, 1, 3, 21, 0, 0, 0, time.Local)
	fired, err := scanner.Scan(context.Background(), at)
	if err != nil || len(fired) != 0 {
		t.Fatalf("expected failed notify to be skipped, got %+v, %v", fired, err)
	}

	notifier.err = nil
	fired, _ = scanner.Scan(context.Background(), at)
	if len(fired) != 1 || fired[0].Body != defaultBody {
		t.Fatalf("expected retry with default body, got %+v", fired)
	}

	source.err = errors.New("boom")
	if _, err := scanner.Scan(context.Background(), at); err == nil {
		t.Fatal("expected source error to propagate")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	scanner := NewScanner(&stubSource{}, &recordingNotifier{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		scanner.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop after cancel")
	}
}
