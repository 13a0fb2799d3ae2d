package timer

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) urgentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urgent)
}

// countingAlarm counts rings.
type countingAlarm struct{ n atomic.Int32 }

func (a *countingAlarm) Ring(context.Context) error {
	a.n.Add(1)
	return nil
}

// brewSession builds a strong 500ml session with one timer.
func brewSession(id string, ts *domain.TimerState) *domain.Session {
	out := brew.Compute(domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true})
	return &domain.Session{
		ID:          id,
		Input:       domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true},
		Output:      out,
		Stages:      brew.Stages(out, brew.DefaultWaits()),
		Status:      domain.SessionActive,
		StageStates: map[int]*domain.StageState{0: {Status: domain.StageActive, StartedAt: time.Now()}},
		TimerStates: map[string]*domain.TimerState{ts.ID: ts},
		StartedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestSupervisorFiresTimer(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	notifier := &mockNotifier{}
	alarm := &countingAlarm{}
	ctx := context.Background()

	session := brewSession("timer-test", &domain.TimerState{
		ID:        "t1",
		StageID:   "stage-1",
		Label:     "bloom",
		Duration:  2 * time.Second,
		Remaining: 100 * time.Millisecond,
		Status:    domain.TimerRunning,
	})
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup := New(store, notifier, log,
		WithTickInterval(50*time.Millisecond),
		WithNotifyCooldown(100*time.Millisecond),
		WithAlarm(alarm))
	sup.Start(ctx)
	defer sup.Stop()

	time.Sleep(300 * time.Millisecond)

	if notifier.urgentCount() == 0 {
		t.Fatal("expected at least one urgent notification for fired timer")
	}
	if alarm.n.Load() != 1 {
		t.Fatalf("expected alarm to ring once, rang %d times", alarm.n.Load())
	}

	s, err := store.Load(ctx, "timer-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ts := s.TimerStates["t1"]; ts.Status != domain.TimerFired {
		t.Fatalf("expected timer status Fired, got %s", ts.Status)
	}
}

func TestAdvanceTimersFireMessageNamesNextPour(t *testing.T) {
	sup := New(nil, &mockNotifier{}, logger.Discard(), WithTickInterval(time.Second))
	session := brewSession("s", &domain.TimerState{
		ID: "t1", Label: "bloom", Duration: 45 * time.Second, Remaining: time.Second, Status: domain.TimerRunning,
	})

	alerts := sup.advanceTimers(session, time.Now())
	if len(alerts) != 1 || !alerts[0].urgent || !alerts[0].ring {
		t.Fatalf("expected one urgent ringing alert, got %+v", alerts)
	}
	if !strings.Contains(alerts[0].msg, "First Pour to 300g") {
		t.Fatalf("fire message missing next pour: %q", alerts[0].msg)
	}
}

func TestAdvanceTimersAlmostDoneOnce(t *testing.T) {
	sup := New(nil, &mockNotifier{}, logger.Discard(),
		WithTickInterval(time.Second), WithAlmostDoneThreshold(10*time.Second))
	ts := &domain.TimerState{
		ID: "t1", Label: "bloom", Duration: 45 * time.Second, Remaining: 11 * time.Second, Status: domain.TimerRunning,
	}
	session := brewSession("s", ts)
	now := time.Now()

	alerts := sup.advanceTimers(session, now)
	if len(alerts) != 1 || alerts[0].urgent {
		t.Fatalf("expected one plain warning, got %+v", alerts)
	}
	if !strings.Contains(alerts[0].msg, "almost done, 10 seconds left") {
		t.Fatalf("unexpected warning: %q", alerts[0].msg)
	}

	if again := sup.advanceTimers(session, now.Add(time.Second)); len(again) != 0 {
		t.Fatalf("warning repeated: %+v", again)
	}
}

func TestAdvanceTimersSkipsShortWaitWarning(t *testing.T) {
	sup := New(nil, &mockNotifier{}, logger.Discard(),
		WithTickInterval(time.Second), WithAlmostDoneThreshold(10*time.Second))
	session := brewSession("s", &domain.TimerState{
		ID: "t1", Label: "drawdown", Duration: 15 * time.Second, Remaining: 9 * time.Second, Status: domain.TimerRunning,
	})

	if alerts := sup.advanceTimers(session, time.Now()); len(alerts) != 0 {
		t.Fatalf("expected no warning for a short wait, got %+v", alerts)
	}
}

func TestAdvanceTimersRespectsMaxEscalation(t *testing.T) {
	sup := New(nil, &mockNotifier{}, logger.Discard(),
		WithNotifyCooldown(time.Second), WithMaxEscalation(2))
	ts := &domain.TimerState{
		ID: "t1", Label: "bloom", Status: domain.TimerFired, EscalationLevel: 1,
	}
	session := brewSession("s", ts)
	now := time.Now()

	total := 0
	for i := 0; i < 6; i++ {
		total += len(sup.advanceTimers(session, now.Add(time.Duration(i)*2*time.Second)))
	}
	// Levels 1 and 2 notify, then it stops.
	if total != 2 {
		t.Fatalf("expected 2 escalations, got %d", total)
	}
	if ts.EscalationLevel != 3 {
		t.Fatalf("expected escalation level 3, got %d", ts.EscalationLevel)
	}
}

func TestAdvanceTimersCooldown(t *testing.T) {
	sup := New(nil, &mockNotifier{}, logger.Discard(), WithNotifyCooldown(time.Minute))
	now := time.Now()
	session := brewSession("s", &domain.TimerState{
		ID: "t1", Label: "bloom", Status: domain.TimerFired, EscalationLevel: 1, LastNotified: now,
	})

	if alerts := sup.advanceTimers(session, now.Add(10*time.Second)); len(alerts) != 0 {
		t.Fatalf("expected cooldown to hold, got %+v", alerts)
	}
	if alerts := sup.advanceTimers(session, now.Add(2*time.Minute)); len(alerts) != 1 {
		t.Fatalf("expected one escalation after cooldown, got %+v", alerts)
	}
}

func TestSupervisorIgnoresPausedSession(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	ctx := context.Background()

	session := brewSession("paused", &domain.TimerState{
		ID: "t1", Label: "bloom", Duration: time.Second, Remaining: time.Second, Status: domain.TimerPaused,
	})
	session.Status = domain.SessionPaused
	_ = store.Save(ctx, session)

	sup := New(store, &mockNotifier{}, log, WithTickInterval(time.Second))
	sup.tick(ctx)

	s, _ := store.Load(ctx, "paused")
	if s.TimerStates["t1"].Remaining != time.Second {
		t.Fatalf("paused timer moved: %s", s.TimerStates["t1"].Remaining)
	}
}

func TestSupervisorStartStopIdempotent(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	sup := New(storage.NewMemoryStore(log), &mockNotifier{}, log, WithTickInterval(10*time.Millisecond))
	ctx := context.Background()

	sup.Start(ctx)
	sup.Start(ctx)
	sup.Stop()
	sup.Stop()
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Second, "1 second"},
		{30 * time.Second, "30 seconds"},
		{80 * time.Second, "1 minute"},
		{150 * time.Second, "3 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatRemaining(tt.in); got != tt.want {
				t.Fatalf("formatRemaining(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
