package timer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// collectingNotifier captures messages for assertions.
type collectingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *collectingNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *collectingNotifier) NotifyUrgent(_ context.Context, msg string) error {
	return n.Notify(context.Background(), msg)
}

func (n *collectingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *collectingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func TestWatcherMessages(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		setup func(s *domain.Session)
		want  string
	}{
		{
			name: "paused",
			setup: func(s *domain.Session) {
				s.Status = domain.SessionPaused
				s.UpdatedAt = now.Add(-90 * time.Second)
			},
			want: "Brew paused for 1m30s",
		},
		{
			name: "fired timer",
			setup: func(s *domain.Session) {
				s.TimerStates["t1"].Status = domain.TimerFired
			},
			want: "bloom fired and waiting on you",
		},
		{
			name: "fired timer past escalation cap is quiet",
			setup: func(s *domain.Session) {
				s.TimerStates["t1"].Status = domain.TimerFired
				s.TimerStates["t1"].EscalationLevel = 4
			},
			want: "",
		},
		{
			name: "fired timer at escalation cap still nudges",
			setup: func(s *domain.Session) {
				s.TimerStates["t1"].Status = domain.TimerFired
				s.TimerStates["t1"].EscalationLevel = 3
			},
			want: "bloom fired and waiting on you",
		},
		{
			name: "idle stage",
			setup: func(s *domain.Session) {
				s.TimerStates["t1"].Status = domain.TimerPending
				s.StageStates[0].StartedAt = now.Add(-3 * time.Minute)
			},
			want: "Still on bloom for 3m0s",
		},
		{
			name: "running timer is quiet",
			setup: func(s *domain.Session) {
				s.StageStates[0].StartedAt = now.Add(-3 * time.Minute)
			},
			want: "",
		},
		{
			name: "fresh stage is quiet",
			setup: func(s *domain.Session) {
				s.TimerStates["t1"].Status = domain.TimerDismissed
			},
			want: "",
		},
	}

	w := NewWatcher(nil, &collectingNotifier{}, logger.Discard(), WithIdleAfter(2*time.Minute), WithWatchEscalation(3))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := brewSession("w", &domain.TimerState{
				ID: "t1", Label: "bloom", Duration: 45 * time.Second, Remaining: 20 * time.Second, Status: domain.TimerRunning,
			})
			s.StageStates[0].StartedAt = now
			tt.setup(s)

			got := w.buildMessage(s, now)
			if tt.want == "" {
				if got != "" {
					t.Fatalf("expected no message, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("expected message containing %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWatcherRunNotifies(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	notifier := &collectingNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := brewSession("watcher-paused", &domain.TimerState{
		ID: "t1", Label: "bloom", Status: domain.TimerPaused,
	})
	s.Status = domain.SessionPaused
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	w := NewWatcher(store, notifier, log, WithWatchInterval(20*time.Millisecond))
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	cancel()

	if notifier.count() == 0 {
		t.Fatal("expected watcher to nudge about the paused brew")
	}
	if !strings.Contains(notifier.last(), "paused") {
		t.Fatalf("unexpected nudge: %q", notifier.last())
	}
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"bloom"}, "bloom"},
		{[]string{"bloom", "drawdown"}, "bloom and drawdown"},
		{[]string{"a", "b", "c"}, "a, b and c"},
	}
	for _, tt := range tests {
		if got := joinNames(tt.in); got != tt.want {
			t.Fatalf("joinNames(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
