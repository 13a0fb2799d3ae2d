// Package timer implements the background supervisor that counts down
// stage waits and alerts the brewer when they expire.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks timers.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNotifyCooldown sets the minimum time between repeated notifications.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.notifyCooldown = d
	}
}

// WithMaxEscalation sets the escalation level after which the supervisor stops nagging.
func WithMaxEscalation(level int) Option {
	return func(s *Supervisor) {
		s.maxEscalation = level
	}
}

// WithAlmostDoneThreshold sets how close to expiry a timer must be to
// trigger the "almost done" warning.
func WithAlmostDoneThreshold(d time.Duration) Option {
	return func(s *Supervisor) {
		s.almostDoneThreshold = d
	}
}

// WithAlarm rings alarm whenever a timer fires.
func WithAlarm(alarm domain.Alarm) Option {
	return func(s *Supervisor) {
		s.alarm = alarm
	}
}

// WithWatcher enables the session watcher alongside the supervisor.
func WithWatcher(opts ...WatcherOption) Option {
	return func(s *Supervisor) {
		s.watch = true
		s.watcherOpts = opts
	}
}

// Supervisor runs in the background and manages timer countdown and
// notifications. Optionally runs a Watcher on a slower cycle.
type Supervisor struct {
	store               domain.SessionStore
	notifier            domain.Notifier
	alarm               domain.Alarm
	log                 *logger.Logger
	tickInterval        time.Duration
	notifyCooldown      time.Duration
	maxEscalation       int
	almostDoneThreshold time.Duration

	watch       bool
	watcherOpts []WatcherOption
	watcher     *Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a timer supervisor with the given dependencies and options.
func New(store domain.SessionStore, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:               store,
		notifier:            notifier,
		log:                 log,
		tickInterval:        1 * time.Second,
		notifyCooldown:      15 * time.Second,
		maxEscalation:       3,
		almostDoneThreshold: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background supervisor loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)

	if s.watch {
		opts := append([]WatcherOption{WithWatchEscalation(s.maxEscalation)}, s.watcherOpts...)
		s.watcher = NewWatcher(s.store, s.notifier, s.log, opts...)
		go s.watcher.Run(childCtx)
	}

	s.log.Info("timer supervisor started (tick=%s, cooldown=%s)", s.tickInterval, s.notifyCooldown)
}

// Stop shuts down the supervisor.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("timer supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle: decrement timers, fire notifications.
func (s *Supervisor) tick(ctx context.Context) {
	sessions, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("listing active sessions: %v", err)
		return
	}

	for _, session := range sessions {
		if session.Status != domain.SessionActive {
			continue
		}
		s.processSession(ctx, session.ID)
	}
}

// alert is a notification decided under the store lock and delivered after.
type alert struct {
	msg    string
	urgent bool
	ring   bool
}

// processSession updates timers for one session and then delivers alerts.
func (s *Supervisor) processSession(ctx context.Context, sessionID string) {
	var alerts []alert
	_, err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		alerts = alerts[:0]
		if session.Status != domain.SessionActive {
			return nil
		}
		alerts = s.advanceTimers(session, time.Now())
		return nil
	})
	if err != nil {
		s.log.Error("updating session %s: %v", sessionID, err)
		return
	}

	for _, a := range alerts {
		s.deliver(ctx, a)
	}
}

// advanceTimers applies one tick to the session's timers and returns
// the alerts it produced.
func (s *Supervisor) advanceTimers(session *domain.Session, now time.Time) []alert {
	var alerts []alert

	for _, ts := range session.TimerStates {
		if ts.Status != domain.TimerRunning {
			continue
		}

		ts.Remaining -= s.tickInterval

		if ts.Remaining <= 0 {
			ts.Remaining = 0
			ts.Status = domain.TimerFired
			s.log.Debug("timer %s fired for session %s", ts.ID, session.ID)

			alerts = append(alerts, alert{msg: s.escalationMessage(ts, session), urgent: true, ring: true})
			ts.LastNotified = now
			ts.EscalationLevel = 1
			continue
		}

		// Warn once when remaining crosses the threshold, only for waits
		// long enough for the warning to mean something.
		if !ts.WarnedAlmost && ts.Remaining <= s.almostDoneThreshold && ts.Duration > s.almostDoneThreshold*2 {
			ts.WarnedAlmost = true
			alerts = append(alerts, alert{
				msg: fmt.Sprintf("[Timer] %s: almost done, %s left.", ts.Label, formatRemaining(ts.Remaining)),
			})
		}
	}

	// Follow up on fired timers nobody dismissed.
	for _, ts := range session.TimerStates {
		if ts.Status != domain.TimerFired {
			continue
		}
		if ts.EscalationLevel > s.maxEscalation {
			continue
		}
		if !ts.LastNotified.IsZero() && now.Sub(ts.LastNotified) < s.notifyCooldown {
			continue
		}

		alerts = append(alerts, alert{msg: s.escalationMessage(ts, session)})
		ts.LastNotified = now
		ts.EscalationLevel++
	}

	if len(alerts) > 0 {
		session.UpdatedAt = now
	}
	return alerts
}

func (s *Supervisor) deliver(ctx context.Context, a alert) {
	var err error
	if a.urgent {
		err = s.notifier.NotifyUrgent(ctx, a.msg)
	} else {
		err = s.notifier.Notify(ctx, a.msg)
	}
	if err != nil {
		s.log.Error("notify: %v", err)
	}

	if a.ring && s.alarm != nil {
		if err := s.alarm.Ring(ctx); err != nil {
			s.log.Warn("alarm: %v", err)
		}
	}
}

// escalationMessage returns a message based on the escalation level.
func (s *Supervisor) escalationMessage(ts *domain.TimerState, session *domain.Session) string {
	next := nextPourHint(session)
	switch ts.EscalationLevel {
	case 0:
		return fmt.Sprintf("[Timer] %s is up. %s", ts.Label, next)
	case 1:
		return fmt.Sprintf("[Timer] %s finished a while ago. %s", ts.Label, next)
	case 2:
		return fmt.Sprintf("[Timer] %s. The bed is drying out.", ts.Label)
	default:
		return fmt.Sprintf("[Timer] %s.", ts.Label)
	}
}

// nextPourHint names the pour that should follow the current wait.
func nextPourHint(session *domain.Session) string {
	idx := session.CurrentStageIndex + 1
	if idx >= len(session.Stages) {
		return "Let it drain."
	}
	st := session.Stages[idx]
	return fmt.Sprintf("Next: %s to %.0fg.", st.Kind, st.ScaleWeight)
}

// formatRemaining returns a short human-friendly duration.
func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	totalSec := int(d.Seconds())
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", totalSec)
	}
	m := (totalSec + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
