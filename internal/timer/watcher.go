package timer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks session state.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithIdleAfter sets how long a stage may stay active without a running
// timer before the watcher nudges.
func WithIdleAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.idleAfter = d
	}
}

// WithWatchEscalation sets the escalation level past which a fired timer
// is considered given up on and no longer mentioned.
func WithWatchEscalation(level int) WatcherOption {
	return func(w *Watcher) {
		w.maxEscalation = level
	}
}

// Watcher periodically inspects session state and nudges about idle
// stages, long pauses and fired timers. Runs on a slower cycle than the
// supervisor.
type Watcher struct {
	store     domain.SessionStore
	notifier  domain.Notifier
	log       *logger.Logger
	interval  time.Duration
	idleAfter time.Duration

	maxEscalation int
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(store domain.SessionStore, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:     store,
		notifier:  notifier,
		log:       log,
		interval:  30 * time.Second,
		idleAfter: 2 * time.Minute,

		maxEscalation: 3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s)", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	sessions, err := w.store.ListActive(ctx)
	if err != nil {
		w.log.Error("watcher: listing active sessions: %v", err)
		return
	}

	for _, session := range sessions {
		w.inspect(ctx, session, time.Now())
	}
}

func (w *Watcher) inspect(ctx context.Context, session *domain.Session, now time.Time) {
	w.log.Debug("watcher: session=%s (%s) status=%s stage=%d/%d",
		session.ID, session.Label(), session.Status,
		session.CurrentStageIndex+1, len(session.Stages))

	msg := w.buildMessage(session, now)
	if msg == "" {
		return
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}

// buildMessage decides what to tell the user based on current state.
func (w *Watcher) buildMessage(session *domain.Session, now time.Time) string {
	if session.Status == domain.SessionPaused {
		elapsed := now.Sub(session.UpdatedAt).Round(time.Second)
		return fmt.Sprintf("[Watcher] Brew paused for %s. The grounds are cooling.", elapsed)
	}

	idx := session.CurrentStageIndex
	if idx >= len(session.Stages) {
		return ""
	}
	stage := session.Stages[idx]
	state := session.StageStates[idx]

	var running, fired []string
	for _, ts := range session.TimerStates {
		switch ts.Status {
		case domain.TimerRunning:
			running = append(running, ts.Label)
		case domain.TimerFired:
			// Same cap as the supervisor's follow-ups.
			if ts.EscalationLevel <= w.maxEscalation {
				fired = append(fired, ts.Label)
			}
		}
	}

	if len(fired) > 0 {
		return fmt.Sprintf("[Watcher] Heads up, %s fired and waiting on you.", joinNames(fired))
	}

	if len(running) > 0 || state == nil || state.StartedAt.IsZero() {
		return ""
	}

	onStageFor := now.Sub(state.StartedAt)
	if onStageFor > w.idleAfter {
		return fmt.Sprintf("[Watcher] Still on %s for %s. Say \"next\" once the scale reads %.0fg.",
			strings.ToLower(stage.Kind.String()), onStageFor.Round(time.Second), stage.ScaleWeight)
	}

	w.log.Debug("watcher: session %s on %s for %s, nothing to report",
		session.ID, stage.Kind, onStageFor.Round(time.Second))
	return ""
}

// joinNames joins names as "a", "a and b" or "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
