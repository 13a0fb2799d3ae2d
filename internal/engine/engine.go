// Package engine implements the guided brew session state machine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithWaits sets the stage waits used for new sessions.
func WithWaits(w brew.Waits) Option {
	return func(e *Engine) {
		e.waits = w
	}
}

// WithAllowCustomVolume lets sessions use volumes outside the preset list.
func WithAllowCustomVolume(allow bool) Option {
	return func(e *Engine) {
		e.allowCustom = allow
	}
}

// WithHistory records finished sessions to log.
func WithHistory(log domain.BrewLog) Option {
	return func(e *Engine) {
		e.history = log
	}
}

// Engine manages brew sessions. It depends only on interfaces and is
// fully testable with in-memory implementations.
type Engine struct {
	cocktails   domain.CocktailSource
	store       domain.SessionStore
	history     domain.BrewLog
	log         *logger.Logger
	waits       brew.Waits
	allowCustom bool
}

// New creates a brew engine with the given dependencies and options.
func New(cocktails domain.CocktailSource, store domain.SessionStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		cocktails: cocktails,
		store:     store,
		log:       log,
		waits:     brew.DefaultWaits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate validates the input and returns the brew plan.
func (e *Engine) Calculate(in domain.BrewInput) (domain.BrewOutput, error) {
	if err := brew.ValidateVolume(in.TotalVolumeML, e.allowCustom); err != nil {
		return domain.BrewOutput{}, err
	}
	return brew.Compute(in), nil
}

// StartSession begins a guided brew for the given input.
func (e *Engine) StartSession(ctx context.Context, in domain.BrewInput) (*domain.Session, error) {
	out, err := e.Calculate(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:          generateID(),
		Input:       in,
		Output:      out,
		Stages:      brew.Stages(out, e.waits),
		StageStates: make(map[int]*domain.StageState),
		TimerStates: make(map[string]*domain.TimerState),
		Status:      domain.SessionActive,
		StartedAt:   now,
		UpdatedAt:   now,
	}

	for i := range session.Stages {
		session.StageStates[i] = &domain.StageState{Status: domain.StagePending}
	}
	session.StageStates[0].Status = domain.StageActive
	session.StageStates[0].StartedAt = now

	e.maybeCreateTimer(session, session.Stages[0])

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("started session %s (%s, dose %s)", session.ID, session.Label(), brew.FormatDose(out.CoffeeDoseGrams))
	return session, nil
}

// CurrentStage returns the current stage and its state.
func (e *Engine) CurrentStage(ctx context.Context, sessionID string) (*domain.Stage, *domain.StageState, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}

	idx := session.CurrentStageIndex
	if idx >= len(session.Stages) {
		return nil, nil, domain.ErrNoMoreSteps
	}
	stage := session.Stages[idx]
	return &stage, session.StageStates[idx], nil
}

// NextStage returns the stage after the current one, or nil on the last stage.
func (e *Engine) NextStage(ctx context.Context, sessionID string) (*domain.Stage, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	nextIdx := session.CurrentStageIndex + 1
	if nextIdx >= len(session.Stages) {
		return nil, nil
	}
	stage := session.Stages[nextIdx]
	return &stage, nil
}

// Advance completes the current stage and moves to the next one.
// Returns ErrNoMoreSteps once the last stage is done.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*domain.Stage, error) {
	return e.step(ctx, sessionID, domain.StageDone)
}

// Skip marks the current stage skipped and moves to the next one.
func (e *Engine) Skip(ctx context.Context, sessionID string) (*domain.Stage, error) {
	return e.step(ctx, sessionID, domain.StageSkipped)
}

// step closes the current stage with the given status. Timers of the
// closed stage keep running until the user dismisses them.
func (e *Engine) step(ctx context.Context, sessionID string, closeAs domain.StageStatus) (*domain.Stage, error) {
	var next *domain.Stage
	session, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.Status != domain.SessionActive {
			return domain.ErrSessionNotActive
		}

		now := time.Now()
		current := s.StageStates[s.CurrentStageIndex]
		current.Status = closeAs
		current.CompletedAt = now
		s.UpdatedAt = now
		dropPendingTimers(s, s.Stages[s.CurrentStageIndex].ID)

		nextIdx := s.CurrentStageIndex + 1
		if nextIdx >= len(s.Stages) {
			s.Status = domain.SessionCompleted
			return nil
		}

		s.CurrentStageIndex = nextIdx
		s.StageStates[nextIdx].Status = domain.StageActive
		s.StageStates[nextIdx].StartedAt = now
		e.maybeCreateTimer(s, s.Stages[nextIdx])

		st := s.Stages[nextIdx]
		next = &st
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotActive) {
			return nil, err
		}
		return nil, fmt.Errorf("updating session: %w", err)
	}

	if session.Status == domain.SessionCompleted {
		e.log.Info("session %s completed (last stage %s)", sessionID, closeAs)
		e.record(ctx, session)
		return nil, domain.ErrNoMoreSteps
	}

	e.log.Debug("session %s moved to stage %d/%d (%s)", sessionID, next.Order, len(session.Stages), closeAs)
	return next, nil
}

// Repeat returns the current stage again without changing state.
func (e *Engine) Repeat(ctx context.Context, sessionID string) (*domain.Stage, error) {
	stage, _, err := e.CurrentStage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	e.log.Debug("session %s repeating current stage", sessionID)
	return stage, nil
}

// Pause pauses the session and all running timers.
func (e *Engine) Pause(ctx context.Context, sessionID string) error {
	_, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.Status != domain.SessionActive {
			return domain.ErrSessionNotActive
		}
		s.Status = domain.SessionPaused
		s.UpdatedAt = time.Now()

		// Pending timers stay pending.
		for _, ts := range s.TimerStates {
			if ts.Status == domain.TimerRunning {
				ts.Status = domain.TimerPaused
			}
		}
		return nil
	})
	if err != nil {
		return e.wrap(err)
	}

	e.log.Info("session %s paused", sessionID)
	return nil
}

// Resume resumes a paused session.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.Status != domain.SessionPaused {
			return domain.ErrSessionPaused
		}
		s.Status = domain.SessionActive
		s.UpdatedAt = time.Now()

		for _, ts := range s.TimerStates {
			if ts.Status == domain.TimerPaused {
				ts.Status = domain.TimerRunning
			}
		}
		return nil
	})
	if err != nil {
		return nil, e.wrap(err)
	}

	e.log.Info("session %s resumed", sessionID)
	return session, nil
}

// Status returns the full session state.
func (e *Engine) Status(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.store.Load(ctx, sessionID)
}

// Abandon marks a session as abandoned and logs it to history.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	session, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.Status == domain.SessionCompleted || s.Status == domain.SessionAbandoned {
			return domain.ErrSessionNotActive
		}
		s.Status = domain.SessionAbandoned
		s.UpdatedAt = time.Now()
		for _, ts := range s.TimerStates {
			if ts.Status != domain.TimerFired {
				ts.Status = domain.TimerDismissed
			}
		}
		return nil
	})
	if err != nil {
		return e.wrap(err)
	}

	e.log.Info("session %s abandoned", sessionID)
	e.record(ctx, session)
	return nil
}

// maybeCreateTimer adds a pending timer for a stage with a wait. It does
// not count down until the user starts it.
func (e *Engine) maybeCreateTimer(session *domain.Session, stage domain.Stage) {
	if stage.Wait == nil {
		return
	}

	timerID := fmt.Sprintf("timer-%s", stage.ID)
	session.TimerStates[timerID] = &domain.TimerState{
		ID:        timerID,
		StageID:   stage.ID,
		Label:     stage.Wait.Label,
		Duration:  stage.Wait.Duration,
		Remaining: stage.Wait.Duration,
		Status:    domain.TimerPending,
	}

	e.log.Debug("created pending timer %s (%s) for stage %s", timerID, stage.Wait.Duration, stage.ID)
}

// dropPendingTimers dismisses waits of a closed stage that were never
// started. Running or fired ones are left for the user to dismiss.
func dropPendingTimers(s *domain.Session, stageID string) {
	for _, ts := range s.TimerStates {
		if ts.StageID == stageID && ts.Status == domain.TimerPending {
			ts.Status = domain.TimerDismissed
		}
	}
}

// StartPendingTimers moves all pending timers to running. Returns the
// number of timers started.
func (e *Engine) StartPendingTimers(ctx context.Context, sessionID string) (int, error) {
	started := 0
	_, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		if s.Status != domain.SessionActive {
			return domain.ErrSessionNotActive
		}
		for _, ts := range s.TimerStates {
			if ts.Status == domain.TimerPending {
				ts.Status = domain.TimerRunning
				started++
				e.log.Debug("started timer %s (%s)", ts.ID, ts.Duration)
			}
		}
		if started > 0 {
			s.UpdatedAt = time.Now()
		}
		return nil
	})
	if err != nil {
		return 0, e.wrap(err)
	}
	return started, nil
}

// HasPendingTimers reports whether the session has timers waiting to start.
func (e *Engine) HasPendingTimers(ctx context.Context, sessionID string) (bool, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	for _, ts := range session.TimerStates {
		if ts.Status == domain.TimerPending {
			return true, nil
		}
	}
	return false, nil
}

// DismissTimer dismisses a single running or fired timer by ID.
func (e *Engine) DismissTimer(ctx context.Context, sessionID, timerID string) error {
	var label string
	_, err := e.store.Update(ctx, sessionID, func(s *domain.Session) error {
		ts, ok := s.TimerStates[timerID]
		if !ok {
			return fmt.Errorf("timer %q: %w", timerID, domain.ErrNotFound)
		}
		if ts.Status != domain.TimerRunning && ts.Status != domain.TimerFired {
			return fmt.Errorf("timer %q is %s, cannot dismiss", timerID, ts.Status)
		}
		ts.Status = domain.TimerDismissed
		label = ts.Label
		s.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return e.wrap(err)
	}

	e.log.Info("dismissed timer %s (%s)", timerID, label)
	return nil
}

// ActiveTimers returns all running or fired timers for a session.
func (e *Engine) ActiveTimers(ctx context.Context, sessionID string) ([]*domain.TimerState, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var active []*domain.TimerState
	for _, ts := range session.TimerStates {
		if ts.Status == domain.TimerRunning || ts.Status == domain.TimerFired {
			active = append(active, ts)
		}
	}
	return active, nil
}

// ListCocktails returns all cocktails in the catalog.
func (e *Engine) ListCocktails(ctx context.Context) ([]domain.CocktailSummary, error) {
	return e.cocktails.List(ctx)
}

// GetCocktail returns a full cocktail by ID.
func (e *Engine) GetCocktail(ctx context.Context, id string) (*domain.Cocktail, error) {
	return e.cocktails.Get(ctx, id)
}

// SearchCocktails returns cocktails matching query.
func (e *Engine) SearchCocktails(ctx context.Context, query string) ([]domain.CocktailSummary, error) {
	return e.cocktails.Search(ctx, query)
}

// History returns the most recent finished brews. Without a configured
// log it returns ErrUnsupported.
func (e *Engine) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if e.history == nil {
		return nil, domain.ErrUnsupported
	}
	entries, err := e.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// record appends a finished session to the history log. Failures are
// logged, not returned; the brew itself already succeeded.
func (e *Engine) record(ctx context.Context, s *domain.Session) {
	if e.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		SessionID:     s.ID,
		TotalVolumeML: s.Input.TotalVolumeML,
		Strong:        s.Input.UseStrongRatio,
		DoseGrams:     s.Output.CoffeeDoseGrams,
		Status:        s.Status,
		StartedAt:     s.StartedAt,
		FinishedAt:    s.UpdatedAt,
	}
	if err := e.history.Record(ctx, entry); err != nil {
		e.log.Warn("recording session %s: %v", s.ID, err)
	}
}

// wrap keeps domain sentinels bare and adds context to everything else.
func (e *Engine) wrap(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionPaused):
		return err
	default:
		return fmt.Errorf("updating session: %w", err)
	}
}
