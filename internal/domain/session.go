package domain

import (
	"fmt"
	"time"
)

// Session represents a guided brew in progress.
type Session struct {
	ID                string
	Input             BrewInput
	Output            BrewOutput
	Stages            []Stage
	CurrentStageIndex int
	StageStates       map[int]*StageState
	TimerStates       map[string]*TimerState
	Status            SessionStatus
	StartedAt         time.Time
	UpdatedAt         time.Time
}

// Label returns a short description like "500ml @ 1:15".
func (s *Session) Label() string {
	return fmt.Sprintf("%.0fml @ 1:%.0f", s.Input.TotalVolumeML, s.Output.Ratio)
}

// SessionStatus tracks the lifecycle of a brew session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionPaused
	SessionCompleted
	SessionAbandoned
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionCompleted:
		return "completed"
	case SessionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// ParseSessionStatus is the inverse of SessionStatus.String.
func ParseSessionStatus(s string) SessionStatus {
	switch s {
	case "active":
		return SessionActive
	case "paused":
		return SessionPaused
	case "completed":
		return SessionCompleted
	default:
		return SessionAbandoned
	}
}

// StageState tracks progress of a single stage within a session.
type StageState struct {
	Status      StageStatus
	StartedAt   time.Time
	CompletedAt time.Time
}

// StageStatus tracks the state of a single stage.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageActive
	StageDone
	StageSkipped
)

// String returns a human-readable stage status.
func (s StageStatus) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageActive:
		return "active"
	case StageDone:
		return "done"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// TimerState tracks a wait timer within a session.
type TimerState struct {
	ID              string
	StageID         string
	Label           string
	Duration        time.Duration
	Remaining       time.Duration
	Status          TimerStatus
	LastNotified    time.Time
	WarnedAlmost    bool
	EscalationLevel int
}

// TimerStatus represents the state of a timer.
type TimerStatus int

const (
	TimerPending TimerStatus = iota
	TimerRunning
	TimerPaused
	TimerFired
	TimerDismissed
)

// String returns a human-readable timer status.
func (t TimerStatus) String() string {
	switch t {
	case TimerPending:
		return "pending"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerFired:
		return "fired"
	case TimerDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}
