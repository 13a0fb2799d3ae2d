package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidVolume    = errors.New("invalid total volume")
	ErrSessionNotActive = errors.New("session is not active")
	ErrSessionPaused    = errors.New("session is paused")
	ErrNoMoreSteps      = errors.New("no more stages in brew")
	ErrUnsupported      = errors.New("not supported")
)
