package domain

import (
	"context"
	"time"
)

// CocktailSource provides cocktail recipes. Implementations can be the
// built-in table or a YAML file.
type CocktailSource interface {
	List(ctx context.Context) ([]CocktailSummary, error)
	Get(ctx context.Context, id string) (*Cocktail, error)
	Search(ctx context.Context, query string) ([]CocktailSummary, error)
}

// SessionStore persists brew sessions. Load and ListActive hand out
// copies; changes go back through Save or Update.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	// Update applies fn to the stored session atomically. If fn returns an
	// error nothing is written.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*Session, error)
}

// HistoryEntry is one finished brew in the log.
type HistoryEntry struct {
	SessionID     string
	TotalVolumeML float64
	Strong        bool
	DoseGrams     float64
	Status        SessionStatus
	StartedAt     time.Time
	FinishedAt    time.Time
}

// BrewLog records finished brews.
type BrewLog interface {
	Record(ctx context.Context, entry HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string, session *Session) (*Intent, error)
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Alarm makes an audible signal when a stage timer fires.
type Alarm interface {
	Ring(ctx context.Context) error
}
