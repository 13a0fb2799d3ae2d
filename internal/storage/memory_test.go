package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func newSession(id string, status domain.SessionStatus) *domain.Session {
	return &domain.Session{
		ID:          id,
		Input:       domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true},
		Output:      domain.BrewOutput{Ratio: 15},
		Status:      status,
		StageStates: map[int]*domain.StageState{0: {Status: domain.StageActive}},
		TimerStates: map[string]*domain.TimerState{},
		StartedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	session := newSession("test-session-1", domain.SessionActive)

	// Save.
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Load.
	loaded, err := store.Load(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != session.ID {
		t.Fatalf("expected ID %s, got %s", session.ID, loaded.ID)
	}

	// Load nonexistent.
	_, err = store.Load(ctx, "nonexistent")
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// ListActive.
	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(active))
	}

	// Delete.
	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = store.Load(ctx, "test-session-1")
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete nonexistent.
	if err := store.Delete(ctx, "nonexistent"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(logger.Discard())
	ctx := context.Background()

	orig := newSession("s1", domain.SessionActive)
	if err := store.Save(ctx, orig); err != nil {
		t.Fatalf("save: %v", err)
	}
	orig.StageStates[0].Status = domain.StageDone

	loaded, _ := store.Load(ctx, "s1")
	if loaded.StageStates[0].Status != domain.StageActive {
		t.Fatal("store shares stage state with the caller after Save")
	}
	loaded.Status = domain.SessionAbandoned

	again, _ := store.Load(ctx, "s1")
	if again.Status != domain.SessionActive {
		t.Fatal("store shares session with the caller after Load")
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore(logger.Discard())
	ctx := context.Background()
	_ = store.Save(ctx, newSession("s1", domain.SessionActive))

	got, err := store.Update(ctx, "s1", func(s *domain.Session) error {
		s.CurrentStageIndex = 2
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.CurrentStageIndex != 2 {
		t.Fatalf("expected index 2, got %d", got.CurrentStageIndex)
	}

	boom := errors.New("boom")
	_, err = store.Update(ctx, "s1", func(s *domain.Session) error {
		s.CurrentStageIndex = 3
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	loaded, _ := store.Load(ctx, "s1")
	if loaded.CurrentStageIndex != 2 {
		t.Fatalf("failed update was written: index=%d", loaded.CurrentStageIndex)
	}

	if _, err := store.Update(ctx, "missing", func(*domain.Session) error { return nil }); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	sessions := []*domain.Session{
		newSession("s1", domain.SessionActive),
		newSession("s2", domain.SessionPaused),
		newSession("s3", domain.SessionCompleted),
		newSession("s4", domain.SessionAbandoned),
	}

	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active/paused sessions, got %d", len(active))
	}
}
