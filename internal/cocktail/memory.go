// Package cocktail provides the static cocktail catalog.
package cocktail

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.CocktailSource = (*MemorySource)(nil)

// MemorySource holds cocktails in memory. Read-only after construction
// and safe for concurrent reads.
type MemorySource struct {
	mu        sync.RWMutex
	cocktails map[string]*domain.Cocktail
	log       *logger.Logger
}

// NewMemorySource creates a source preloaded with the built-in cocktails.
func NewMemorySource(log *logger.Logger) *MemorySource {
	return newSource(builtins(), log)
}

func newSource(list []*domain.Cocktail, log *logger.Logger) *MemorySource {
	src := &MemorySource{
		cocktails: make(map[string]*domain.Cocktail, len(list)),
		log:       log,
	}
	for _, c := range list {
		src.cocktails[c.ID] = c
	}
	log.Debug("loaded %d cocktails", len(list))
	return src
}

// List returns summaries of all cocktails sorted by name.
func (s *MemorySource) List(ctx context.Context) ([]domain.CocktailSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all cocktails, count=%d", len(s.cocktails))

	out := make([]domain.CocktailSummary, 0, len(s.cocktails))
	for _, c := range s.cocktails {
		out = append(out, c.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a copy of the cocktail with the given ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Cocktail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cocktails[id]
	if !ok {
		s.log.Debug("cocktail not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return clone(c), nil
}

// Search returns cocktails whose name, ingredients or tags contain the
// query, case-insensitively, sorted by name.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.CocktailSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching cocktails for: %s", q)

	var out []domain.CocktailSummary
	for _, c := range s.cocktails {
		if matches(c, q) {
			out = append(out, c.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matches(c *domain.Cocktail, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	for _, ing := range c.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), query) {
			return true
		}
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func clone(c *domain.Cocktail) *domain.Cocktail {
	cp := *c
	cp.Ingredients = append([]domain.CocktailIngredient(nil), c.Ingredients...)
	cp.Tags = append([]string(nil), c.Tags...)
	return &cp
}

// builtins is the house list. Volumes are in ounces.
func builtins() []*domain.Cocktail {
	return []*domain.Cocktail{
		{
			ID:   "negroni",
			Name: "Negroni",
			Tags: []string{"stirred", "bitter", "gin"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "Gin", VolumeOz: 1},
				{Name: "Sweet Vermouth", VolumeOz: 1},
				{Name: "Campari", VolumeOz: 1},
			},
		},
		{
			ID:   "old-fashioned",
			Name: "Old Fashioned",
			Tags: []string{"stirred", "whiskey"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "Bourbon", VolumeOz: 2},
				{Name: "Simple Syrup", VolumeOz: 0.25},
				{Name: "Angostura Bitters", VolumeOz: 0.125},
			},
		},
		{
			ID:   "margarita",
			Name: "Margarita",
			Tags: []string{"shaken", "sour", "agave"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "Tequila", VolumeOz: 2},
				{Name: "Cointreau", VolumeOz: 1},
				{Name: "Lime Juice", VolumeOz: 1},
			},
		},
		{
			ID:   "manhattan",
			Name: "Manhattan",
			Tags: []string{"stirred", "whiskey"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "Rye Whiskey", VolumeOz: 2},
				{Name: "Sweet Vermouth", VolumeOz: 1},
				{Name: "Angostura Bitters", VolumeOz: 0.125},
			},
		},
		{
			ID:   "daiquiri",
			Name: "Daiquiri",
			Tags: []string{"shaken", "sour", "rum"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "White Rum", VolumeOz: 2},
				{Name: "Lime Juice", VolumeOz: 1},
				{Name: "Simple Syrup", VolumeOz: 0.75},
			},
		},
		{
			ID:   "whiskey-sour",
			Name: "Whiskey Sour",
			Tags: []string{"shaken", "sour", "whiskey"},
			Ingredients: []domain.CocktailIngredient{
				{Name: "Bourbon", VolumeOz: 2},
				{Name: "Lemon Juice", VolumeOz: 0.75},
				{Name: "Simple Syrup", VolumeOz: 0.75},
			},
		},
	}
}
