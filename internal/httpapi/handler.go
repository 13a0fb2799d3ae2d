package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/cocktail"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/theme"
)

// Brewer is the slice of the engine the API needs.
type Brewer interface {
	Calculate(in domain.BrewInput) (domain.BrewOutput, error)
	ListCocktails(ctx context.Context) ([]domain.CocktailSummary, error)
	GetCocktail(ctx context.Context, id string) (*domain.Cocktail, error)
	SearchCocktails(ctx context.Context, query string) ([]domain.CocktailSummary, error)
}

// Handler serves the API routes.
type Handler struct {
	brewer Brewer
	log    *logger.Logger
}

// NewHandler creates a handler over brewer.
func NewHandler(brewer Brewer, log *logger.Logger) *Handler {
	return &Handler{brewer: brewer, log: log}
}

// PresetsResponse lists the selectable volumes.
type PresetsResponse struct {
	Presets       []float64 `json:"presets"`
	DefaultVolume float64   `json:"defaultVolume"`
	DefaultStrong bool      `json:"defaultStrong"`
}

// BrewResponse is a plan plus its display strings.
type BrewResponse struct {
	Input   BrewInput          `json:"input"`
	Output  BrewOutput         `json:"output"`
	Display brew.DisplayValues `json:"display"`
}

// BrewInput is the JSON shape of domain.BrewInput.
type BrewInput struct {
	TotalVolumeML  float64 `json:"totalVolumeMl"`
	UseStrongRatio bool    `json:"useStrongRatio"`
}

// BrewOutput is the JSON shape of domain.BrewOutput.
type BrewOutput struct {
	Ratio           float64    `json:"ratio"`
	CoffeeDoseGrams float64    `json:"coffeeDoseGrams"`
	BloomVolumeML   float64    `json:"bloomVolumeMl"`
	FirstPourML     float64    `json:"firstPourMl"`
	SecondPourML    float64    `json:"secondPourMl"`
	ThirdPourML     float64    `json:"thirdPourMl"`
	Cumulative      [4]float64 `json:"cumulative"`
}

// CocktailResponse is a cocktail with ingredient volumes in ml.
type CocktailResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Tags        []string             `json:"tags,omitempty"`
	Servings    int                  `json:"servings"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

// IngredientResponse is one ingredient line.
type IngredientResponse struct {
	Name     string  `json:"name"`
	VolumeOz float64 `json:"volumeOz"`
	VolumeML float64 `json:"volumeMl"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Presets returns the preset volumes and defaults.
func (h *Handler) Presets(c *gin.Context) {
	def := brew.DefaultInput()
	c.JSON(http.StatusOK, PresetsResponse{
		Presets:       brew.Presets(),
		DefaultVolume: def.TotalVolumeML,
		DefaultStrong: def.UseStrongRatio,
	})
}

// Brew computes a plan from ?volume= and ?strong=.
func (h *Handler) Brew(c *gin.Context) {
	in, err := parseInput(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out, err := h.brewer.Calculate(in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BrewResponse{
		Input:   BrewInput(in),
		Output:  BrewOutput(out),
		Display: brew.Display(in, out),
	})
}

// Compare returns the strong vs standard diff for ?volume= as text.
func (h *Handler) Compare(c *gin.Context) {
	in, err := parseInput(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if _, err := h.brewer.Calculate(in); err != nil {
		abortWithError(c, err)
		return
	}

	diff, err := brew.Compare(in.TotalVolumeML)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, diff)
}

// Cocktails lists the catalog, filtered by ?q= when given.
func (h *Handler) Cocktails(c *gin.Context) {
	var (
		list []domain.CocktailSummary
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		list, err = h.brewer.SearchCocktails(c.Request.Context(), q)
	} else {
		list, err = h.brewer.ListCocktails(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if list == nil {
		list = []domain.CocktailSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"cocktails": list})
}

// Cocktail returns one cocktail, scaled by ?servings= (default 1).
func (h *Handler) Cocktail(c *gin.Context) {
	servings := 1
	if s := c.Query("servings"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_servings", "servings must be a positive integer", err))
			return
		}
		servings = n
	}

	ct, err := h.brewer.GetCocktail(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fmt.Errorf("cocktail %q: %w", c.Param("id"), err))
		return
	}
	c.JSON(http.StatusOK, cocktailResponse(ct, servings))
}

// NextTheme returns the scheme that follows ?scheme=.
func (h *Handler) NextTheme(c *gin.Context) {
	s, err := theme.ParseScheme(c.Query("scheme"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_scheme", err.Error(), err))
		return
	}
	next := theme.Next(s)
	c.JSON(http.StatusOK, gin.H{
		"attribute": theme.Attribute,
		"current":   s.String(),
		"next":      next.String(),
	})
}

// parseInput reads the brew input from the query, defaulting missing
// fields to the calculator defaults.
func parseInput(c *gin.Context) (domain.BrewInput, error) {
	in := brew.DefaultInput()

	if v := c.Query("volume"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(v), "ml"), 64)
		if err != nil {
			return in, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidVolume, v)
		}
		in.TotalVolumeML = f
	}
	if v := c.Query("strong"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, NewHTTPError(http.StatusBadRequest, "invalid_strong", "strong must be true or false", err)
		}
		in.UseStrongRatio = b
	}
	return in, nil
}

func cocktailResponse(c *domain.Cocktail, servings int) CocktailResponse {
	scaled := cocktail.Scale(c, servings)
	resp := CocktailResponse{
		ID:          scaled.ID,
		Name:        scaled.Name,
		Tags:        scaled.Tags,
		Servings:    servings,
		Ingredients: make([]IngredientResponse, 0, len(scaled.Ingredients)),
	}
	for _, ing := range scaled.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientResponse{
			Name:     ing.Name,
			VolumeOz: ing.VolumeOz,
			VolumeML: cocktail.OzToML(ing.VolumeOz),
		})
	}
	return resp
}
