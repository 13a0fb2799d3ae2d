package domain

// Cocktail is a static bar recipe.
type Cocktail struct {
	ID          string               `yaml:"id"`
	Name        string               `yaml:"name"`
	Ingredients []CocktailIngredient `yaml:"ingredients"`
	Tags        []string             `yaml:"tags"`
}

// CocktailIngredient is a single measured pour, in US fluid ounces.
type CocktailIngredient struct {
	Name     string  `yaml:"name"`
	VolumeOz float64 `yaml:"volume"`
}

// CocktailSummary is a lightweight view of a cocktail for listing.
type CocktailSummary struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// Summary returns the listing view of c.
func (c *Cocktail) Summary() CocktailSummary {
	return CocktailSummary{ID: c.ID, Name: c.Name, Tags: c.Tags}
}
