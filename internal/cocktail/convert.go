package cocktail

import "github.com/hammamikhairi/ottobrew/internal/domain"

// MLPerOz is one US fluid ounce in millilitres.
const MLPerOz = 29.5735

// OzToML converts US fluid ounces to millilitres.
func OzToML(oz float64) float64 {
	return oz * MLPerOz
}

// Scale returns a copy of c with every volume multiplied by servings.
// Non-positive servings are treated as one.
func Scale(c *domain.Cocktail, servings int) *domain.Cocktail {
	if servings <= 0 {
		servings = 1
	}
	cp := clone(c)
	for i := range cp.Ingredients {
		cp.Ingredients[i].VolumeOz *= float64(servings)
	}
	return cp
}
