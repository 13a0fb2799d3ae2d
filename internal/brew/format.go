package brew

import (
	"fmt"
	"math"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// FormatDisplay rounds to the nearest whole unit for display.
func FormatDisplay(value float64) string {
	v := math.Round(value)
	if v == 0 {
		v = 0 // avoid "-0"
	}
	return fmt.Sprintf("%.0f", v)
}

// FormatDose renders a coffee dose with one decimal, e.g. "33.3g".
func FormatDose(grams float64) string {
	return fmt.Sprintf("%.1fg", grams)
}

// RatioLabel renders the ratio toggle caption.
func RatioLabel(useStrongRatio bool) string {
	return fmt.Sprintf("%.0fml/g", ComputeRatio(useStrongRatio))
}

// StageDisplay is one formatted row of the pour table.
type StageDisplay struct {
	Name        string `json:"name"`
	Volume      string `json:"volume"`
	ScaleWeight string `json:"scaleWeight"`
}

// DisplayValues is everything the presentation layer shows for a plan.
type DisplayValues struct {
	Ratio  string         `json:"ratio"`
	Dose   string         `json:"dose"`
	Stages []StageDisplay `json:"stages"`
}

// Display formats a plan for the output boundary.
func Display(in domain.BrewInput, out domain.BrewOutput) DisplayValues {
	volumes := append([]float64{out.BloomVolumeML}, out.Pours()...)
	kinds := []domain.StageKind{domain.StageBloom, domain.StageFirstPour, domain.StageSecondPour, domain.StageThirdPour}

	dv := DisplayValues{
		Ratio:  RatioLabel(in.UseStrongRatio),
		Dose:   FormatDose(out.CoffeeDoseGrams),
		Stages: make([]StageDisplay, len(kinds)),
	}
	for i, k := range kinds {
		dv.Stages[i] = StageDisplay{
			Name:        k.String(),
			Volume:      FormatDisplay(volumes[i]),
			ScaleWeight: FormatDisplay(out.Cumulative[i]),
		}
	}
	return dv
}
