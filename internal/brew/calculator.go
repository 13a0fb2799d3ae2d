// Package brew computes pour-over brewing plans from a total water volume
// and a ratio strength. Every function here is pure: no I/O, no state,
// identical input always yields identical output.
//
// Callers are expected to run [ValidateVolume] at the input boundary; the
// calculator itself does not validate.
package brew

import "github.com/hammamikhairi/ottobrew/internal/domain"

// ComputeRatio returns the water-to-coffee ratio for the chosen strength.
func ComputeRatio(useStrongRatio bool) float64 {
	if useStrongRatio {
		return domain.StrongRatio
	}
	return domain.StandardRatio
}

// ComputeDose returns grams of coffee for the given water volume. A
// non-positive ratio yields 0.
func ComputeDose(totalVolumeML, ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	return totalVolumeML / ratio
}

// ComputeBloom returns the bloom water volume for a dose.
func ComputeBloom(dose float64) float64 {
	return dose * domain.BloomMultiplier
}

// ComputePours splits the water left after the bloom into three pours.
func ComputePours(totalVolumeML, bloom float64) (first, second, third float64) {
	remaining := totalVolumeML - bloom
	first = remaining * domain.FirstPourShare
	second = remaining * domain.SecondPourShare
	third = remaining * domain.ThirdPourShare
	return first, second, third
}

// ComputeCumulative returns the scale reading after the bloom and after
// each pour, in order.
func ComputeCumulative(bloom float64, pours ...float64) []float64 {
	out := make([]float64, 0, len(pours)+1)
	sum := bloom
	out = append(out, sum)
	for _, p := range pours {
		sum += p
		out = append(out, sum)
	}
	return out
}

// Compute derives the full brewing plan. Intermediate values are never
// rounded.
func Compute(in domain.BrewInput) domain.BrewOutput {
	ratio := ComputeRatio(in.UseStrongRatio)
	dose := ComputeDose(in.TotalVolumeML, ratio)
	bloom := ComputeBloom(dose)
	first, second, third := ComputePours(in.TotalVolumeML, bloom)

	out := domain.BrewOutput{
		Ratio:           ratio,
		CoffeeDoseGrams: dose,
		BloomVolumeML:   bloom,
		FirstPourML:     first,
		SecondPourML:    second,
		ThirdPourML:     third,
	}
	copy(out.Cumulative[:], ComputeCumulative(bloom, out.Pours()...))
	return out
}
