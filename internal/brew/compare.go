package brew

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Table renders a plan as fixed-width text, one stage per line.
func Table(in domain.BrewInput) string {
	dv := Display(in, Compute(in))

	var b strings.Builder
	fmt.Fprintf(&b, "Total:  %sml\n", FormatDisplay(in.TotalVolumeML))
	fmt.Fprintf(&b, "Ratio:  %s\n", dv.Ratio)
	fmt.Fprintf(&b, "Dose:   %s\n", dv.Dose)
	fmt.Fprintf(&b, "%-12s %8s %14s\n", "Step", "Volume", "Scale Weight")
	for _, s := range dv.Stages {
		fmt.Fprintf(&b, "%-12s %8s %14s\n", s.Name, s.Volume+"ml", s.ScaleWeight+"g")
	}
	return b.String()
}

// Compare returns a unified diff between the strong and standard plans
// for the same total volume.
func Compare(totalVolumeML float64) (string, error) {
	strong := domain.BrewInput{TotalVolumeML: totalVolumeML, UseStrongRatio: true}
	standard := domain.BrewInput{TotalVolumeML: totalVolumeML, UseStrongRatio: false}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Table(strong)),
		B:        difflib.SplitLines(Table(standard)),
		FromFile: "strong " + RatioLabel(true),
		ToFile:   "standard " + RatioLabel(false),
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diffing plans: %w", err)
	}
	return text, nil
}
