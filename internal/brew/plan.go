package brew

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Default waits between pours.
const (
	DefaultBloomWait = 45 * time.Second
	DefaultPourWait  = 30 * time.Second
)

// Waits configures the timers attached to each stage. A zero duration
// means no timer.
type Waits struct {
	Bloom time.Duration
	Pour  time.Duration
}

// DefaultWaits returns the standard bloom and pour waits.
func DefaultWaits() Waits {
	return Waits{Bloom: DefaultBloomWait, Pour: DefaultPourWait}
}

// Stages turns a plan into the four guided stages. The last pour never
// carries a wait; the brew is done once it drains.
func Stages(out domain.BrewOutput, w Waits) []domain.Stage {
	volumes := append([]float64{out.BloomVolumeML}, out.Pours()...)
	kinds := []domain.StageKind{domain.StageBloom, domain.StageFirstPour, domain.StageSecondPour, domain.StageThirdPour}

	stages := make([]domain.Stage, len(kinds))
	for i, k := range kinds {
		st := domain.Stage{
			ID:          fmt.Sprintf("stage-%d", i+1),
			Order:       i + 1,
			Kind:        k,
			VolumeML:    volumes[i],
			ScaleWeight: out.Cumulative[i],
		}

		if k == domain.StageBloom {
			st.Instruction = fmt.Sprintf("Pour %sml evenly over %s of grounds to bloom. Scale reads %sg.",
				FormatDisplay(volumes[i]), FormatDose(out.CoffeeDoseGrams), FormatDisplay(out.Cumulative[i]))
		} else {
			st.Instruction = fmt.Sprintf("%s: pour %sml in slow circles until the scale reads %sg.",
				k, FormatDisplay(volumes[i]), FormatDisplay(out.Cumulative[i]))
		}

		var wait time.Duration
		switch {
		case k == domain.StageBloom:
			wait = w.Bloom
		case i < len(kinds)-1:
			wait = w.Pour
		}
		if wait > 0 {
			label := "drawdown"
			if k == domain.StageBloom {
				label = "bloom"
			}
			st.Wait = &domain.TimerConfig{Duration: wait, Label: label}
		}
		stages[i] = st
	}
	return stages
}
