package brew

import (
	"fmt"
	"math"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Preset range for the total volume selector.
const (
	MinPresetVolume = 200.0
	MaxPresetVolume = 1000.0
	PresetStep      = 50.0
	DefaultVolume   = 500.0
	DefaultStrong   = true
	MaxCustomVolume = 5000.0
	presetTolerance = 1e-9
)

// DefaultInput is the plan shown before the user touches anything.
func DefaultInput() domain.BrewInput {
	return domain.BrewInput{TotalVolumeML: DefaultVolume, UseStrongRatio: DefaultStrong}
}

// Presets returns the selectable total volumes in ascending order.
func Presets() []float64 {
	n := int((MaxPresetVolume-MinPresetVolume)/PresetStep) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = MinPresetVolume + float64(i)*PresetStep
	}
	return out
}

// IsPreset reports whether v is one of the preset volumes.
func IsPreset(v float64) bool {
	if v < MinPresetVolume || v > MaxPresetVolume {
		return false
	}
	steps := (v - MinPresetVolume) / PresetStep
	return math.Abs(steps-math.Round(steps)) < presetTolerance
}

// NearestPreset returns the preset closest to v.
func NearestPreset(v float64) float64 {
	if math.IsNaN(v) || v <= MinPresetVolume {
		return MinPresetVolume
	}
	if v >= MaxPresetVolume {
		return MaxPresetVolume
	}
	return MinPresetVolume + math.Round((v-MinPresetVolume)/PresetStep)*PresetStep
}

// ValidateVolume checks a total volume at the input boundary. Without
// allowCustom only presets pass; with it any positive value up to
// MaxCustomVolume does.
func ValidateVolume(v float64, allowCustom bool) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%w: not a number", domain.ErrInvalidVolume)
	case v <= 0:
		return fmt.Errorf("%w: %g ml must be positive", domain.ErrInvalidVolume, v)
	case allowCustom && v > MaxCustomVolume:
		return fmt.Errorf("%w: %g ml exceeds %g ml", domain.ErrInvalidVolume, v, MaxCustomVolume)
	case !allowCustom && !IsPreset(v):
		return fmt.Errorf("%w: %g ml is not a preset (%g-%g in %g ml steps)",
			domain.ErrInvalidVolume, v, MinPresetVolume, MaxPresetVolume, PresetStep)
	}
	return nil
}
