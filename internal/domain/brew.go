// Package domain defines the core types and interfaces for the brewing assistant.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Brewing ratios in ml of water per gram of coffee. Lower is stronger.
const (
	StrongRatio   = 15.0
	StandardRatio = 17.0
)

// BloomMultiplier is the bloom water per gram of coffee.
const BloomMultiplier = 3.0

// Share of the post-bloom water poured at each stage.
const (
	FirstPourShare  = 1.0 / 2.0
	SecondPourShare = 1.0 / 4.0
	ThirdPourShare  = 1.0 / 4.0
)

// BrewInput is a snapshot of what the user picked. It is never mutated;
// every edit produces a new value.
type BrewInput struct {
	TotalVolumeML  float64
	UseStrongRatio bool
}

// BrewOutput is derived from a BrewInput and recomputed on every change.
// All fields hold unrounded values.
type BrewOutput struct {
	Ratio           float64
	CoffeeDoseGrams float64
	BloomVolumeML   float64
	FirstPourML     float64
	SecondPourML    float64
	ThirdPourML     float64
	// Cumulative scale weight after bloom, first, second and third pour.
	Cumulative [4]float64
}

// Pours returns the three pour volumes in order.
func (o BrewOutput) Pours() []float64 {
	return []float64{o.FirstPourML, o.SecondPourML, o.ThirdPourML}
}

// StageKind identifies a pour stage.
type StageKind int

const (
	StageBloom StageKind = iota
	StageFirstPour
	StageSecondPour
	StageThirdPour
)

// String returns a human-readable stage name.
func (k StageKind) String() string {
	switch k {
	case StageBloom:
		return "Bloom"
	case StageFirstPour:
		return "First Pour"
	case StageSecondPour:
		return "Second Pour"
	case StageThirdPour:
		return "Third Pour"
	default:
		return "unknown"
	}
}

// Stage is one step of a guided brew.
type Stage struct {
	ID          string
	Order       int
	Kind        StageKind
	VolumeML    float64
	ScaleWeight float64 // cumulative reading once this pour is done
	Instruction string
	Wait        *TimerConfig
}

// TimerConfig defines an optional wait timer attached to a stage.
type TimerConfig struct {
	Duration time.Duration
	Label    string
}
