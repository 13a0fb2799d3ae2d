package brew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

const tolerance = 1e-9

func TestComputeRatio(t *testing.T) {
	assert.Equal(t, 15.0, ComputeRatio(true))
	assert.Equal(t, 17.0, ComputeRatio(false))
}

func TestComputeDoseZeroRatio(t *testing.T) {
	assert.Equal(t, 0.0, ComputeDose(500, 0))
	assert.Equal(t, 0.0, ComputeDose(500, -3))
}

func TestComputeCumulative(t *testing.T) {
	got := ComputeCumulative(100, 200, 100, 100)
	assert.Equal(t, []float64{100, 300, 400, 500}, got)

	assert.Equal(t, []float64{42}, ComputeCumulative(42))
}

func TestComputeScenarios(t *testing.T) {
	tests := []struct {
		name       string
		in         domain.BrewInput
		ratio      float64
		dose       float64
		bloom      float64
		first      float64
		second     float64
		third      float64
		cumulative [4]float64
	}{
		{
			name:       "500ml strong",
			in:         domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true},
			ratio:      15,
			dose:       500.0 / 15,
			bloom:      100,
			first:      200,
			second:     100,
			third:      100,
			cumulative: [4]float64{100, 300, 400, 500},
		},
		{
			name:       "500ml standard",
			in:         domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: false},
			ratio:      17,
			dose:       500.0 / 17,
			bloom:      1500.0 / 17,
			first:      (500 - 1500.0/17) / 2,
			second:     (500 - 1500.0/17) / 4,
			third:      (500 - 1500.0/17) / 4,
			cumulative: [4]float64{1500.0 / 17, 1500.0/17 + (500-1500.0/17)/2, 500 - (500-1500.0/17)/4, 500},
		},
		{
			name:       "1000ml strong",
			in:         domain.BrewInput{TotalVolumeML: 1000, UseStrongRatio: true},
			ratio:      15,
			dose:       1000.0 / 15,
			bloom:      200,
			first:      400,
			second:     200,
			third:      200,
			cumulative: [4]float64{200, 600, 800, 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compute(tt.in)
			assert.Equal(t, tt.ratio, out.Ratio)
			assert.InDelta(t, tt.dose, out.CoffeeDoseGrams, tolerance)
			assert.InDelta(t, tt.bloom, out.BloomVolumeML, tolerance)
			assert.InDelta(t, tt.first, out.FirstPourML, tolerance)
			assert.InDelta(t, tt.second, out.SecondPourML, tolerance)
			assert.InDelta(t, tt.third, out.ThirdPourML, tolerance)
			for i := range tt.cumulative {
				assert.InDelta(t, tt.cumulative[i], out.Cumulative[i], tolerance, "cumulative[%d]", i)
			}
		})
	}
}

func TestComputeStandard500Display(t *testing.T) {
	out := Compute(domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: false})

	assert.Equal(t, "29.4g", FormatDose(out.CoffeeDoseGrams))
	assert.Equal(t, "88", FormatDisplay(out.BloomVolumeML))
	assert.Equal(t, "206", FormatDisplay(out.FirstPourML))
	assert.Equal(t, "103", FormatDisplay(out.SecondPourML))
	assert.Equal(t, "500", FormatDisplay(out.Cumulative[3]))
}

func TestComputeInvariantsAcrossPresets(t *testing.T) {
	for _, v := range Presets() {
		for _, strong := range []bool{true, false} {
			in := domain.BrewInput{TotalVolumeML: v, UseStrongRatio: strong}
			out := Compute(in)

			require.InDelta(t, v/out.Ratio, out.CoffeeDoseGrams, tolerance)
			require.InDelta(t, out.CoffeeDoseGrams*3, out.BloomVolumeML, tolerance)
			require.InDelta(t, v-out.BloomVolumeML, out.FirstPourML+out.SecondPourML+out.ThirdPourML, tolerance)
			require.Equal(t, out.SecondPourML, out.ThirdPourML)
			require.InDelta(t, 2*out.SecondPourML, out.FirstPourML, tolerance)
			require.InDelta(t, v, out.Cumulative[3], tolerance)
			require.Equal(t, []float64{out.FirstPourML, out.SecondPourML, out.ThirdPourML}, out.Pours())
			require.Greater(t, out.CoffeeDoseGrams, 0.0)

			// Pure: same input, same output.
			require.Equal(t, out, Compute(in))
		}
	}
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{99.5, "100"},
		{100.00000000000001, "100"},
		{88.2352941, "88"},
		{-0.2, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDisplay(tt.in), "FormatDisplay(%v)", tt.in)
	}
}

func TestDisplay(t *testing.T) {
	in := domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true}
	dv := Display(in, Compute(in))

	assert.Equal(t, "15ml/g", dv.Ratio)
	assert.Equal(t, "33.3g", dv.Dose)
	require.Len(t, dv.Stages, 4)

	wantVol := []string{"100", "200", "100", "100"}
	wantWeight := []string{"100", "300", "400", "500"}
	for i, s := range dv.Stages {
		assert.Equal(t, wantVol[i], s.Volume, "stage %s volume", s.Name)
		assert.Equal(t, wantWeight[i], s.ScaleWeight, "stage %s weight", s.Name)
	}
	assert.Equal(t, "Bloom", dv.Stages[0].Name)
	assert.Equal(t, "Third Pour", dv.Stages[3].Name)
}
