package brew

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

func TestPresets(t *testing.T) {
	p := Presets()
	require.Len(t, p, 17)
	assert.Equal(t, 200.0, p[0])
	assert.Equal(t, 1000.0, p[len(p)-1])
	for i := 1; i < len(p); i++ {
		assert.Equal(t, 50.0, p[i]-p[i-1])
	}
	assert.Contains(t, p, DefaultVolume)
}

func TestValidateVolume(t *testing.T) {
	tests := []struct {
		name        string
		v           float64
		allowCustom bool
		wantErr     bool
	}{
		{"preset", 500, false, false},
		{"upper preset", 1000, false, false},
		{"lower preset", 200, false, false},
		{"between presets", 525, false, true},
		{"below range", 150, false, true},
		{"above range", 1050, false, true},
		{"custom allowed", 525, true, false},
		{"custom small", 30, true, false},
		{"zero", 0, true, true},
		{"negative", -5, true, true},
		{"custom too large", 6000, true, true},
		{"nan", math.NaN(), true, true},
		{"inf", math.Inf(1), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVolume(tt.v, tt.allowCustom)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrInvalidVolume), "want ErrInvalidVolume, got %v", err)
		})
	}
}

func TestNearestPreset(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{523, 500},
		{530, 550},
		{10, 200},
		{5000, 1000},
		{math.NaN(), 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NearestPreset(tt.in), "NearestPreset(%v)", tt.in)
	}
}
