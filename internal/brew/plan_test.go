package brew

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

func TestStagesWithDefaultWaits(t *testing.T) {
	out := Compute(domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true})
	stages := Stages(out, DefaultWaits())

	require.Len(t, stages, 4)
	for i, st := range stages {
		assert.Equal(t, i+1, st.Order)
		assert.InDelta(t, out.Cumulative[i], st.ScaleWeight, tolerance)
		assert.NotEmpty(t, st.Instruction)
	}

	require.NotNil(t, stages[0].Wait)
	assert.Equal(t, 45*time.Second, stages[0].Wait.Duration)
	assert.Equal(t, "bloom", stages[0].Wait.Label)
	require.NotNil(t, stages[1].Wait)
	assert.Equal(t, 30*time.Second, stages[1].Wait.Duration)
	require.NotNil(t, stages[2].Wait)
	assert.Nil(t, stages[3].Wait, "last pour should not wait")

	assert.True(t, strings.Contains(stages[0].Instruction, "33.3g"), stages[0].Instruction)
	assert.True(t, strings.Contains(stages[3].Instruction, "500g"), stages[3].Instruction)
}

func TestStagesWithoutWaits(t *testing.T) {
	stages := Stages(Compute(DefaultInput()), Waits{})
	for _, st := range stages {
		assert.Nil(t, st.Wait, "stage %d", st.Order)
	}
}

func TestTableAndCompare(t *testing.T) {
	table := Table(domain.BrewInput{TotalVolumeML: 500, UseStrongRatio: true})
	assert.Contains(t, table, "Dose:   33.3g")
	assert.Contains(t, table, "Third Pour")
	assert.Contains(t, table, "500g")

	diff, err := Compare(500)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- strong 15ml/g")
	assert.Contains(t, diff, "+++ standard 17ml/g")
	assert.Contains(t, diff, "-Ratio:  15ml/g")
	assert.Contains(t, diff, "+Ratio:  17ml/g")
	assert.Contains(t, diff, "+Dose:   29.4g")
}
