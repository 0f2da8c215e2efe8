package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleAdjusterBelowThreshold(t *testing.T) {
	a := NewSimpleAdjuster(0.1, 0.5)

	got := a.Adjust([]float64{100, 110}, 0.05)
	assert.Equal(t, []float64{100, 110}, got)

	got = a.Adjust([]float64{100, 110}, -0.1)
	assert.Equal(t, []float64{100, 110}, got)
}

func TestSimpleAdjusterAppliesMultiplier(t *testing.T) {
	a := NewSimpleAdjuster(0.1, 0.5)

	got := a.Adjust([]float64{100}, 0.4)
	assert.InDelta(t, 120, got[0], 1e-9)

	got = a.Adjust([]float64{100}, -0.4)
	assert.InDelta(t, 80, got[0], 1e-9)
}

func TestSimpleAdjusterDoesNotMutateInput(t *testing.T) {
	a := NewSimpleAdjuster(0.1, 0.5)
	in := []float64{100}
	_ = a.Adjust(in, 0.4)
	assert.Equal(t, 100.0, in[0])
}

func TestCombinerNeutralSentiment(t *testing.T) {
	c := NewCombiner(0.4, 0.4, 0.2)

	got, err := c.Combine([]float64{10}, []float64{20}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 12, got[0], 1e-9)
}

func TestCombinerSentimentMultiplier(t *testing.T) {
	c := NewCombiner(0.4, 0.4, 0.2)

	// (10*0.4 + 20*0.4) * (1 + 1*0.2) = 14.4
	got, err := c.Combine([]float64{10}, []float64{20}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 14.4, got[0], 1e-9)

	got, err = c.Combine([]float64{10}, []float64{20}, -1)
	require.NoError(t, err)
	assert.InDelta(t, 9.6, got[0], 1e-9)
}

func TestCombinerLengthMismatch(t *testing.T) {
	c := NewCombiner(0.4, 0.4, 0.2)
	_, err := c.Combine([]float64{10, 11}, []float64{20}, 0)
	assert.Error(t, err)
}
