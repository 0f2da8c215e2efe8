package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearSeries(n int, start, slope float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + slope*float64(i)
	}
	return out
}

func TestARIMAForecastLinearTrend(t *testing.T) {
	f := NewARIMAForecaster()
	series := linearSeries(100, 50, 0.5)

	got, err := f.Forecast(series, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	// A pure trend should be extrapolated closely.
	for i, v := range got {
		want := 50 + 0.5*float64(100+i)
		assert.InDelta(t, want, v, 1.0, "step %d", i)
	}
}

func TestARIMAForecastConstantSeries(t *testing.T) {
	f := NewARIMAForecaster()
	series := make([]float64, 60)
	for i := range series {
		series[i] = 42
	}

	got, err := f.Forecast(series, 3)
	require.NoError(t, err)
	for _, v := range got {
		assert.InDelta(t, 42, v, 1e-9)
	}
}

func TestARIMAForecastRejectsShortSeries(t *testing.T) {
	f := NewARIMAForecaster()
	_, err := f.Forecast(linearSeries(10, 1, 1), 5)
	assert.Error(t, err)

	_, err = f.Forecast(linearSeries(100, 1, 1), 0)
	assert.Error(t, err)
}

func TestWindowForecastStaysNearSeries(t *testing.T) {
	f := NewWindowForecaster()

	// Noiseless sine wave: forecasts should stay within the signal's range
	// with some slack for model error.
	series := make([]float64, 120)
	for i := range series {
		series[i] = 100 + 10*math.Sin(float64(i)/8)
	}

	got, err := f.Forecast(series, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for _, v := range got {
		assert.False(t, math.IsNaN(v))
		assert.Greater(t, v, 70.0)
		assert.Less(t, v, 130.0)
	}
}

func TestWindowForecastIsDeterministic(t *testing.T) {
	series := linearSeries(80, 10, 0.25)

	a, err := NewWindowForecaster().Forecast(series, 5)
	require.NoError(t, err)
	b, err := NewWindowForecaster().Forecast(series, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWindowForecastRejectsShortSeries(t *testing.T) {
	f := NewWindowForecaster()
	_, err := f.Forecast(linearSeries(5, 1, 1), 3)
	assert.Error(t, err)
}

func TestEvaluateTrendSeries(t *testing.T) {
	series := linearSeries(100, 50, 0.5)

	mae, rmse, err := Evaluate(NewARIMAForecaster(), series)
	require.NoError(t, err)
	assert.Less(t, mae, 1.0)
	assert.GreaterOrEqual(t, rmse, mae)
}

func TestEvaluateRejectsShortSeries(t *testing.T) {
	_, _, err := Evaluate(NewARIMAForecaster(), linearSeries(20, 1, 1))
	assert.Error(t, err)
}
