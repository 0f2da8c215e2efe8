// -----------------------------------------------------------------------
// Sliding-window regression forecaster. Min-max scales the series, trains
// a linear model over fixed-size lag windows by stochastic gradient
// descent, then rolls the window forward to produce multi-step forecasts.
// -----------------------------------------------------------------------

package forecast

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	defaultWindowSize = 10
	trainEpochs       = 200
	learnRate         = 0.01
)

type WindowForecaster struct {
	windowSize int
	seed       int64
}

func NewWindowForecaster() *WindowForecaster {
	return &WindowForecaster{windowSize: defaultWindowSize, seed: 42}
}

func (f *WindowForecaster) Forecast(series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if len(series) < f.windowSize*2 {
		return nil, fmt.Errorf("series too short for forecasting: %d points, need %d", len(series), f.windowSize*2)
	}

	lo, hi := minMax(series)
	if hi-lo < 1e-12 {
		out := make([]float64, horizon)
		for i := range out {
			out[i] = series[len(series)-1]
		}
		return out, nil
	}

	scaled := make([]float64, len(series))
	for i, v := range series {
		scaled[i] = (v - lo) / (hi - lo)
	}

	weights, bias := f.train(scaled)

	window := append([]float64(nil), scaled[len(scaled)-f.windowSize:]...)
	out := make([]float64, 0, horizon)
	for i := 0; i < horizon; i++ {
		pred := predict(window, weights, bias)
		out = append(out, pred*(hi-lo)+lo)
		window = append(window[1:], pred)
	}

	return out, nil
}

func (f *WindowForecaster) train(scaled []float64) ([]float64, float64) {
	rng := rand.New(rand.NewSource(f.seed))

	weights := make([]float64, f.windowSize)
	for i := range weights {
		weights[i] = (rng.Float64() - 0.5) * 0.1
	}
	var bias float64

	samples := len(scaled) - f.windowSize
	order := make([]int, samples)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < trainEpochs; epoch++ {
		rng.Shuffle(samples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, s := range order {
			x := scaled[s : s+f.windowSize]
			y := scaled[s+f.windowSize]
			err := predict(x, weights, bias) - y
			for j := range weights {
				weights[j] -= learnRate * err * x[j]
			}
			bias -= learnRate * err
		}
	}

	return weights, bias
}

func predict(window, weights []float64, bias float64) float64 {
	p := bias
	for i, w := range weights {
		p += w * window[i]
	}
	return p
}

func minMax(series []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range series {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
