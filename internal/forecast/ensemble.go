// -----------------------------------------------------------------------
// Sentiment adjustment strategies. The simple pipeline scales an ARIMA
// forecast by aggregate sentiment when it clears a threshold; the hybrid
// pipeline blends two model forecasts and applies a proportional
// sentiment multiplier.
// -----------------------------------------------------------------------

package forecast

import "fmt"

// SimpleAdjuster applies a sentiment multiplier to a single forecast,
// but only when the sentiment is decisive enough to act on.
type SimpleAdjuster struct {
	Threshold float64
	Coeff     float64
}

func NewSimpleAdjuster(threshold, coeff float64) *SimpleAdjuster {
	return &SimpleAdjuster{Threshold: threshold, Coeff: coeff}
}

func (a *SimpleAdjuster) Adjust(values []float64, sentiment float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	if sentiment > a.Threshold || sentiment < -a.Threshold {
		factor := 1 + sentiment*a.Coeff
		for i := range out {
			out[i] *= factor
		}
	}
	return out
}

// Combiner blends two model forecasts by fixed weights and scales the
// result by a sentiment multiplier. Sentiment always participates here,
// unlike the simple adjuster's thresholded gate.
type Combiner struct {
	ArimaWeight     float64
	ModelWeight     float64
	SentimentWeight float64
}

func NewCombiner(arimaWeight, modelWeight, sentimentWeight float64) *Combiner {
	return &Combiner{
		ArimaWeight:     arimaWeight,
		ModelWeight:     modelWeight,
		SentimentWeight: sentimentWeight,
	}
}

func (c *Combiner) Combine(arima, model []float64, sentiment float64) ([]float64, error) {
	if len(arima) != len(model) {
		return nil, fmt.Errorf("forecast length mismatch: %d vs %d", len(arima), len(model))
	}

	factor := 1 + sentiment*c.SentimentWeight
	out := make([]float64, len(arima))
	for i := range arima {
		out[i] = (arima[i]*c.ArimaWeight + model[i]*c.ModelWeight) * factor
	}
	return out, nil
}
