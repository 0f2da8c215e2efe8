package forecast

import (
	"fmt"
	"math"

	"github.com/ternarybob/prestocked/internal/interfaces"
)

const holdoutFraction = 0.2

// Evaluate walks a forecaster through the holdout tail of a series one
// step at a time, refitting on the growing history, and reports MAE and
// RMSE against the observed values.
func Evaluate(f interfaces.Forecaster, series []float64) (mae, rmse float64, err error) {
	split := int(float64(len(series)) * (1 - holdoutFraction))
	if split < minSeriesLen || split >= len(series) {
		return 0, 0, fmt.Errorf("series too short to backtest: %d points", len(series))
	}

	history := append([]float64(nil), series[:split]...)
	var sumAbs, sumSq float64
	steps := 0

	for i := split; i < len(series); i++ {
		preds, ferr := f.Forecast(history, 1)
		if ferr != nil {
			return 0, 0, ferr
		}
		diff := preds[0] - series[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		steps++
		history = append(history, series[i])
	}

	mae = sumAbs / float64(steps)
	rmse = math.Sqrt(sumSq / float64(steps))
	return mae, rmse, nil
}
