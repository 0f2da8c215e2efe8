// -----------------------------------------------------------------------
// Autoregressive forecaster with AIC order selection. Fits AR(p) models on
// a d-times differenced series by ordinary least squares and picks the
// (p,d) pair with the lowest AIC.
// -----------------------------------------------------------------------

package forecast

import (
	"fmt"
	"math"
)

const (
	maxAROrder   = 5
	maxDiffOrder = 2
	minSeriesLen = 30
)

type ARIMAForecaster struct{}

func NewARIMAForecaster() *ARIMAForecaster {
	return &ARIMAForecaster{}
}

type arModel struct {
	p         int
	d         int
	intercept float64
	coeffs    []float64
	aic       float64
}

func (f *ARIMAForecaster) Forecast(series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if len(series) < minSeriesLen {
		return nil, fmt.Errorf("series too short for forecasting: %d points, need %d", len(series), minSeriesLen)
	}

	best := f.selectModel(series)
	if best == nil {
		// Degenerate series (constant or near-constant): hold the last value.
		out := make([]float64, horizon)
		for i := range out {
			out[i] = series[len(series)-1]
		}
		return out, nil
	}

	diffed := series
	tails := make([][]float64, 0, best.d)
	for i := 0; i < best.d; i++ {
		tails = append(tails, diffed)
		diffed = difference(diffed)
	}

	// Iterated one-step AR forecasts on the differenced series.
	window := append([]float64(nil), diffed...)
	preds := make([]float64, 0, horizon)
	for i := 0; i < horizon; i++ {
		next := best.intercept
		for j := 0; j < best.p; j++ {
			next += best.coeffs[j] * window[len(window)-1-j]
		}
		preds = append(preds, next)
		window = append(window, next)
	}

	// Undo the differencing, innermost first.
	for i := best.d - 1; i >= 0; i-- {
		level := tails[i][len(tails[i])-1]
		for j := range preds {
			level += preds[j]
			preds[j] = level
		}
	}

	return preds, nil
}

func (f *ARIMAForecaster) selectModel(series []float64) *arModel {
	var best *arModel

	diffed := series
	for d := 0; d <= maxDiffOrder; d++ {
		if d > 0 {
			diffed = difference(diffed)
		}
		for p := 1; p <= maxAROrder; p++ {
			m := fitAR(diffed, p)
			if m == nil {
				continue
			}
			m.d = d
			if best == nil || m.aic < best.aic {
				best = m
			}
		}
	}

	return best
}

// fitAR fits y[t] = c + a1*y[t-1] + ... + ap*y[t-p] by OLS via the normal
// equations. Returns nil when the system is singular or the sample is too
// small for the order.
func fitAR(series []float64, p int) *arModel {
	n := len(series) - p
	if n < p+2 {
		return nil
	}

	k := p + 1 // intercept + p lags
	xtx := make([][]float64, k)
	for i := range xtx {
		xtx[i] = make([]float64, k)
	}
	xty := make([]float64, k)

	row := make([]float64, k)
	for t := p; t < len(series); t++ {
		row[0] = 1
		for j := 0; j < p; j++ {
			row[j+1] = series[t-1-j]
		}
		y := series[t]
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y
		}
	}

	beta, ok := solve(xtx, xty)
	if !ok {
		return nil
	}

	var rss float64
	for t := p; t < len(series); t++ {
		pred := beta[0]
		for j := 0; j < p; j++ {
			pred += beta[j+1] * series[t-1-j]
		}
		r := series[t] - pred
		rss += r * r
	}
	if rss <= 0 || math.IsNaN(rss) || math.IsInf(rss, 0) {
		return nil
	}

	aic := float64(n)*math.Log(rss/float64(n)) + 2*float64(k)

	return &arModel{
		p:         p,
		intercept: beta[0],
		coeffs:    beta[1:],
		aic:       aic,
	}
}

func difference(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

// solve runs Gaussian elimination with partial pivoting on a copy of the
// inputs. Returns false for singular systems.
func solve(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, true
}
