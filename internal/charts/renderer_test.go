package charts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/prestocked/internal/models"
)

func testHistory(n int) *models.QuoteHistory {
	h := &models.QuoteHistory{}
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		h.Candles = append(h.Candles, models.Candle{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + float64(i),
		})
	}
	return h
}

func TestRenderContainsTracesAndTitle(t *testing.T) {
	r := NewPlotlyRenderer()
	history := testHistory(10)
	forecast := &models.Forecast{Values: []float64{111, 112, 113}}

	html, err := r.Render(history, forecast, "aapl")
	require.NoError(t, err)

	assert.Contains(t, html, "Pre-Stocked: AAPL Stock Price Analysis &amp; Forecast")
	assert.Contains(t, html, `"Close"`)
	assert.Contains(t, html, `"Forecast"`)
	assert.Contains(t, html, "Plotly.newPlot")
	assert.Contains(t, html, "2025-01-06")
}

func TestRenderIncludesIndicatorsWhenAligned(t *testing.T) {
	r := NewPlotlyRenderer()
	history := testHistory(10)
	history.SMA50 = make([]float64, 10)
	history.SMA200 = make([]float64, 9) // misaligned, must be skipped

	html, err := r.Render(history, nil, "MSFT")
	require.NoError(t, err)
	assert.Contains(t, html, `"SMA 50"`)
	assert.NotContains(t, html, `"SMA 200"`)
}

func TestRenderEmptyHistoryFails(t *testing.T) {
	r := NewPlotlyRenderer()
	_, err := r.Render(&models.QuoteHistory{}, nil, "AAPL")
	assert.Error(t, err)
}

func TestForecastDatesSkipWeekends(t *testing.T) {
	// Friday 2025-01-10; next business days are Mon 13th, Tue 14th.
	last := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	got := forecastDates(last, &models.Forecast{Values: []float64{1, 2}})
	assert.Equal(t, []string{"2025-01-13", "2025-01-14"}, got)
}

func TestForecastDatesPreferExplicitDates(t *testing.T) {
	f := &models.Forecast{
		Values: []float64{1},
		Dates:  []time.Time{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := forecastDates(time.Now(), f)
	assert.Equal(t, []string{"2025-03-01"}, got)
}

func TestRenderProducesParseableDocument(t *testing.T) {
	r := NewPlotlyRenderer()
	html, err := r.Render(testHistory(5), nil, "TSLA")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "</html>")
}
