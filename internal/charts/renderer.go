// -----------------------------------------------------------------------
// Chart rendering. Produces a self-contained Plotly HTML document with the
// price history, moving averages and forecast traces for a ticker.
// -----------------------------------------------------------------------

package charts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ternarybob/prestocked/internal/models"
)

const dateLayout = "2006-01-02"

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8"/>
    <title>{{.Title}}</title>
    <script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
</head>
<body>
    <div id="chart" style="width:100%;height:100vh;"></div>
    <script>
        var traces = {{.Traces}};
        var layout = {
            title: {text: {{.Title}}},
            xaxis: {title: {text: "Date"}},
            yaxis: {title: {text: "Price"}},
            hovermode: "x unified"
        };
        Plotly.newPlot("chart", traces, layout, {responsive: true});
    </script>
</body>
</html>
`))

type trace struct {
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
	Name string    `json:"name"`
	Mode string    `json:"mode"`
	Line struct {
		Dash string `json:"dash,omitempty"`
	} `json:"line"`
}

type PlotlyRenderer struct{}

func NewPlotlyRenderer() *PlotlyRenderer {
	return &PlotlyRenderer{}
}

func (r *PlotlyRenderer) Render(history *models.QuoteHistory, forecast *models.Forecast, ticker string) (string, error) {
	if history.Empty() {
		return "", fmt.Errorf("cannot render chart for %s: empty history", ticker)
	}

	dates := make([]string, len(history.Candles))
	for i, c := range history.Candles {
		dates[i] = c.Date.Format(dateLayout)
	}

	traces := []trace{
		lineTrace(dates, history.Closes(), "Close", ""),
	}
	if len(history.SMA50) == len(history.Candles) {
		traces = append(traces, lineTrace(dates, history.SMA50, "SMA 50", "dot"))
	}
	if len(history.SMA200) == len(history.Candles) {
		traces = append(traces, lineTrace(dates, history.SMA200, "SMA 200", "dot"))
	}

	if !forecast.Empty() {
		fdates := forecastDates(history.LastDate(), forecast)
		traces = append(traces, lineTrace(fdates, forecast.Values, "Forecast", "dash"))
	}

	payload, err := json.Marshal(traces)
	if err != nil {
		return "", fmt.Errorf("failed to encode chart traces: %w", err)
	}

	var buf bytes.Buffer
	err = chartTemplate.Execute(&buf, struct {
		Title  string
		Traces template.JS
	}{
		Title:  fmt.Sprintf("Pre-Stocked: %s Stock Price Analysis & Forecast", strings.ToUpper(ticker)),
		Traces: template.JS(payload),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	return buf.String(), nil
}

func lineTrace(x []string, y []float64, name, dash string) trace {
	t := trace{X: x, Y: y, Name: name, Mode: "lines"}
	t.Line.Dash = dash
	return t
}

// forecastDates projects business-day dates forward from the last bar,
// falling back to the forecast's own dates when present.
func forecastDates(last time.Time, forecast *models.Forecast) []string {
	if len(forecast.Dates) == len(forecast.Values) && len(forecast.Dates) > 0 {
		out := make([]string, len(forecast.Dates))
		for i, d := range forecast.Dates {
			out[i] = d.Format(dateLayout)
		}
		return out
	}

	out := make([]string, 0, len(forecast.Values))
	d := last
	for len(out) < len(forecast.Values) {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, d.Format(dateLayout))
	}
	return out
}
