package models

import "time"

// CompanyInfo is the descriptor returned alongside quote history.
// LongName and Symbol must both be present for a usable fetch.
type CompanyInfo struct {
	Symbol   string `json:"symbol"`
	LongName string `json:"long_name"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Candle is one daily bar of quote history.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// QuoteHistory is an ordered daily price series with optional technical
// indicator columns. Indicator slices, when set, are index-aligned with
// Candles.
type QuoteHistory struct {
	Candles []Candle  `json:"candles"`
	SMA50   []float64 `json:"sma50,omitempty"`
	SMA200  []float64 `json:"sma200,omitempty"`
}

// Empty reports whether the history holds no bars.
func (h *QuoteHistory) Empty() bool {
	return h == nil || len(h.Candles) == 0
}

// Closes returns the closing-price series.
func (h *QuoteHistory) Closes() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Close
	}
	return out
}

// LastDate returns the date of the most recent bar, or the zero time for an
// empty history.
func (h *QuoteHistory) LastDate() time.Time {
	if h.Empty() {
		return time.Time{}
	}
	return h.Candles[len(h.Candles)-1].Date
}

// Forecast is a projected price path with its calendar dates.
type Forecast struct {
	Values []float64   `json:"values"`
	Dates  []time.Time `json:"dates"`
}

// Empty reports whether the forecast holds no points.
func (f *Forecast) Empty() bool {
	return f == nil || len(f.Values) == 0
}
