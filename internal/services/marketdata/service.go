// -----------------------------------------------------------------------
// Market data service. Fetches the company descriptor and daily quote
// history from Yahoo Finance and derives simple moving averages.
// -----------------------------------------------------------------------

package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/models"
)

const (
	sma50Window  = 50
	sma200Window = 200
)

type Service struct {
	historyYears int
	logger       arbor.ILogger
}

func NewService(cfg *common.MarketConfig, logger arbor.ILogger) *Service {
	return &Service{
		historyYears: cfg.HistoryYears,
		logger:       logger,
	}
}

func (s *Service) FetchQuoteHistory(ctx context.Context, ticker string) (*models.CompanyInfo, *models.QuoteHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info, err := s.fetchInfo(ticker)
	if err != nil {
		return nil, nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	history, err := s.fetchHistory(ticker)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("bars", len(history.Candles)).
		Msg("Fetched quote history")

	return info, history, nil
}

func (s *Service) fetchInfo(ticker string) (*models.CompanyInfo, error) {
	q, err := quote.Get(ticker)
	if err != nil {
		return nil, models.NewDataUnavailable(
			fmt.Sprintf("Could not fetch data for ticker '%s'. It may be invalid or delisted.", ticker), err)
	}
	if q == nil || q.ShortName == "" {
		return nil, models.NewDataUnavailable(
			fmt.Sprintf("Could not fetch data for ticker '%s'. It may be invalid or delisted.", ticker), nil)
	}

	return &models.CompanyInfo{
		Symbol:   ticker,
		LongName: q.ShortName,
		Exchange: q.FullExchangeName,
		Currency: q.CurrencyID,
	}, nil
}

func (s *Service) fetchHistory(ticker string) (*models.QuoteHistory, error) {
	end := time.Now()
	start := end.AddDate(-s.historyYears, 0, 0)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	history := &models.QuoteHistory{}
	for iter.Next() {
		bar := iter.Bar()
		history.Candles = append(history.Candles, models.Candle{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   bar.Open.InexactFloat64(),
			High:   bar.High.InexactFloat64(),
			Low:    bar.Low.InexactFloat64(),
			Close:  bar.Close.InexactFloat64(),
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, models.NewDataUnavailable(
			fmt.Sprintf("Could not fetch data for ticker '%s'. It may be invalid or delisted.", ticker), err)
	}
	if history.Empty() {
		return nil, models.NewDataUnavailable(
			fmt.Sprintf("No price history available for ticker '%s'.", ticker), nil)
	}

	closes := history.Closes()
	history.SMA50 = movingAverage(closes, sma50Window)
	history.SMA200 = movingAverage(closes, sma200Window)

	return history, nil
}

// movingAverage computes a rolling mean aligned with the input. Positions
// before a full window use the mean of the bars seen so far.
func movingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	var sum float64
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}
