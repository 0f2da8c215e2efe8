package interfaces

import (
	"context"

	"github.com/ternarybob/prestocked/internal/models"
)

// MarketDataService fetches quote history and the company descriptor for a
// ticker. Implementations return a data-unavailable taxonomy error when the
// history is empty or descriptor fields are missing.
type MarketDataService interface {
	FetchQuoteHistory(ctx context.Context, ticker string) (*models.CompanyInfo, *models.QuoteHistory, error)
}

// EvidenceService collects sentiment evidence for a ticker from the forum API.
// An empty result is not an error at this layer; the orchestrator decides how
// to surface it.
type EvidenceService interface {
	FetchEvidence(ctx context.Context, ticker string) ([]models.EvidenceItem, error)
}

// Forecaster produces a point forecast over a closing-price series. The
// returned slice has exactly horizon entries; an empty or short series yields
// an error, never a truncated forecast.
type Forecaster interface {
	Forecast(series []float64, horizon int) ([]float64, error)
}

// ChartRenderer renders history plus forecast into an opaque artifact payload.
type ChartRenderer interface {
	Render(history *models.QuoteHistory, forecast *models.Forecast, ticker string) (string, error)
}

// Enqueuer submits a job message for asynchronous execution. The submission
// path returns to the caller as soon as the message is durable; execution
// happens on the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *models.JobMessage) error
}
