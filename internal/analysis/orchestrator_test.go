package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/forecast"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/jobs"
	"github.com/ternarybob/prestocked/internal/models"
	"github.com/ternarybob/prestocked/internal/sentiment"
)

// ---- fakes ------------------------------------------------------------

type fakeStorage struct {
	mu      sync.Mutex
	records map[string]*models.AnalysisRecord
	fresh   map[string]bool // "TICKER/kind" -> lookup hit
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		records: make(map[string]*models.AnalysisRecord),
		fresh:   make(map[string]bool),
	}
}

func (s *fakeStorage) Lookup(ctx context.Context, ticker string, kind models.AnalysisKind) (*models.AnalysisRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fresh[ticker+"/"+string(kind)] {
		return s.records[ticker], true, nil
	}
	return nil, false, nil
}

func (s *fakeStorage) Get(ctx context.Context, ticker string) (*models.AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[ticker], nil
}

func (s *fakeStorage) record(ticker string) *models.AnalysisRecord {
	if r, ok := s.records[ticker]; ok {
		return r
	}
	r := &models.AnalysisRecord{Ticker: ticker}
	s.records[ticker] = r
	return r
}

func (s *fakeStorage) UpsertSimplePlot(ctx context.Context, ticker, plot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(ticker)
	r.ArimaPlot = plot
	r.LastUpdated = time.Now()
	return nil
}

func (s *fakeStorage) UpsertSimple(ctx context.Context, ticker, plot string, score float64, posts []models.EvidenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(ticker)
	r.ArimaPlot = plot
	r.Sentiment = &score
	r.Posts = posts
	r.LastUpdated = time.Now()
	return nil
}

func (s *fakeStorage) UpsertHybrid(ctx context.Context, ticker, plot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(ticker)
	r.HybridPlot = plot
	r.LastUpdated = time.Now()
	return nil
}

type fakeMarketData struct {
	history *models.QuoteHistory
	err     error
}

func (f *fakeMarketData) FetchQuoteHistory(ctx context.Context, ticker string) (*models.CompanyInfo, *models.QuoteHistory, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.CompanyInfo{Symbol: ticker, LongName: ticker + " Inc."}, f.history, nil
}

type fakeEvidence struct {
	items []models.EvidenceItem
	err   error
}

func (f *fakeEvidence) FetchEvidence(ctx context.Context, ticker string) ([]models.EvidenceItem, error) {
	return f.items, f.err
}

type fakeForecaster struct {
	values []float64
	err    error
	panics bool
}

func (f *fakeForecaster) Forecast(series []float64, horizon int) ([]float64, error) {
	if f.panics {
		panic("forecaster exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

type fakeRenderer struct {
	renders []models.Forecast
}

func (f *fakeRenderer) Render(history *models.QuoteHistory, fc *models.Forecast, ticker string) (string, error) {
	if fc != nil {
		f.renders = append(f.renders, *fc)
	}
	return fmt.Sprintf("<html>%s:%d</html>", ticker, len(f.renders)), nil
}

// ---- fixture ----------------------------------------------------------

type fixture struct {
	orch     *Orchestrator
	registry interfaces.JobRegistry
	storage  *fakeStorage
	market   *fakeMarketData
	evidence *fakeEvidence
	arima    *fakeForecaster
	model    *fakeForecaster
	renderer *fakeRenderer
}

func testHistory(n int) *models.QuoteHistory {
	h := &models.QuoteHistory{}
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		h.Candles = append(h.Candles, models.Candle{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + float64(i),
		})
	}
	return h
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := arbor.NewLogger()

	f := &fixture{
		registry: jobs.NewRegistry(logger),
		storage:  newFakeStorage(),
		market:   &fakeMarketData{history: testHistory(100)},
		evidence: &fakeEvidence{items: []models.EvidenceItem{
			{Title: "strong growth ahead", Score: 5},
		}},
		arima:    &fakeForecaster{values: []float64{110, 111, 112}},
		model:    &fakeForecaster{values: []float64{120, 121, 122}},
		renderer: &fakeRenderer{},
	}

	cfg := &common.AnalysisConfig{HorizonDays: 3}
	f.orch = NewOrchestrator(cfg, Deps{
		Registry:   f.registry,
		Storage:    f.storage,
		MarketData: f.market,
		Evidence:   f.evidence,
		Aggregator: sentiment.NewAggregator(sentiment.NewLexiconScorer()),
		Arima:      f.arima,
		Model:      f.model,
		Adjuster:   forecast.NewSimpleAdjuster(0.1, 0.5),
		Combiner:   forecast.NewCombiner(0.4, 0.4, 0.2),
		Renderer:   f.renderer,
	}, logger)
	return f
}

func (f *fixture) submit(t *testing.T, jobType models.JobType, kind models.AnalysisKind) *models.JobMessage {
	t.Helper()
	job := models.NewJob("AAPL", jobType, kind)
	f.registry.Add(job)
	return &models.JobMessage{JobID: job.ID, Type: jobType, Ticker: "AAPL", Kind: kind}
}

// ---- simple pipeline --------------------------------------------------

func TestSimplePipelineSuccess(t *testing.T) {
	f := newFixture(t)
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	job, ok := f.registry.Get(msg.JobID)
	require.True(t, ok)
	assert.Equal(t, models.JobStateSuccess, job.State)
	require.NotNil(t, job.Result)
	assert.Equal(t, "AAPL", job.Result.Ticker)

	rec, err := f.storage.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ArimaPlot)
	require.NotNil(t, rec.Sentiment)
	assert.Greater(t, *rec.Sentiment, 0.0)
	require.Len(t, rec.Posts, 1)
	assert.Equal(t, models.SentimentPositive, rec.Posts[0].Sentiment)

	// Partial commit then final commit: two rendered charts.
	assert.Len(t, f.renderer.renders, 2)
}

func TestSimplePipelineAdjustsForecastOnStrongSentiment(t *testing.T) {
	f := newFixture(t)
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))
	require.Len(t, f.renderer.renders, 2)

	raw := f.renderer.renders[0].Values
	adjusted := f.renderer.renders[1].Values
	require.Len(t, adjusted, len(raw))
	// The fixture evidence is strongly positive, so the final chart's
	// forecast is scaled up from the partial one.
	assert.Greater(t, adjusted[0], raw[0])
}

func TestSimplePipelineEmptyEvidenceKeepsPartialArtifact(t *testing.T) {
	f := newFixture(t)
	f.evidence.items = nil
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Contains(t, job.Status, "No results found for 'AAPL'")

	// The forecast chart committed before the sentiment stage survives.
	rec, err := f.storage.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ArimaPlot)
	assert.Nil(t, rec.Sentiment)
}

func TestSimplePipelineDataUnavailable(t *testing.T) {
	f := newFixture(t)
	f.market.err = models.NewDataUnavailable("Could not fetch data for ticker 'AAPL'. It may be invalid or delisted.", nil)
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Contains(t, job.Status, "Could not fetch data")

	rec, _ := f.storage.Get(context.Background(), "AAPL")
	assert.Nil(t, rec)
}

func TestSimplePipelineForecastFailure(t *testing.T) {
	f := newFixture(t)
	f.arima.err = errors.New("series too short")
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Contains(t, job.Status, "Could not generate a forecast for 'AAPL'")
}

func TestPipelinePanicIsContained(t *testing.T) {
	f := newFixture(t)
	f.arima.panics = true
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Equal(t, "An unexpected error occurred.", job.Status)
}

// ---- hybrid pipeline --------------------------------------------------

func TestHybridPipelineSuccess(t *testing.T) {
	f := newFixture(t)
	msg := f.submit(t, models.JobTypeHybridAnalysis, models.AnalysisKindHybrid)

	require.NoError(t, f.orch.HandleHybrid(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateSuccess, job.State)

	rec, err := f.storage.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.HybridPlot)
	assert.Empty(t, rec.ArimaPlot)

	// Exactly one chart: the hybrid pipeline has no partial-commit point.
	require.Len(t, f.renderer.renders, 1)
	combined := f.renderer.renders[0].Values
	require.Len(t, combined, 3)
	// (110*0.4 + 120*0.4) scaled by the positive sentiment multiplier.
	assert.Greater(t, combined[0], 92.0)
}

func TestHybridPipelineEmptyEvidenceCommitsNothing(t *testing.T) {
	f := newFixture(t)
	f.evidence.items = nil
	msg := f.submit(t, models.JobTypeHybridAnalysis, models.AnalysisKindHybrid)

	require.NoError(t, f.orch.HandleHybrid(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Contains(t, job.Status, "No results found for 'AAPL'")

	rec, _ := f.storage.Get(context.Background(), "AAPL")
	assert.Nil(t, rec)
	assert.Empty(t, f.renderer.renders)
}

func TestHybridPipelineEvidenceErrorFailsJob(t *testing.T) {
	f := newFixture(t)
	f.evidence.err = models.NewEvidenceCollection("Could not collect discussion data for 'AAPL'.", errors.New("boom"))
	msg := f.submit(t, models.JobTypeHybridAnalysis, models.AnalysisKindHybrid)

	require.NoError(t, f.orch.HandleHybrid(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	assert.Equal(t, models.JobStateFailure, job.State)
	assert.Contains(t, job.Status, "Could not collect discussion data")
}

// ---- backtest ---------------------------------------------------------

func TestBacktestReportsMetrics(t *testing.T) {
	f := newFixture(t)
	// Real forecasters so walk-forward evaluation exercises the math.
	f.orch.arima = forecast.NewARIMAForecaster()
	f.orch.model = forecast.NewARIMAForecaster()
	msg := f.submit(t, models.JobTypeBacktest, "")

	require.NoError(t, f.orch.HandleBacktest(context.Background(), msg))

	job, _ := f.registry.Get(msg.JobID)
	require.Equal(t, models.JobStateSuccess, job.State)
	require.NotNil(t, job.Result)
	require.NotNil(t, job.Result.Backtest)
	assert.GreaterOrEqual(t, job.Result.Backtest.ArimaRMSE, job.Result.Backtest.ArimaMAE)
}

func TestStatusMessagesProgressInOrder(t *testing.T) {
	f := newFixture(t)
	msg := f.submit(t, models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)

	require.NoError(t, f.orch.HandleSimple(context.Background(), msg))

	// The terminal status is the success summary, not a stage message.
	job, _ := f.registry.Get(msg.JobID)
	assert.False(t, strings.HasSuffix(job.Status, "..."))
	assert.Equal(t, "Analysis complete", job.Status)
}
