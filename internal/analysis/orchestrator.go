// -----------------------------------------------------------------------
// Analysis orchestrator. Executes the simple, hybrid and backtest
// pipelines on worker goroutines, reporting stage progress through the
// job registry and committing artifacts to the result cache.
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/forecast"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/models"
	"github.com/ternarybob/prestocked/internal/sentiment"
)

type Orchestrator struct {
	registry   interfaces.JobRegistry
	storage    interfaces.AnalysisStorage
	marketData interfaces.MarketDataService
	evidence   interfaces.EvidenceService
	aggregator *sentiment.Aggregator
	arima      interfaces.Forecaster
	model      interfaces.Forecaster
	adjuster   SimpleAdjuster
	combiner   Combiner
	renderer   interfaces.ChartRenderer
	horizon    int
	logger     arbor.ILogger
}

// SimpleAdjuster gates a forecast adjustment on decisive sentiment.
type SimpleAdjuster interface {
	Adjust(values []float64, sentiment float64) []float64
}

// Combiner blends two forecasts under a sentiment multiplier.
type Combiner interface {
	Combine(arima, model []float64, sentiment float64) ([]float64, error)
}

type Deps struct {
	Registry   interfaces.JobRegistry
	Storage    interfaces.AnalysisStorage
	MarketData interfaces.MarketDataService
	Evidence   interfaces.EvidenceService
	Aggregator *sentiment.Aggregator
	Arima      interfaces.Forecaster
	Model      interfaces.Forecaster
	Adjuster   SimpleAdjuster
	Combiner   Combiner
	Renderer   interfaces.ChartRenderer
}

func NewOrchestrator(cfg *common.AnalysisConfig, deps Deps, logger arbor.ILogger) *Orchestrator {
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	return &Orchestrator{
		registry:   deps.Registry,
		storage:    deps.Storage,
		marketData: deps.MarketData,
		evidence:   deps.Evidence,
		aggregator: deps.Aggregator,
		arima:      deps.Arima,
		model:      deps.Model,
		adjuster:   deps.Adjuster,
		combiner:   deps.Combiner,
		renderer:   deps.Renderer,
		horizon:    horizon,
		logger:     logger,
	}
}

// HandleSimple runs the ARIMA-plus-sentiment pipeline for a queued job.
func (o *Orchestrator) HandleSimple(ctx context.Context, msg *models.JobMessage) error {
	return o.run(msg, func() error {
		return o.runSimple(ctx, msg)
	})
}

// HandleHybrid runs the two-model ensemble pipeline for a queued job.
func (o *Orchestrator) HandleHybrid(ctx context.Context, msg *models.JobMessage) error {
	return o.run(msg, func() error {
		return o.runHybrid(ctx, msg)
	})
}

// HandleBacktest evaluates both forecasters against held-out history.
func (o *Orchestrator) HandleBacktest(ctx context.Context, msg *models.JobMessage) error {
	return o.run(msg, func() error {
		return o.runBacktest(ctx, msg)
	})
}

// run wraps a pipeline with panic recovery and terminal-state reporting.
// Pipeline errors land in the registry as FAILURE; the queue message is
// always considered handled.
func (o *Orchestrator) run(msg *models.JobMessage, pipeline func() error) error {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("job_id", msg.JobID).
				Str("ticker", msg.Ticker).
				Msg(fmt.Sprintf("Pipeline panic: %v", r))
			o.fail(msg.JobID, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if err := pipeline(); err != nil {
		kind, _ := models.Classify(err)
		o.logger.Warn().
			Str("job_id", msg.JobID).
			Str("ticker", msg.Ticker).
			Str("kind", string(kind)).
			Err(err).
			Msg("Pipeline failed")
		o.fail(msg.JobID, err)
	}
	return nil
}

func (o *Orchestrator) fail(jobID string, err error) {
	_, message := models.Classify(err)
	if serr := o.registry.SetState(jobID, models.JobStateFailure, message, nil); serr != nil {
		o.logger.Error().Str("job_id", jobID).Err(serr).Msg("Failed to record job failure")
	}
}

func (o *Orchestrator) progress(jobID, status string) {
	if err := o.registry.SetState(jobID, models.JobStateProgress, status, nil); err != nil {
		o.logger.Warn().Str("job_id", jobID).Err(err).Msg("Failed to update job progress")
	}
}

func (o *Orchestrator) succeed(jobID string, result *models.JobResult) {
	if err := o.registry.SetState(jobID, models.JobStateSuccess, result.Status, result); err != nil {
		o.logger.Error().Str("job_id", jobID).Err(err).Msg("Failed to record job success")
	}
}

func (o *Orchestrator) runSimple(ctx context.Context, msg *models.JobMessage) error {
	ticker := msg.Ticker

	o.progress(msg.JobID, "Fetching stock data...")
	_, history, err := o.marketData.FetchQuoteHistory(ctx, ticker)
	if err != nil {
		return err
	}

	o.progress(msg.JobID, "Calculating technical indicators...")
	closes := history.Closes()

	o.progress(msg.JobID, "Generating ARIMA forecast...")
	values, err := o.arima.Forecast(closes, o.horizon)
	if err != nil {
		return models.NewForecastUnavailable(
			fmt.Sprintf("Could not generate a forecast for '%s'.", ticker), err)
	}
	forecast := &models.Forecast{Values: values}

	plot, err := o.renderer.Render(history, forecast, ticker)
	if err != nil {
		return err
	}

	// Commit the forecast chart before the sentiment stage so a usable
	// artifact survives an evidence failure.
	if err := o.storage.UpsertSimplePlot(ctx, ticker, plot); err != nil {
		return err
	}

	o.progress(msg.JobID, "Analyzing Reddit sentiment...")
	items, err := o.evidence.FetchEvidence(ctx, ticker)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return models.NewEvidenceCollection(
			fmt.Sprintf("No results found for '%s'.", ticker), nil)
	}

	score := o.aggregator.Aggregate(items)
	items = o.aggregator.Annotate(items)

	adjusted := o.adjuster.Adjust(values, score)
	plot, err = o.renderer.Render(history, &models.Forecast{Values: adjusted}, ticker)
	if err != nil {
		return err
	}

	if err := o.storage.UpsertSimple(ctx, ticker, plot, score, items); err != nil {
		return err
	}

	o.logger.Info().
		Str("job_id", msg.JobID).
		Str("ticker", ticker).
		Msg("Simple analysis complete")

	o.succeed(msg.JobID, &models.JobResult{Status: "Analysis complete", Ticker: ticker})
	return nil
}

func (o *Orchestrator) runHybrid(ctx context.Context, msg *models.JobMessage) error {
	ticker := msg.Ticker

	o.progress(msg.JobID, "Fetching stock data...")
	_, history, err := o.marketData.FetchQuoteHistory(ctx, ticker)
	if err != nil {
		return err
	}

	o.progress(msg.JobID, "Analyzing Reddit sentiment...")
	items, err := o.evidence.FetchEvidence(ctx, ticker)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return models.NewEvidenceCollection(
			fmt.Sprintf("No results found for '%s'.", ticker), nil)
	}
	score := o.aggregator.Aggregate(items)

	closes := history.Closes()

	o.progress(msg.JobID, "Generating ARIMA forecast...")
	arimaValues, err := o.arima.Forecast(closes, o.horizon)
	if err != nil {
		return models.NewForecastUnavailable(
			fmt.Sprintf("Could not generate a forecast for '%s'.", ticker), err)
	}

	o.progress(msg.JobID, "Training price model...")
	modelValues, err := o.model.Forecast(closes, o.horizon)
	if err != nil {
		return models.NewForecastUnavailable(
			fmt.Sprintf("Could not generate a forecast for '%s'.", ticker), err)
	}

	o.progress(msg.JobID, "Combining model outputs...")
	combined, err := o.combiner.Combine(arimaValues, modelValues, score)
	if err != nil {
		return err
	}

	plot, err := o.renderer.Render(history, &models.Forecast{Values: combined}, ticker)
	if err != nil {
		return err
	}
	if err := o.storage.UpsertHybrid(ctx, ticker, plot); err != nil {
		return err
	}

	o.logger.Info().
		Str("job_id", msg.JobID).
		Str("ticker", ticker).
		Msg("Hybrid analysis complete")

	o.succeed(msg.JobID, &models.JobResult{Status: "Analysis complete", Ticker: ticker})
	return nil
}

func (o *Orchestrator) runBacktest(ctx context.Context, msg *models.JobMessage) error {
	ticker := msg.Ticker

	o.progress(msg.JobID, "Fetching stock data...")
	_, history, err := o.marketData.FetchQuoteHistory(ctx, ticker)
	if err != nil {
		return err
	}
	closes := history.Closes()

	o.progress(msg.JobID, "Backtesting forecasters...")
	report := &models.BacktestReport{}
	report.ArimaMAE, report.ArimaRMSE, err = forecast.Evaluate(o.arima, closes)
	if err != nil {
		return models.NewForecastUnavailable(
			fmt.Sprintf("Could not backtest '%s'.", ticker), err)
	}
	report.LSTMMAE, report.LSTMRMSE, err = forecast.Evaluate(o.model, closes)
	if err != nil {
		return models.NewForecastUnavailable(
			fmt.Sprintf("Could not backtest '%s'.", ticker), err)
	}

	o.logger.Info().
		Str("job_id", msg.JobID).
		Str("ticker", ticker).
		Msg("Backtest complete")

	o.succeed(msg.JobID, &models.JobResult{
		Status:   "Backtest complete",
		Ticker:   ticker,
		Backtest: report,
	})
	return nil
}
