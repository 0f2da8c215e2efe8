// -----------------------------------------------------------------------
// Application wiring. Constructs every component with explicit
// dependencies - storage, queue, pipelines, handlers - and owns startup
// and shutdown ordering.
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/analysis"
	"github.com/ternarybob/prestocked/internal/charts"
	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/forecast"
	"github.com/ternarybob/prestocked/internal/handlers"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/jobs"
	"github.com/ternarybob/prestocked/internal/models"
	"github.com/ternarybob/prestocked/internal/queue"
	"github.com/ternarybob/prestocked/internal/scheduler"
	"github.com/ternarybob/prestocked/internal/sentiment"
	"github.com/ternarybob/prestocked/internal/services/forum"
	"github.com/ternarybob/prestocked/internal/services/marketdata"
	badgerstore "github.com/ternarybob/prestocked/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB       *badgerstore.BadgerDB
	Storage  interfaces.AnalysisStorage
	Registry interfaces.JobRegistry

	QueueManager *queue.Manager
	WorkerPool   *queue.WorkerPool

	MarketData   interfaces.MarketDataService
	Evidence     interfaces.EvidenceService
	Orchestrator *analysis.Orchestrator
	Service      *analysis.Service
	Scheduler    *scheduler.Scheduler

	AnalysisHandler *handlers.AnalysisHandler
	APIHandler      *handlers.APIHandler
}

// New wires the application together from configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badgerstore.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	storage := badgerstore.NewAnalysisStorage(db, logger, cfg.Analysis.CacheWindow())
	registry := jobs.NewRegistry(logger)

	manager, err := queue.NewManager(db.Store().Badger(), cfg.Queue.QueueName,
		cfg.Queue.VisibilityTimeoutDuration(), cfg.Queue.MaxReceive)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create queue: %w", err)
	}

	pool := queue.NewWorkerPool(manager, cfg.Queue.Concurrency, cfg.Queue.PollIntervalDuration(), logger)

	market := marketdata.NewService(&cfg.MarketData, logger)
	evidence := forum.NewClient(&cfg.Forum, logger)

	orchestrator := analysis.NewOrchestrator(&cfg.Analysis, analysis.Deps{
		Registry:   registry,
		Storage:    storage,
		MarketData: market,
		Evidence:   evidence,
		Aggregator: sentiment.NewAggregator(sentiment.NewLexiconScorer()),
		Arima:      forecast.NewARIMAForecaster(),
		Model:      forecast.NewWindowForecaster(),
		Adjuster:   forecast.NewSimpleAdjuster(cfg.Analysis.SimpleThreshold, cfg.Analysis.SimpleCoeff),
		Combiner:   forecast.NewCombiner(cfg.Analysis.ArimaWeight, cfg.Analysis.LSTMWeight, cfg.Analysis.SentimentWeight),
		Renderer:   charts.NewPlotlyRenderer(),
	}, logger)

	pool.RegisterHandler(models.JobTypeSimpleAnalysis, orchestrator.HandleSimple)
	pool.RegisterHandler(models.JobTypeHybridAnalysis, orchestrator.HandleHybrid)
	pool.RegisterHandler(models.JobTypeBacktest, orchestrator.HandleBacktest)

	service := analysis.NewService(registry, storage, manager, logger)

	app := &App{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Storage:         storage,
		Registry:        registry,
		QueueManager:    manager,
		WorkerPool:      pool,
		MarketData:      market,
		Evidence:        evidence,
		Orchestrator:    orchestrator,
		Service:         service,
		AnalysisHandler: handlers.NewAnalysisHandler(service, registry, storage, logger),
		APIHandler:      handlers.NewAPIHandler(),
	}

	if cfg.Scheduler.Enabled {
		app.Scheduler = scheduler.New(&cfg.Scheduler, service, logger)
	}

	return app, nil
}

// Start launches the worker pool and, when enabled, the watchlist scheduler.
func (a *App) Start() error {
	if err := a.WorkerPool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	return nil
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if err := a.WorkerPool.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Worker pool stop reported an error")
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
