// -----------------------------------------------------------------------
// Submission service. Validates requests, consults the result cache, and
// enqueues jobs for asynchronous execution. The freshness check here is
// advisory: two near-simultaneous submissions can both run, and the last
// commit wins.
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/models"
)

type Service struct {
	registry interfaces.JobRegistry
	storage  interfaces.AnalysisStorage
	enqueuer interfaces.Enqueuer
	logger   arbor.ILogger
}

func NewService(registry interfaces.JobRegistry, storage interfaces.AnalysisStorage, enqueuer interfaces.Enqueuer, logger arbor.ILogger) *Service {
	return &Service{
		registry: registry,
		storage:  storage,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Submit validates the request and either reports a cache hit (empty job
// ID) or enqueues a new analysis job.
func (s *Service) Submit(ctx context.Context, rawTicker string, kind models.AnalysisKind) (jobID string, cached bool, err error) {
	ticker := common.NormalizeTicker(rawTicker)
	if !common.ValidTicker(ticker) {
		return "", false, models.NewInvalidInput(
			fmt.Sprintf("Invalid ticker '%s': must be 2-5 alphanumeric characters.", rawTicker))
	}
	if !kind.Valid() {
		return "", false, models.NewInvalidInput(
			fmt.Sprintf("Invalid analysis type '%s'.", kind))
	}

	if _, hit, lerr := s.storage.Lookup(ctx, ticker, kind); lerr == nil && hit {
		s.logger.Debug().
			Str("ticker", ticker).
			Str("kind", string(kind)).
			Msg("Cache hit, skipping job submission")
		return "", true, nil
	}

	job := models.NewJob(ticker, models.JobTypeForKind(kind), kind)
	s.registry.Add(job)

	msg := &models.JobMessage{
		JobID:      job.ID,
		Type:       job.Type,
		Ticker:     ticker,
		Kind:       kind,
		EnqueuedAt: time.Now(),
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		// The registry entry stays behind as FAILURE so a poll on the
		// returned ID would still resolve, but submission reports the error.
		if serr := s.registry.SetState(job.ID, models.JobStateFailure, "Failed to enqueue job.", nil); serr != nil {
			s.logger.Error().Str("job_id", job.ID).Err(serr).Msg("Failed to mark enqueue failure")
		}
		return "", false, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("ticker", ticker).
		Str("kind", string(kind)).
		Msg("Analysis job submitted")

	return job.ID, false, nil
}

// SubmitBacktest enqueues a forecaster evaluation job. Backtests are never
// cached: each submission runs the walk-forward evaluation fresh.
func (s *Service) SubmitBacktest(ctx context.Context, rawTicker string) (string, error) {
	ticker := common.NormalizeTicker(rawTicker)
	if !common.ValidTicker(ticker) {
		return "", models.NewInvalidInput(
			fmt.Sprintf("Invalid ticker '%s': must be 2-5 alphanumeric characters.", rawTicker))
	}

	job := models.NewJob(ticker, models.JobTypeBacktest, "")
	s.registry.Add(job)

	msg := &models.JobMessage{
		JobID:      job.ID,
		Type:       models.JobTypeBacktest,
		Ticker:     ticker,
		EnqueuedAt: time.Now(),
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		if serr := s.registry.SetState(job.ID, models.JobStateFailure, "Failed to enqueue job.", nil); serr != nil {
			s.logger.Error().Str("job_id", job.ID).Err(serr).Msg("Failed to mark enqueue failure")
		}
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("ticker", ticker).
		Msg("Backtest job submitted")

	return job.ID, nil
}
