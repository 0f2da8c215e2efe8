// -----------------------------------------------------------------------
// Watchlist scheduler. Periodically resubmits analysis jobs for a
// configured set of tickers so their cached artifacts stay warm.
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/analysis"
	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/models"
)

type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	watchlist []string
	service   *analysis.Service
	logger    arbor.ILogger
}

func New(cfg *common.SchedulerConfig, service *analysis.Service, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		schedule:  cfg.Schedule,
		watchlist: cfg.Watchlist,
		service:   service,
		logger:    logger,
	}
}

func (s *Scheduler) Start() error {
	if len(s.watchlist) == 0 {
		s.logger.Info().Msg("Scheduler enabled but watchlist is empty, nothing to do")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.refreshWatchlist); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.schedule).
		Int("tickers", len(s.watchlist)).
		Msg("Watchlist scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Watchlist scheduler stopped")
}

// refreshWatchlist submits a simple analysis for every watched ticker. A
// fresh cache entry short-circuits to a no-op, so the run is cheap when
// nothing has expired.
func (s *Scheduler) refreshWatchlist() {
	ctx := context.Background()
	for _, ticker := range s.watchlist {
		jobID, cached, err := s.service.Submit(ctx, ticker, models.AnalysisKindSimple)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Watchlist refresh submission failed")
			continue
		}
		if cached {
			s.logger.Debug().Str("ticker", ticker).Msg("Watchlist ticker still fresh")
			continue
		}
		s.logger.Info().
			Str("ticker", ticker).
			Str("job_id", jobID).
			Msg("Watchlist refresh submitted")
	}
}
