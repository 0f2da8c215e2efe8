// -----------------------------------------------------------------------
// AnalysisStorage - result cache keyed by ticker with per-kind freshness
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger.
//
// Upserts are read-modify-write and must not interleave for the same ticker,
// so each write takes a per-ticker mutex. The mutex map only ever grows; the
// ticker universe is small (2-5 character symbols) and entries are a few bytes.
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAnalysisStorage creates a new AnalysisStorage with the given freshness
// window.
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger, window time.Duration) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
		window: window,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the write mutex for a ticker, creating it on first use.
func (s *AnalysisStorage) lockFor(ticker string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ticker]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ticker] = l
	}
	return l
}

// Get returns the record for a ticker, or nil when absent.
func (s *AnalysisStorage) Get(ctx context.Context, ticker string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	if err := s.db.Store().Get(ticker, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis record: %w", err)
	}
	return &record, nil
}

// Lookup implements the cache-hit contract: a record must exist, the artifact
// field for the kind must be non-empty, and LastUpdated must fall inside the
// freshness window. Both kinds share LastUpdated, so a recent hybrid write
// revives apparent freshness of an untouched simple artifact (and vice
// versa); that behavior is deliberate and covered by a test.
func (s *AnalysisStorage) Lookup(ctx context.Context, ticker string, kind models.AnalysisKind) (*models.AnalysisRecord, bool, error) {
	record, err := s.Get(ctx, ticker)
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		return nil, false, nil
	}
	if !record.HasArtifact(kind) || !record.Fresh(s.now(), s.window) {
		return record, false, nil
	}
	return record, true, nil
}

// UpsertSimplePlot writes the partial simple artifact: chart only, previous
// sentiment evidence untouched.
func (s *AnalysisStorage) UpsertSimplePlot(ctx context.Context, ticker, plot string) error {
	return s.update(ticker, func(record *models.AnalysisRecord) {
		record.ArimaPlot = plot
	})
}

// UpsertSimple writes the final simple artifact.
func (s *AnalysisStorage) UpsertSimple(ctx context.Context, ticker, plot string, sentiment float64, posts []models.EvidenceItem) error {
	return s.update(ticker, func(record *models.AnalysisRecord) {
		record.ArimaPlot = plot
		record.Sentiment = &sentiment
		record.Posts = posts
	})
}

// UpsertHybrid writes the hybrid artifact.
func (s *AnalysisStorage) UpsertHybrid(ctx context.Context, ticker, plot string) error {
	return s.update(ticker, func(record *models.AnalysisRecord) {
		record.HybridPlot = plot
	})
}

// update performs the locked read-modify-write upsert. Every write refreshes
// LastUpdated for the whole record.
func (s *AnalysisStorage) update(ticker string, apply func(*models.AnalysisRecord)) error {
	l := s.lockFor(ticker)
	l.Lock()
	defer l.Unlock()

	var record models.AnalysisRecord
	err := s.db.Store().Get(ticker, &record)
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to read analysis record: %w", err)
	}
	record.Ticker = ticker

	apply(&record)
	record.LastUpdated = s.now()

	if err := s.db.Store().Upsert(ticker, &record); err != nil {
		return fmt.Errorf("failed to upsert analysis record: %w", err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Msg("Analysis record updated")

	return nil
}
