package interfaces

import (
	"context"

	"github.com/ternarybob/prestocked/internal/models"
)

// AnalysisStorage is the result cache: the keyed store of the latest analysis
// artifacts per ticker. Writes are idempotent upserts keyed by ticker and are
// serialized per record, so two concurrently running jobs for the same ticker
// cannot interleave field-level updates.
type AnalysisStorage interface {
	// Lookup returns the record and true when a fresh, non-empty artifact
	// exists for the given kind. Freshness is evaluated against the record's
	// shared LastUpdated timestamp; artifact presence is evaluated per kind.
	Lookup(ctx context.Context, ticker string, kind models.AnalysisKind) (*models.AnalysisRecord, bool, error)

	// Get returns the record for a ticker regardless of freshness, or nil
	// when no record exists.
	Get(ctx context.Context, ticker string) (*models.AnalysisRecord, error)

	// UpsertSimplePlot writes only the simple-pipeline chart, leaving any
	// previous sentiment evidence in place. This is the partial-commit point:
	// a usable forecast is persisted before the sentiment stage runs.
	UpsertSimplePlot(ctx context.Context, ticker, plot string) error

	// UpsertSimple writes the final simple-pipeline artifact.
	UpsertSimple(ctx context.Context, ticker, plot string, sentiment float64, posts []models.EvidenceItem) error

	// UpsertHybrid writes the hybrid-pipeline artifact.
	UpsertHybrid(ctx context.Context, ticker, plot string) error
}
