package jobs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/prestocked/internal/models"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(arbor.NewLogger())

	job := models.NewJob("AAPL", models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)
	r.Add(job)

	got, ok := r.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.JobStatePending, got.State)
	assert.Equal(t, "AAPL", got.Ticker)

	require.NoError(t, r.SetState(job.ID, models.JobStateProgress, "Fetching stock data...", nil))
	got, _ = r.Get(job.ID)
	assert.Equal(t, models.JobStateProgress, got.State)
	assert.Equal(t, "Fetching stock data...", got.Status)

	result := &models.JobResult{Status: "complete", Ticker: "AAPL"}
	require.NoError(t, r.SetState(job.ID, models.JobStateSuccess, "Analysis complete.", result))
	got, _ = r.Get(job.ID)
	assert.Equal(t, models.JobStateSuccess, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, "complete", got.Result.Status)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	r := NewRegistry(arbor.NewLogger())

	job := models.NewJob("MSFT", models.JobTypeSimpleAnalysis, models.AnalysisKindSimple)
	r.Add(job)

	require.NoError(t, r.SetState(job.ID, models.JobStateFailure, "No historical data found for MSFT", nil))

	err := r.SetState(job.ID, models.JobStateProgress, "resuming", nil)
	assert.Error(t, err, "a terminated job must not resume")

	got, _ := r.Get(job.ID)
	assert.Equal(t, models.JobStateFailure, got.State)
	assert.Equal(t, "No historical data found for MSFT", got.Status)
}

func TestUnknownJob(t *testing.T) {
	r := NewRegistry(arbor.NewLogger())

	_, ok := r.Get("missing")
	assert.False(t, ok)
	assert.Error(t, r.SetState("missing", models.JobStateProgress, "", nil))
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	r := NewRegistry(arbor.NewLogger())
	job := models.NewJob("NVDA", models.JobTypeHybridAnalysis, models.AnalysisKindHybrid)
	r.Add(job)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.SetState(job.ID, models.JobStateProgress, "Generating LSTM forecast...", nil)
	}()

	for i := 0; i < 50; i++ {
		got, ok := r.Get(job.ID)
		require.True(t, ok)
		// A reader sees either the pending or progress snapshot, never a
		// half-written entry.
		assert.Contains(t, []models.JobState{models.JobStatePending, models.JobStateProgress}, got.State)
	}
	wg.Wait()
}
