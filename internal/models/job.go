// -----------------------------------------------------------------------
// Analysis job - ephemeral job state polled by status callers
// -----------------------------------------------------------------------

package models

import (
	"time"

	"github.com/google/uuid"
)

// JobState is the lifecycle state of an analysis job.
// PENDING -> PROGRESS -> (SUCCESS | FAILURE). Terminal states are immutable.
type JobState string

const (
	JobStatePending  JobState = "PENDING"
	JobStateProgress JobState = "PROGRESS"
	JobStateSuccess  JobState = "SUCCESS"
	JobStateFailure  JobState = "FAILURE"
)

// Terminal returns true once a job can no longer change state.
func (s JobState) Terminal() bool {
	return s == JobStateSuccess || s == JobStateFailure
}

// JobType routes queue messages to their pipeline handler.
type JobType string

const (
	JobTypeSimpleAnalysis JobType = "analysis_simple"
	JobTypeHybridAnalysis JobType = "analysis_hybrid"
	JobTypeBacktest       JobType = "backtest"
)

// JobTypeForKind maps an analysis kind to its queue job type.
func JobTypeForKind(kind AnalysisKind) JobType {
	if kind == AnalysisKindHybrid {
		return JobTypeHybridAnalysis
	}
	return JobTypeSimpleAnalysis
}

// BacktestReport holds walk-forward accuracy metrics for both forecasters.
type BacktestReport struct {
	ArimaMAE  float64 `json:"arima_mae"`
	ArimaRMSE float64 `json:"arima_rmse"`
	LSTMMAE   float64 `json:"lstm_mae"`
	LSTMRMSE  float64 `json:"lstm_rmse"`
}

// JobResult is the fixed result schema carried by a SUCCESS state.
// It is a stage summary only - callers fetch artifacts from the analysis
// record, never from the job result.
type JobResult struct {
	Status   string          `json:"status"`
	Ticker   string          `json:"ticker"`
	Backtest *BacktestReport `json:"backtest,omitempty"`
}

// Job is the ephemeral per-submission state held by the registry. It is not
// persisted beyond process lifetime; the orchestrator executing the job is its
// only writer.
type Job struct {
	ID        string       `json:"id"`
	Ticker    string       `json:"ticker"`
	Type      JobType      `json:"type"`
	Kind      AnalysisKind `json:"kind,omitempty"` // empty for non-analysis jobs
	State     JobState     `json:"state"`
	Status    string       `json:"status"` // human-readable last-stage description
	Result    *JobResult   `json:"result,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewJob creates a pending job with a fresh ID.
func NewJob(ticker string, jobType JobType, kind AnalysisKind) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Type:      jobType,
		Kind:      kind,
		State:     JobStatePending,
		Status:    "Pending...",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobMessage is the immutable payload enqueued for asynchronous execution.
// Once enqueued it is never modified; runtime state lives in the registry.
type JobMessage struct {
	JobID      string       `json:"job_id"`
	Type       JobType      `json:"type"`
	Ticker     string       `json:"ticker"`
	Kind       AnalysisKind `json:"kind"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}
