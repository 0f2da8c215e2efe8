package interfaces

import (
	"github.com/ternarybob/prestocked/internal/models"
)

// JobRegistry is the process-wide map from job ID to current state and
// progress. The orchestrator goroutine executing a job is its only writer;
// status-polling callers are concurrent readers and never block on job
// completion.
type JobRegistry interface {
	// Add registers a newly created job in PENDING state.
	Add(job *models.Job)

	// SetState transitions a job, replacing its status message and, for
	// SUCCESS, attaching the result. Transitions out of a terminal state are
	// rejected.
	SetState(jobID string, state models.JobState, status string, result *models.JobResult) error

	// Get returns a snapshot of the job's current state, or false when the
	// ID is unknown.
	Get(jobID string) (models.Job, bool)
}
