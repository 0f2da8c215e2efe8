// -----------------------------------------------------------------------
// Job registry - process-wide job state map queried by status polling
// -----------------------------------------------------------------------

package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/models"
)

// Registry holds every job submitted during this process's lifetime. Each job
// has a single writer (the orchestrator goroutine executing it) and any number
// of polling readers; writes replace the whole entry, so readers always see a
// consistent snapshot.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	logger arbor.ILogger
}

// NewRegistry creates an empty job registry.
func NewRegistry(logger arbor.ILogger) interfaces.JobRegistry {
	return &Registry{
		jobs:   make(map[string]*models.Job),
		logger: logger,
	}
}

// Add registers a newly created job.
func (r *Registry) Add(job *models.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *job
	r.jobs[job.ID] = &copied

	r.logger.Debug().
		Str("job_id", job.ID).
		Str("ticker", job.Ticker).
		Str("type", string(job.Type)).
		Msg("Job registered")
}

// SetState transitions a job. Terminal states are immutable: a transition out
// of SUCCESS or FAILURE is rejected so a terminated job can never resume.
func (r *Registry) SetState(jobID string, state models.JobState, status string, result *models.JobResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if job.State.Terminal() {
		return fmt.Errorf("job %s already terminated in state %s", jobID, job.State)
	}

	updated := *job
	updated.State = state
	updated.Status = status
	updated.Result = result
	updated.UpdatedAt = time.Now()
	r.jobs[jobID] = &updated

	return nil
}

// Get returns a snapshot of the job's current state. Lookups never block on
// job completion.
func (r *Registry) Get(jobID string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}
