// Package server exposes the lateral optimizer as an HTTP solve-job service.
// Each job runs one solve on its own Problem instance, so any number of jobs
// may run in parallel without shared state.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/gangadharKorrapati/apollo/internal/lateral"
	"github.com/gangadharKorrapati/apollo/internal/store"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// Job represents one lateral solve job
type Job struct {
	ID         string           `json:"id"`
	State      JobState         `json:"state"`
	Scenario   lateral.Scenario `json:"scenario"`
	Status     string           `json:"status,omitempty"`
	Objective  float64          `json:"objective,omitempty"`
	Iterations int              `json:"iterations,omitempty"`
	Samples    []store.Sample   `json:"samples,omitempty"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*Job),
	}
}

// CreateJob creates a new pending job for the given scenario
func (jm *JobManager) CreateJob(sc lateral.Scenario) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Scenario:  sc,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a copy of a job by ID
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns copies of all jobs
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}
