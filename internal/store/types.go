package store

import (
	"time"

	"github.com/gangadharKorrapati/apollo/internal/lateral"
)

// Sample is the trajectory state at one arc-length position.
type Sample struct {
	S       float64 `json:"s"`
	D       float64 `json:"d"`
	DPrime  float64 `json:"d_prime"`
	DPPrime float64 `json:"d_pprime"`
}

// Result is the persisted record of one lateral solve.
type Result struct {
	// JobID is the unique identifier of the solve job.
	JobID string `json:"jobId"`

	// Scenario is the input the solve was built from.
	Scenario lateral.Scenario `json:"scenario"`

	// Status is the terminal solver status string.
	Status string `json:"status"`

	// Objective is the terminal cost value, meaningful only on convergence.
	Objective float64 `json:"objective"`

	// Iterations is the solver iteration count.
	Iterations int `json:"iterations"`

	// Samples holds the solved trajectory at each station (and any extra
	// sampling positions the producer chose to record).
	Samples []Sample `json:"samples,omitempty"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `json:"createdAt"`
}

// ResultInfo is the lightweight listing view of a persisted result.
type ResultInfo struct {
	JobID      string    `json:"jobId"`
	Status     string    `json:"status"`
	Stations   int       `json:"stations"`
	Objective  float64   `json:"objective"`
	Iterations int       `json:"iterations"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Info projects the result to its listing view.
func (r *Result) Info() ResultInfo {
	return ResultInfo{
		JobID:      r.JobID,
		Status:     r.Status,
		Stations:   len(r.Scenario.Corridors),
		Objective:  r.Objective,
		Iterations: r.Iterations,
		CreatedAt:  r.CreatedAt,
	}
}
