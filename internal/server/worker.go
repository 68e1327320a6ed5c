package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gangadharKorrapati/apollo/internal/lateral"
	"github.com/gangadharKorrapati/apollo/internal/nlp"
	"github.com/gangadharKorrapati/apollo/internal/store"
	"github.com/gangadharKorrapati/apollo/internal/trajectory"
)

// runJob executes one solve job in the background. A nil solver selects the
// default SLSQP backend; a nil resultStore disables persistence.
func runJob(jm *JobManager, resultStore store.Store, solver nlp.Solver, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting solve job", "job_id", jobID, "stations", len(job.Scenario.Corridors))

	opt, err := job.Scenario.NewOptimizer(solver)
	if err != nil {
		markJobFailed(jm, jobID, nlp.Failed, err)
		return err
	}

	start := time.Now()
	traj, err := opt.Solve()
	if err != nil {
		var nc *lateral.NonConvergenceError
		if errors.As(err, &nc) {
			markJobFailed(jm, jobID, nc.Status, err)
		} else {
			markJobFailed(jm, jobID, nlp.Failed, err)
		}
		return err
	}

	samples := sampleStations(traj, job.Scenario.DeltaS, len(job.Scenario.Corridors))
	sol := opt.Solution()

	now := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Status = nlp.Converged.String()
		j.Objective = sol.Objective
		j.Iterations = sol.Iterations
		j.Samples = samples
		j.EndTime = &now
	})

	slog.Info("Solve job completed",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"stations", len(samples),
	)

	if resultStore != nil {
		persistResult(resultStore, jm, jobID)
	}
	return nil
}

// sampleStations evaluates the trajectory at every station position.
func sampleStations(traj *trajectory.PiecewiseJerk, deltaS float64, n int) []store.Sample {
	samples := make([]store.Sample, n)
	for i := 0; i < n; i++ {
		s := float64(i) * deltaS
		d, dp, dpp := traj.Sample(s)
		samples[i] = store.Sample{S: s, D: d, DPrime: dp, DPPrime: dpp}
	}
	return samples
}

// markJobFailed updates a job to the failed state with error details.
func markJobFailed(jm *JobManager, jobID string, status nlp.Status, err error) {
	now := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Status = status.String()
		j.Error = err.Error()
		j.EndTime = &now
	})
	slog.Warn("Solve job failed", "job_id", jobID, "status", status.String(), "error", err)
}

// persistResult writes the terminal job record through the store.
func persistResult(resultStore store.Store, jm *JobManager, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}
	result := &store.Result{
		JobID:      job.ID,
		Scenario:   job.Scenario,
		Status:     job.Status,
		Objective:  job.Objective,
		Iterations: job.Iterations,
		Samples:    job.Samples,
		CreatedAt:  time.Now(),
	}
	if err := resultStore.SaveResult(jobID, result); err != nil {
		slog.Warn("Failed to persist result", "job_id", jobID, "error", err)
	}
}
