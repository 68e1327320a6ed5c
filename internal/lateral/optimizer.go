package lateral

import (
	"fmt"
	"log/slog"

	"github.com/gangadharKorrapati/apollo/internal/nlp"
	"github.com/gangadharKorrapati/apollo/internal/trajectory"
)

// NonConvergenceError reports a solve that terminated without a usable
// solution. No partial trajectory is produced.
type NonConvergenceError struct {
	Status     nlp.Status
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("lateral: solver terminated %s after %d iterations", e.Status, e.Iterations)
}

// Optimizer orchestrates one solve: it owns a Problem, hands it to the
// injected solver and extracts the piecewise trajectory from the terminal
// solution. Instances are single-use; parallel solves need independent
// instances.
type Optimizer struct {
	problem  *Problem
	solver   nlp.Solver
	terminal *nlp.Solution
}

// NewOptimizer pairs a formulation with the solver that will drive it.
func NewOptimizer(problem *Problem, solver nlp.Solver) *Optimizer {
	return &Optimizer{problem: problem, solver: solver}
}

// Problem exposes the owned formulation for pre-solve tuning.
func (o *Optimizer) Problem() *Problem { return o.problem }

// Solution returns the terminal solver report of the last Solve call, or nil
// before the solver has run.
func (o *Optimizer) Solution() *nlp.Solution { return o.terminal }

// Solve runs the solver to a terminal status. On convergence it returns the
// accumulated trajectory; otherwise a NonConvergenceError carrying the
// terminal status, or the solver's own error.
func (o *Optimizer) Solve() (*trajectory.PiecewiseJerk, error) {
	sol, err := o.solver.Solve(o.problem)
	if err != nil {
		return nil, fmt.Errorf("lateral: solver failed: %w", err)
	}
	o.terminal = sol

	if sol.Status != nlp.Converged {
		slog.Warn("Lateral solve did not converge",
			"status", sol.Status.String(),
			"iterations", sol.Iterations,
		)
		return nil, &NonConvergenceError{Status: sol.Status, Iterations: sol.Iterations}
	}

	slog.Debug("Lateral solve converged",
		"stations", o.problem.NumStations(),
		"objective", sol.Objective,
		"iterations", sol.Iterations,
	)

	o.problem.Finalize(sol.X)
	return o.problem.OptimalTrajectory(), nil
}
