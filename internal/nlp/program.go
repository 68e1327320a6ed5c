// Package nlp defines the contract between a constrained nonlinear program
// and the solver that drives it, plus an SLSQP-backed solver implementation.
//
// A Program describes the problem through callbacks: sizes, bounds, starting
// point, objective with gradient, and constraints with a sparse Jacobian.
// Sparse matrices use a two-phase protocol: the pattern of (row, col) entries
// is queried once and stays fixed, then value buffers aligned with that
// pattern are filled on demand. All indexing is 0-based.
package nlp

// Entry is one structural non-zero of a sparse matrix.
type Entry struct {
	Row, Col int
}

// Program is the callback contract a solver consumes.
//
// Evaluation callbacks are pure functions of x and never fail for a
// well-formed program; a mis-sized buffer is a programming error and panics.
// One Program instance services exactly one solve.
type Program interface {
	// NumVariables returns the dimension of the decision vector.
	NumVariables() int
	// NumConstraints returns the number of constraint rows.
	NumConstraints() int

	// Bounds returns variable bounds (xl, xu) and constraint bounds (gl, gu).
	// A row with gl[i] == gu[i] is an equality constraint.
	Bounds() (xl, xu, gl, gu []float64)

	// StartingPoint fills x with the initial guess.
	StartingPoint(x []float64)

	// Objective evaluates the cost at x.
	Objective(x []float64) float64
	// Gradient fills grad with the objective partials at x.
	Gradient(x, grad []float64)

	// Constraints fills g with the constraint residuals at x.
	Constraints(x, g []float64)

	// JacobianPattern returns the structural non-zeros of the constraint
	// Jacobian. The pattern is fixed for the lifetime of the program.
	JacobianPattern() []Entry
	// JacobianValues fills vals, aligned with JacobianPattern, at x.
	JacobianValues(x, vals []float64)

	// HessianPattern returns the structural non-zeros of the Lagrangian
	// Hessian (lower triangle).
	HessianPattern() []Entry
	// HessianValues fills vals, aligned with HessianPattern, for the
	// Lagrangian objFactor*f(x) + lambda'g(x).
	HessianValues(x []float64, objFactor float64, lambda, vals []float64)
}

// Status is the terminal verdict of a solve.
type Status int

const (
	// Converged means the solver found a point satisfying its criteria.
	Converged Status = iota
	// Infeasible means the constraints could not be satisfied.
	Infeasible
	// IterationLimit means the iteration cap was hit before convergence.
	IterationLimit
	// Failed covers every other solver-side breakdown.
	Failed
)

// String returns the human-readable status name.
func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Infeasible:
		return "infeasible"
	case IterationLimit:
		return "iteration-limit"
	default:
		return "failed"
	}
}

// Solution is the terminal state reported by a solver.
type Solution struct {
	Status     Status
	X          []float64
	Objective  float64
	Iterations int
}

// Solver runs a Program to a terminal status. Implementations drive the
// Program callbacks repeatedly until they converge or give up; they never
// retry internally.
type Solver interface {
	Solve(p Program) (*Solution, error)
}
