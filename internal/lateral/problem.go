// Package lateral formulates the lateral offset optimization problem: a
// constrained nonlinear program over N stations spaced deltaS apart along a
// reference path, whose solution is a smooth piecewise constant-jerk offset
// trajectory threading the per-station corridors.
package lateral

import (
	"fmt"

	"github.com/gangadharKorrapati/apollo/internal/nlp"
	"github.com/gangadharKorrapati/apollo/internal/trajectory"
)

// Corridor is the admissible [Lower, Upper] offset interval at one station.
type Corridor struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Midpoint returns the corridor center the objective pulls toward.
func (c Corridor) Midpoint() float64 { return 0.5 * (c.Lower + c.Upper) }

const (
	// stateBound is the symmetric bound on the d' and d'' blocks. The blocks
	// are effectively unconstrained; widen this for unusually aggressive
	// lateral maneuvers.
	stateBound = 10.0

	defaultWeight    = 1.0
	defaultJerkBound = 10.0
)

// Problem is the solver-facing formulation. It implements nlp.Program.
//
// The decision vector has length 3N in three blocks: offsets d[0..N), first
// derivatives d'[0..N) and second derivatives d''[0..N). The constraint
// vector also has length 3N: N-1 jerk box rows, N-1 velocity continuity
// rows, N-1 position continuity rows, then three initial-state equalities.
//
// One Problem instance services exactly one solve. Weights may be adjusted
// before solving and are treated as immutable once the solver starts.
type Problem struct {
	numPoints int
	deltaS    float64

	dInit       float64
	dPrimeInit  float64
	dPPrimeInit float64

	corridors []Corridor

	weightD        float64
	weightDPrime   float64
	weightDPPrime  float64
	weightObstacle float64
	jerkBound      float64

	traj *trajectory.PiecewiseJerk
}

// NewProblem builds a formulation from the initial lateral state, the
// station spacing and one corridor per station. It fails fast on fewer than
// two stations, a non-positive spacing or an inverted corridor.
func NewProblem(dInit, dPrimeInit, dPPrimeInit, deltaS float64, corridors []Corridor) (*Problem, error) {
	if len(corridors) < 2 {
		return nil, fmt.Errorf("lateral: need at least 2 stations, got %d", len(corridors))
	}
	if deltaS <= 0 {
		return nil, fmt.Errorf("lateral: station spacing must be positive, got %v", deltaS)
	}
	for i, c := range corridors {
		if c.Lower > c.Upper {
			return nil, fmt.Errorf("lateral: corridor %d inverted: [%v, %v]", i, c.Lower, c.Upper)
		}
	}

	return &Problem{
		numPoints:      len(corridors),
		deltaS:         deltaS,
		dInit:          dInit,
		dPrimeInit:     dPrimeInit,
		dPPrimeInit:    dPPrimeInit,
		corridors:      append([]Corridor(nil), corridors...),
		weightD:        defaultWeight,
		weightDPrime:   defaultWeight,
		weightDPPrime:  defaultWeight,
		weightObstacle: defaultWeight,
		jerkBound:      defaultJerkBound,
		traj:           trajectory.NewPiecewiseJerk(dInit, dPrimeInit, dPPrimeInit),
	}, nil
}

// SetWeights overrides the four cost weights. Call before solving.
func (p *Problem) SetWeights(d, dPrime, dPPrime, obstacle float64) {
	p.weightD = d
	p.weightDPrime = dPrime
	p.weightDPPrime = dPPrime
	p.weightObstacle = obstacle
}

// SetJerkBound overrides the maximum jerk magnitude used to size the
// second-derivative difference box. Call before solving.
func (p *Problem) SetJerkBound(bound float64) {
	p.jerkBound = bound
}

// NumStations returns N, the number of discretization points.
func (p *Problem) NumStations() int { return p.numPoints }

// DeltaS returns the station spacing.
func (p *Problem) DeltaS() float64 { return p.deltaS }

// NumVariables implements nlp.Program.
func (p *Problem) NumVariables() int { return 3 * p.numPoints }

// NumConstraints implements nlp.Program.
func (p *Problem) NumConstraints() int { return 3 * p.numPoints }

// Bounds implements nlp.Program. Variable bounds are the corridors for the
// d block and ±stateBound for the derivative blocks. Constraint rows are the
// jerk box, the two continuity equality blocks, and the initial-state
// equalities.
func (p *Problem) Bounds() (xl, xu, gl, gu []float64) {
	n := p.numPoints
	xl = make([]float64, 3*n)
	xu = make([]float64, 3*n)
	gl = make([]float64, 3*n)
	gu = make([]float64, 3*n)

	for i, c := range p.corridors {
		xl[i] = c.Lower
		xu[i] = c.Upper
	}
	for i := n; i < 3*n; i++ {
		xl[i] = -stateBound
		xu[i] = stateBound
	}

	// Jerk box: the only true inequality.
	for i := 0; i+1 < n; i++ {
		gl[i] = -p.jerkBound * p.deltaS
		gu[i] = p.jerkBound * p.deltaS
	}
	// Velocity and position continuity, then initial state: equalities,
	// all zero, already in place.
	return xl, xu, gl, gu
}

// StartingPoint implements nlp.Program: all zero except the fixed initial
// state at the head of each block.
func (p *Problem) StartingPoint(x []float64) {
	p.checkLen("starting point", len(x), 3*p.numPoints)
	for i := range x {
		x[i] = 0
	}
	x[0] = p.dInit
	x[p.numPoints] = p.dPrimeInit
	x[2*p.numPoints] = p.dPPrimeInit
}

// Objective implements nlp.Program:
//
//	sum_i w_d*d_i^2 + w_d'*d_i'^2 + w_d''*d_i''^2 + w_obs*(d_i - mid_i)^2
func (p *Problem) Objective(x []float64) float64 {
	p.checkLen("objective", len(x), 3*p.numPoints)
	n := p.numPoints
	obj := 0.0
	for i := 0; i < n; i++ {
		obj += x[i] * x[i] * p.weightD
		obj += x[n+i] * x[n+i] * p.weightDPrime
		obj += x[2*n+i] * x[2*n+i] * p.weightDPPrime

		dist := x[i] - p.corridors[i].Midpoint()
		obj += dist * dist * p.weightObstacle
	}
	return obj
}

// Gradient implements nlp.Program with the closed-form partials.
func (p *Problem) Gradient(x, grad []float64) {
	p.checkLen("gradient x", len(x), 3*p.numPoints)
	p.checkLen("gradient buffer", len(grad), 3*p.numPoints)
	n := p.numPoints
	for i := 0; i < n; i++ {
		mid := p.corridors[i].Midpoint()
		grad[i] = 2*x[i]*p.weightD + 2*(x[i]-mid)*p.weightObstacle
		grad[n+i] = 2 * x[n+i] * p.weightDPrime
		grad[2*n+i] = 2 * x[2*n+i] * p.weightDPPrime
	}
}

// Constraints implements nlp.Program. Continuity rows are evaluated through
// the single-segment constant-jerk model with the jerk implied by the
// second-derivative difference across the pair.
func (p *Problem) Constraints(x, g []float64) {
	p.checkLen("constraints x", len(x), 3*p.numPoints)
	p.checkLen("constraints buffer", len(g), 3*p.numPoints)
	n := p.numPoints

	// Jerk box residual d_i'' - d_i+1''. The box is symmetric, so the sign
	// only matters for consistency with the Jacobian.
	for i := 0; i+1 < n; i++ {
		g[i] = x[2*n+i] - x[2*n+i+1]
	}

	for i := 0; i+1 < n; i++ {
		p0, v0, a0 := x[i], x[n+i], x[2*n+i]
		p1, v1, a1 := x[i+1], x[n+i+1], x[2*n+i+1]

		jerk := (a1 - a0) / p.deltaS
		seg := trajectory.NewConstantJerk(p0, v0, a0, jerk, p.deltaS)

		g[n-1+i] = seg.EndVelocity() - v1
		g[2*(n-1)+i] = seg.EndPosition() - p1
	}

	offset := 3 * (n - 1)
	g[offset] = x[0] - p.dInit
	g[offset+1] = x[n] - p.dPrimeInit
	g[offset+2] = x[2*n] - p.dPPrimeInit
}

// JacobianPattern implements nlp.Program. The continuity residuals are
// affine in the decision variables once the jerk is substituted out, so the
// Jacobian has a fixed pattern with 11N-8 non-zeros.
func (p *Problem) JacobianPattern() []nlp.Entry {
	n := p.numPoints
	pattern := make([]nlp.Entry, 0, 11*n-8)
	row := 0

	// Jerk box rows: d_i'' and d_i+1''.
	for i := 0; i+1 < n; i++ {
		pattern = append(pattern,
			nlp.Entry{Row: row, Col: 2*n + i},
			nlp.Entry{Row: row, Col: 2*n + i + 1},
		)
		row++
	}

	// Velocity continuity rows: d_i', d_i+1', d_i'', d_i+1''.
	for i := 0; i+1 < n; i++ {
		pattern = append(pattern,
			nlp.Entry{Row: row, Col: n + i},
			nlp.Entry{Row: row, Col: n + i + 1},
			nlp.Entry{Row: row, Col: 2*n + i},
			nlp.Entry{Row: row, Col: 2*n + i + 1},
		)
		row++
	}

	// Position continuity rows: d_i, d_i+1, d_i', d_i'', d_i+1''.
	for i := 0; i+1 < n; i++ {
		pattern = append(pattern,
			nlp.Entry{Row: row, Col: i},
			nlp.Entry{Row: row, Col: i + 1},
			nlp.Entry{Row: row, Col: n + i},
			nlp.Entry{Row: row, Col: 2*n + i},
			nlp.Entry{Row: row, Col: 2*n + i + 1},
		)
		row++
	}

	// Initial state rows: unit coefficient on d_0, d_0', d_0''.
	pattern = append(pattern,
		nlp.Entry{Row: row, Col: 0},
		nlp.Entry{Row: row + 1, Col: n},
		nlp.Entry{Row: row + 2, Col: 2 * n},
	)
	return pattern
}

// JacobianValues implements nlp.Program. The values are constant in x: the
// continuity model is affine, a property the tests pin down.
func (p *Problem) JacobianValues(x, vals []float64) {
	p.checkLen("jacobian x", len(x), 3*p.numPoints)
	p.checkLen("jacobian buffer", len(vals), 11*p.numPoints-8)
	n, ds := p.numPoints, p.deltaS
	k := 0

	// d_i'' - d_i+1''
	for i := 0; i+1 < n; i++ {
		vals[k] = 1.0
		vals[k+1] = -1.0
		k += 2
	}

	// d_i' - d_i+1' + 0.5*ds*(d_i'' + d_i+1'')
	for i := 0; i+1 < n; i++ {
		vals[k] = 1.0
		vals[k+1] = -1.0
		vals[k+2] = 0.5 * ds
		vals[k+3] = 0.5 * ds
		k += 4
	}

	// d_i - d_i+1 + ds*d_i' + ds^2/3*d_i'' + ds^2/6*d_i+1''
	for i := 0; i+1 < n; i++ {
		vals[k] = 1.0
		vals[k+1] = -1.0
		vals[k+2] = ds
		vals[k+3] = ds * ds / 3.0
		vals[k+4] = ds * ds / 6.0
		k += 5
	}

	// Initial state rows.
	vals[k] = 1.0
	vals[k+1] = 1.0
	vals[k+2] = 1.0
}

// HessianPattern implements nlp.Program: the objective is separable and the
// constraints are affine, so the Lagrangian Hessian is diagonal.
func (p *Problem) HessianPattern() []nlp.Entry {
	pattern := make([]nlp.Entry, 3*p.numPoints)
	for i := range pattern {
		pattern[i] = nlp.Entry{Row: i, Col: i}
	}
	return pattern
}

// HessianValues implements nlp.Program. The affine constraints contribute
// nothing, so the multipliers are unused. Values follow the live weights:
// 2*(w_d + w_obs) on the d block and 2*w on the derivative blocks.
func (p *Problem) HessianValues(x []float64, objFactor float64, lambda, vals []float64) {
	p.checkLen("hessian buffer", len(vals), 3*p.numPoints)
	n := p.numPoints
	for i := 0; i < n; i++ {
		vals[i] = 2 * (p.weightD + p.weightObstacle) * objFactor
	}
	for i := n; i < 3*n; i++ {
		if i < 2*n {
			vals[i] = 2 * p.weightDPrime * objFactor
		} else {
			vals[i] = 2 * p.weightDPPrime * objFactor
		}
	}
}

// Finalize converts the terminal solution into trajectory segments: for each
// adjacent pair the implied jerk (d_i+1'' - d_i'')/deltaS is appended with
// the fixed station spacing.
func (p *Problem) Finalize(x []float64) {
	p.checkLen("finalize", len(x), 3*p.numPoints)
	offset := 2 * p.numPoints
	for i := 1; i < p.numPoints; i++ {
		jerk := (x[offset+i] - x[offset+i-1]) / p.deltaS
		p.traj.AppendSegment(jerk, p.deltaS)
	}
}

// OptimalTrajectory returns the trajectory accumulated by Finalize.
func (p *Problem) OptimalTrajectory() *trajectory.PiecewiseJerk {
	return p.traj
}

// checkLen aborts on solver/problem size desynchronization; silently
// truncating a buffer here would corrupt the solve.
func (p *Problem) checkLen(what string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("lateral: %s buffer has length %d, want %d", what, got, want))
	}
}
