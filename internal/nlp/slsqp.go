package nlp

import (
	"fmt"

	"github.com/curioloop/optimizer/slsqp"
	"gonum.org/v1/gonum/floats"
)

// SLSQP solves a Program with the sequential least squares programming
// algorithm from github.com/curioloop/optimizer.
//
// Equality rows (gl == gu) map to slsqp equality constraints g(x) - gl = 0.
// Rows with finite one- or two-sided bounds map to one-sided inequalities
// g(x) - gl >= 0 and gu - g(x) >= 0. Dense constraint gradients are scattered
// from the Program's sparse Jacobian.
//
// SLSQP maintains its own BFGS approximation of the Lagrangian Hessian, so
// the Program's Hessian callbacks are not consumed by this solver.
type SLSQP struct {
	// Accuracy is the solution tolerance handed to the algorithm.
	Accuracy float64
	// MaxIterations caps the SQP iteration count.
	MaxIterations int
	// BoundInf is the magnitude beyond which a bound counts as absent.
	BoundInf float64
}

// NewSLSQP returns a solver with the default tolerances.
func NewSLSQP() *SLSQP {
	return &SLSQP{
		Accuracy:      1e-8,
		MaxIterations: 200,
		BoundInf:      1e19,
	}
}

// programEval caches constraint and Jacobian evaluations per location, so
// the per-row closures handed to slsqp do not recompute the full residual
// vector for every row.
type programEval struct {
	p       Program
	pattern []Entry
	rows    [][]int

	conX, conG   []float64
	jacX, jacV   []float64
	conOK, jacOK bool
}

func newProgramEval(p Program) *programEval {
	n, m := p.NumVariables(), p.NumConstraints()
	pattern := p.JacobianPattern()
	rows := make([][]int, m)
	for k, e := range pattern {
		if e.Row < 0 || e.Row >= m || e.Col < 0 || e.Col >= n {
			panic(fmt.Sprintf("nlp: jacobian entry (%d,%d) outside %dx%d", e.Row, e.Col, m, n))
		}
		rows[e.Row] = append(rows[e.Row], k)
	}
	return &programEval{
		p:       p,
		pattern: pattern,
		rows:    rows,
		conX:    make([]float64, n),
		conG:    make([]float64, m),
		jacX:    make([]float64, n),
		jacV:    make([]float64, len(pattern)),
	}
}

func (e *programEval) constraintsAt(x []float64) []float64 {
	if !e.conOK || !floats.Equal(x, e.conX) {
		copy(e.conX, x)
		e.p.Constraints(x, e.conG)
		e.conOK = true
	}
	return e.conG
}

func (e *programEval) jacobianAt(x []float64) []float64 {
	if !e.jacOK || !floats.Equal(x, e.jacX) {
		copy(e.jacX, x)
		e.p.JacobianValues(x, e.jacV)
		e.jacOK = true
	}
	return e.jacV
}

// row builds a one-sided slsqp evaluation for constraint row r:
// sign*(g_r(x) - shift), with the matching scattered gradient.
func (e *programEval) row(r int, sign, shift float64) slsqp.Evaluation {
	return func(x, d []float64) float64 {
		if d != nil {
			vals := e.jacobianAt(x)
			for i := range d {
				d[i] = 0
			}
			for _, k := range e.rows[r] {
				d[e.pattern[k].Col] = sign * vals[k]
			}
			return 0
		}
		return sign * (e.constraintsAt(x)[r] - shift)
	}
}

// Solve runs the Program from its starting point to a terminal status.
func (s *SLSQP) Solve(p Program) (*Solution, error) {
	n, m := p.NumVariables(), p.NumConstraints()
	xl, xu, gl, gu := p.Bounds()
	if len(xl) != n || len(xu) != n || len(gl) != m || len(gu) != m {
		return nil, fmt.Errorf("nlp: bounds sized %d/%d/%d/%d, want %d vars and %d constraints",
			len(xl), len(xu), len(gl), len(gu), n, m)
	}

	eval := newProgramEval(p)

	var eqCons, neqCons []slsqp.Evaluation
	for r := 0; r < m; r++ {
		switch {
		case gl[r] == gu[r]:
			eqCons = append(eqCons, eval.row(r, 1, gl[r]))
		default:
			if gl[r] > -s.BoundInf {
				neqCons = append(neqCons, eval.row(r, 1, gl[r]))
			}
			if gu[r] < s.BoundInf {
				neqCons = append(neqCons, eval.row(r, -1, gu[r]))
			}
		}
	}

	bounds := make([]slsqp.Bound, n)
	for i := range bounds {
		bounds[i] = slsqp.Bound{Lower: xl[i], Upper: xu[i]}
	}

	objective := func(x, g []float64) float64 {
		if g != nil {
			p.Gradient(x, g[:n])
			return 0
		}
		return p.Objective(x)
	}

	prob := slsqp.Problem{
		N:       n,
		Object:  objective,
		EqCons:  eqCons,
		NeqCons: neqCons,
		Bounds:  bounds,
		BndInf:  s.BoundInf,
		Stop: slsqp.Termination{
			Accuracy:      s.Accuracy,
			MaxIterations: s.MaxIterations,
		},
	}

	opt, err := prob.New()
	if err != nil {
		return nil, fmt.Errorf("nlp: building slsqp problem: %w", err)
	}

	x0 := make([]float64, n)
	p.StartingPoint(x0)

	res := opt.Fit(x0, opt.Init())

	status := Failed
	switch {
	case res.OK:
		status = Converged
	case res.Status == slsqp.ConsIncompatible:
		status = Infeasible
	case res.Status == slsqp.SQPExceedMaxIter || res.Status == slsqp.NNLSExceedMaxIter:
		status = IterationLimit
	}

	return &Solution{
		Status:     status,
		X:          res.X,
		Objective:  res.F,
		Iterations: res.NumIter,
	}, nil
}
