package lateral

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gangadharKorrapati/apollo/internal/nlp"
)

// Weights are the four cost weights of the objective. Absent fields fall
// back to the defaults (1.0 each); an explicit 0 disables that cost term.
type Weights struct {
	D        *float64 `json:"d,omitempty"`
	DPrime   *float64 `json:"d_prime,omitempty"`
	DPPrime  *float64 `json:"d_pprime,omitempty"`
	Obstacle *float64 `json:"obstacle,omitempty"`
}

// Scenario is the JSON description of one lateral solve, shared by the CLI
// and the HTTP service.
type Scenario struct {
	DInit       float64    `json:"d_init"`
	DPrimeInit  float64    `json:"d_prime_init"`
	DPPrimeInit float64    `json:"d_pprime_init"`
	DeltaS      float64    `json:"delta_s"`
	Corridors   []Corridor `json:"corridors"`
	Weights     *Weights   `json:"weights,omitempty"`
	JerkBound   float64    `json:"jerk_bound,omitempty"`
	MaxIter     int        `json:"max_iterations,omitempty"`
}

// ParseScenario decodes a scenario from JSON and validates it.
func ParseScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("lateral: decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the scenario against the construction invariants.
func (s *Scenario) Validate() error {
	_, err := s.NewProblem()
	return err
}

// NewProblem builds a fresh formulation from the scenario, applying any
// weight or jerk bound overrides.
func (s *Scenario) NewProblem() (*Problem, error) {
	p, err := NewProblem(s.DInit, s.DPrimeInit, s.DPPrimeInit, s.DeltaS, s.Corridors)
	if err != nil {
		return nil, err
	}
	if w := s.Weights; w != nil {
		p.SetWeights(orDefault(w.D), orDefault(w.DPrime), orDefault(w.DPPrime), orDefault(w.Obstacle))
	}
	if s.JerkBound > 0 {
		p.SetJerkBound(s.JerkBound)
	}
	return p, nil
}

// NewOptimizer builds a single-use optimizer for the scenario. A nil solver
// selects SLSQP with the scenario's iteration cap.
func (s *Scenario) NewOptimizer(solver nlp.Solver) (*Optimizer, error) {
	p, err := s.NewProblem()
	if err != nil {
		return nil, err
	}
	if solver == nil {
		sq := nlp.NewSLSQP()
		if s.MaxIter > 0 {
			sq.MaxIterations = s.MaxIter
		}
		solver = sq
	}
	return NewOptimizer(p, solver), nil
}

func orDefault(w *float64) float64 {
	if w == nil {
		return defaultWeight
	}
	return *w
}
