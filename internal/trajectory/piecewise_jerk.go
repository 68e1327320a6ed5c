package trajectory

import "sort"

// PiecewiseJerk is a trajectory assembled from constant-jerk segments.
//
// It starts from a frozen initial state (d, d', d'') and grows by appending
// (jerk, length) pairs; each new segment starts at the end state of the
// previous one, so the assembled trajectory is continuous up to the second
// derivative. Appending after sampling is legal; segments are never removed
// or reordered.
type PiecewiseJerk struct {
	segments []ConstantJerk
	// cumLengths[i] is the param value at the end of segment i-1;
	// cumLengths[0] is always 0.
	cumLengths []float64

	lastPos float64
	lastVel float64
	lastAcc float64
}

// NewPiecewiseJerk creates an empty trajectory anchored at the initial state.
func NewPiecewiseJerk(pos, vel, acc float64) *PiecewiseJerk {
	return &PiecewiseJerk{
		cumLengths: []float64{0},
		lastPos:    pos,
		lastVel:    vel,
		lastAcc:    acc,
	}
}

// AppendSegment extends the trajectory by one constant-jerk segment of the
// given param length, starting from the current end state.
func (p *PiecewiseJerk) AppendSegment(jerk, length float64) {
	seg := NewConstantJerk(p.lastPos, p.lastVel, p.lastAcc, jerk, length)
	p.segments = append(p.segments, seg)
	p.cumLengths = append(p.cumLengths, p.cumLengths[len(p.cumLengths)-1]+length)

	p.lastPos = seg.EndPosition()
	p.lastVel = seg.EndVelocity()
	p.lastAcc = seg.EndAcceleration()
}

// NumSegments returns the number of appended segments.
func (p *PiecewiseJerk) NumSegments() int { return len(p.segments) }

// ParamLength returns the total param span of the trajectory.
func (p *PiecewiseJerk) ParamLength() float64 {
	return p.cumLengths[len(p.cumLengths)-1]
}

// Sample evaluates the trajectory at param s, returning position and its
// first and second derivatives. Values of s outside [0, ParamLength] are
// clamped to the nearest end.
func (p *PiecewiseJerk) Sample(s float64) (pos, vel, acc float64) {
	if len(p.segments) == 0 {
		return p.lastPos, p.lastVel, p.lastAcc
	}
	if s <= 0 {
		seg := p.segments[0]
		return seg.StartPosition(), seg.StartVelocity(), seg.StartAcceleration()
	}
	if span := p.ParamLength(); s >= span {
		return p.lastPos, p.lastVel, p.lastAcc
	}

	// First cumulative boundary strictly greater than s encloses it.
	idx := sort.SearchFloat64s(p.cumLengths, s)
	if p.cumLengths[idx] <= s {
		idx++
	}
	seg := p.segments[idx-1]
	local := s - p.cumLengths[idx-1]
	return seg.Position(local), seg.Velocity(local), seg.Acceleration(local)
}

// Evaluate returns a single derivative order (0, 1 or 2) at param s.
// Orders above 2 return the jerk of the enclosing segment.
func (p *PiecewiseJerk) Evaluate(order int, s float64) float64 {
	pos, vel, acc := p.Sample(s)
	switch order {
	case 0:
		return pos
	case 1:
		return vel
	case 2:
		return acc
	default:
		if len(p.segments) == 0 {
			return 0
		}
		idx := sort.SearchFloat64s(p.cumLengths, s)
		if idx >= len(p.cumLengths) {
			idx = len(p.cumLengths) - 1
		}
		if idx < 1 {
			idx = 1
		}
		return p.segments[idx-1].Jerk()
	}
}
