// Package trajectory provides one-dimensional constant-jerk segment models
// and the piecewise trajectory assembled from them.
//
// All positions are lateral offsets in metres, parameterised by arc length s
// along the reference path. First and second derivatives are taken with
// respect to s.
package trajectory

// ConstantJerk is a single segment with constant third derivative.
// Given a start state (p0, v0, a0) and a jerk j over a param length ds,
// the end state follows the closed-form cubic:
//
//	a(ds) = a0 + j*ds
//	v(ds) = v0 + a0*ds + 1/2*j*ds^2
//	p(ds) = p0 + v0*ds + 1/2*a0*ds^2 + 1/6*j*ds^3
type ConstantJerk struct {
	p0, v0, a0 float64
	jerk       float64
	length     float64
}

// NewConstantJerk creates a segment from a start state, a constant jerk and
// a param length. The length is assumed positive.
func NewConstantJerk(p0, v0, a0, jerk, length float64) ConstantJerk {
	return ConstantJerk{p0: p0, v0: v0, a0: a0, jerk: jerk, length: length}
}

// StartPosition returns the position at the start of the segment.
func (c ConstantJerk) StartPosition() float64 { return c.p0 }

// StartVelocity returns the first derivative at the start of the segment.
func (c ConstantJerk) StartVelocity() float64 { return c.v0 }

// StartAcceleration returns the second derivative at the start of the segment.
func (c ConstantJerk) StartAcceleration() float64 { return c.a0 }

// EndPosition returns the position at the end of the segment.
func (c ConstantJerk) EndPosition() float64 {
	return c.Position(c.length)
}

// EndVelocity returns the first derivative at the end of the segment.
func (c ConstantJerk) EndVelocity() float64 {
	return c.Velocity(c.length)
}

// EndAcceleration returns the second derivative at the end of the segment.
func (c ConstantJerk) EndAcceleration() float64 {
	return c.Acceleration(c.length)
}

// Position evaluates the segment position at param s in [0, length].
func (c ConstantJerk) Position(s float64) float64 {
	return c.p0 + c.v0*s + 0.5*c.a0*s*s + c.jerk*s*s*s/6.0
}

// Velocity evaluates the first derivative at param s in [0, length].
func (c ConstantJerk) Velocity(s float64) float64 {
	return c.v0 + c.a0*s + 0.5*c.jerk*s*s
}

// Acceleration evaluates the second derivative at param s in [0, length].
func (c ConstantJerk) Acceleration(s float64) float64 {
	return c.a0 + c.jerk*s
}

// Jerk returns the constant third derivative of the segment.
func (c ConstantJerk) Jerk() float64 { return c.jerk }

// ParamLength returns the param length of the segment.
func (c ConstantJerk) ParamLength() float64 { return c.length }
