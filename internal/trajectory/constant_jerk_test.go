package trajectory

import (
	"math"
	"math/rand"
	"testing"
)

func TestConstantJerkEndState(t *testing.T) {
	tests := []struct {
		name                      string
		p0, v0, a0, jerk, ds      float64
		wantPos, wantVel, wantAcc float64
	}{
		{
			name: "zero jerk reduces to constant acceleration",
			p0:   1, v0: 2, a0: 3, jerk: 0, ds: 2,
			wantPos: 1 + 2*2 + 0.5*3*4,
			wantVel: 2 + 3*2,
			wantAcc: 3,
		},
		{
			name: "pure jerk from rest",
			p0:   0, v0: 0, a0: 0, jerk: 6, ds: 1,
			wantPos: 1.0, // 1/6 * 6 * 1
			wantVel: 3.0, // 1/2 * 6 * 1
			wantAcc: 6.0,
		},
		{
			name: "negative jerk",
			p0:   0.5, v0: -1, a0: 2, jerk: -3, ds: 0.5,
			wantPos: 0.5 - 1*0.5 + 0.5*2*0.25 - 3*0.125/6,
			wantVel: -1 + 2*0.5 - 0.5*3*0.25,
			wantAcc: 2 - 3*0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := NewConstantJerk(tt.p0, tt.v0, tt.a0, tt.jerk, tt.ds)
			if got := seg.EndPosition(); math.Abs(got-tt.wantPos) > 1e-12 {
				t.Errorf("EndPosition = %v, want %v", got, tt.wantPos)
			}
			if got := seg.EndVelocity(); math.Abs(got-tt.wantVel) > 1e-12 {
				t.Errorf("EndVelocity = %v, want %v", got, tt.wantVel)
			}
			if got := seg.EndAcceleration(); math.Abs(got-tt.wantAcc) > 1e-12 {
				t.Errorf("EndAcceleration = %v, want %v", got, tt.wantAcc)
			}
		})
	}
}

// The closed-form evaluation must agree with a fine Euler integration of the
// constant-jerk dynamics.
func TestConstantJerkMatchesIntegration(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		p0 := rng.NormFloat64()
		v0 := rng.NormFloat64()
		a0 := rng.NormFloat64()
		jerk := rng.NormFloat64() * 2
		ds := 0.5 + rng.Float64()

		seg := NewConstantJerk(p0, v0, a0, jerk, ds)

		const steps = 200000
		h := ds / steps
		p, v, a := p0, v0, a0
		for i := 0; i < steps; i++ {
			p += v*h + 0.5*a*h*h + jerk*h*h*h/6
			v += a*h + 0.5*jerk*h*h
			a += jerk * h
		}

		if math.Abs(p-seg.EndPosition()) > 1e-8 {
			t.Errorf("trial %d: integrated position %v, closed form %v", trial, p, seg.EndPosition())
		}
		if math.Abs(v-seg.EndVelocity()) > 1e-8 {
			t.Errorf("trial %d: integrated velocity %v, closed form %v", trial, v, seg.EndVelocity())
		}
		if math.Abs(a-seg.EndAcceleration()) > 1e-8 {
			t.Errorf("trial %d: integrated acceleration %v, closed form %v", trial, a, seg.EndAcceleration())
		}
	}
}

func TestConstantJerkDerivativeConsistency(t *testing.T) {
	seg := NewConstantJerk(0.3, -0.2, 0.8, 1.5, 2.0)

	// Velocity must be the numerical derivative of position, acceleration of
	// velocity.
	const h = 1e-6
	for _, s := range []float64{0.1, 0.5, 1.0, 1.9} {
		dPos := (seg.Position(s+h) - seg.Position(s-h)) / (2 * h)
		if math.Abs(dPos-seg.Velocity(s)) > 1e-6 {
			t.Errorf("s=%v: numeric dp/ds = %v, Velocity = %v", s, dPos, seg.Velocity(s))
		}
		dVel := (seg.Velocity(s+h) - seg.Velocity(s-h)) / (2 * h)
		if math.Abs(dVel-seg.Acceleration(s)) > 1e-6 {
			t.Errorf("s=%v: numeric dv/ds = %v, Acceleration = %v", s, dVel, seg.Acceleration(s))
		}
	}
}
