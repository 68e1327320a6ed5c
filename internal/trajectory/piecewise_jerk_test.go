package trajectory

import (
	"math"
	"testing"
)

func TestPiecewiseJerkEmpty(t *testing.T) {
	traj := NewPiecewiseJerk(1.5, -0.5, 0.25)

	if got := traj.ParamLength(); got != 0 {
		t.Fatalf("ParamLength = %v, want 0", got)
	}
	pos, vel, acc := traj.Sample(0)
	if pos != 1.5 || vel != -0.5 || acc != 0.25 {
		t.Errorf("Sample(0) = (%v, %v, %v), want initial state", pos, vel, acc)
	}
}

func TestPiecewiseJerkSampleAtBoundaries(t *testing.T) {
	traj := NewPiecewiseJerk(0, 0, 0)
	traj.AppendSegment(1.0, 2.0)
	traj.AppendSegment(-0.5, 1.0)

	if got := traj.ParamLength(); got != 3.0 {
		t.Fatalf("ParamLength = %v, want 3", got)
	}
	if got := traj.NumSegments(); got != 2 {
		t.Fatalf("NumSegments = %v, want 2", got)
	}

	// Start of trajectory.
	pos, vel, acc := traj.Sample(0)
	if pos != 0 || vel != 0 || acc != 0 {
		t.Errorf("Sample(0) = (%v, %v, %v), want zeros", pos, vel, acc)
	}

	// Second-derivative continuity at the internal boundary.
	_, _, accBefore := traj.Sample(2.0 - 1e-9)
	_, _, accAfter := traj.Sample(2.0 + 1e-9)
	if math.Abs(accBefore-accAfter) > 1e-6 {
		t.Errorf("acceleration jump at boundary: %v vs %v", accBefore, accAfter)
	}

	// Clamping beyond the span.
	endPos, _, _ := traj.Sample(3.0)
	clampedPos, _, _ := traj.Sample(5.0)
	if endPos != clampedPos {
		t.Errorf("Sample beyond span not clamped: %v vs %v", clampedPos, endPos)
	}
}

func TestPiecewiseJerkMatchesSegmentChain(t *testing.T) {
	init := [3]float64{0.2, -0.1, 0.3}
	jerks := []float64{0.5, -1.0, 2.0, 0.0}
	const ds = 0.75

	traj := NewPiecewiseJerk(init[0], init[1], init[2])
	for _, j := range jerks {
		traj.AppendSegment(j, ds)
	}

	// Walk the same chain manually and compare at the segment ends.
	p, v, a := init[0], init[1], init[2]
	for i, j := range jerks {
		seg := NewConstantJerk(p, v, a, j, ds)
		p, v, a = seg.EndPosition(), seg.EndVelocity(), seg.EndAcceleration()

		s := float64(i+1) * ds
		gotP, gotV, gotA := traj.Sample(s)
		if math.Abs(gotP-p) > 1e-12 || math.Abs(gotV-v) > 1e-12 || math.Abs(gotA-a) > 1e-12 {
			t.Errorf("segment %d end: got (%v, %v, %v), want (%v, %v, %v)", i, gotP, gotV, gotA, p, v, a)
		}
	}
}

func TestPiecewiseJerkAppendAfterSampling(t *testing.T) {
	traj := NewPiecewiseJerk(0, 1, 0)
	traj.AppendSegment(0, 1.0)

	midPos, _, _ := traj.Sample(0.5)
	if math.Abs(midPos-0.5) > 1e-12 {
		t.Fatalf("Sample(0.5) = %v, want 0.5", midPos)
	}

	// Growing the trajectory must not disturb earlier samples.
	traj.AppendSegment(3.0, 1.0)
	midPosAfter, _, _ := traj.Sample(0.5)
	if midPos != midPosAfter {
		t.Errorf("sample changed after append: %v vs %v", midPos, midPosAfter)
	}
	if got := traj.ParamLength(); got != 2.0 {
		t.Errorf("ParamLength = %v, want 2", got)
	}
}

func TestPiecewiseJerkEvaluateOrders(t *testing.T) {
	traj := NewPiecewiseJerk(1, 2, 3)
	traj.AppendSegment(0.5, 2.0)

	pos, vel, acc := traj.Sample(1.0)
	if got := traj.Evaluate(0, 1.0); got != pos {
		t.Errorf("Evaluate(0) = %v, want %v", got, pos)
	}
	if got := traj.Evaluate(1, 1.0); got != vel {
		t.Errorf("Evaluate(1) = %v, want %v", got, vel)
	}
	if got := traj.Evaluate(2, 1.0); got != acc {
		t.Errorf("Evaluate(2) = %v, want %v", got, acc)
	}
	if got := traj.Evaluate(3, 1.0); got != 0.5 {
		t.Errorf("Evaluate(3) = %v, want jerk 0.5", got)
	}
}
