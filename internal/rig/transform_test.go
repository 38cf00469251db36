package rig

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func vecNear(t *testing.T, what string, got, want r3.Vec) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

// yaw returns a rotation of the given angle about the up axis.
func yaw(rad float64) r3.Rotation {
	return r3.NewRotation(rad, Up)
}

func TestTransform_Apply(t *testing.T) {
	// Rotate 90 degrees about Z, then translate by (10, 0, 0).
	tr := Transform{Pos: r3.Vec{X: 10}, Rot: yaw(math.Pi / 2)}

	// +Y forward rotates to -X under a +90 degree yaw (right-handed, Z up).
	got := tr.Apply(r3.Vec{Y: 1})
	vecNear(t, "Apply", got, r3.Vec{X: 9, Y: 0, Z: 0})
}

func TestTransform_MulComposes(t *testing.T) {
	a := Transform{Pos: r3.Vec{X: 1, Z: 2}, Rot: yaw(math.Pi / 2)}
	b := Transform{Pos: r3.Vec{Y: 3}, Rot: yaw(-math.Pi / 4)}
	p := r3.Vec{X: 0.5, Y: -1.5, Z: 0.25}

	got := a.Mul(b).Apply(p)
	want := a.Apply(b.Apply(p))
	vecNear(t, "Mul/Apply", got, want)
}

func TestTransform_InverseRoundTrip(t *testing.T) {
	tr := Transform{Pos: r3.Vec{X: 3, Y: -2, Z: 1}, Rot: yaw(1.1)}
	p := r3.Vec{X: -4, Y: 5, Z: 0.5}

	vecNear(t, "Inverse(Apply)", tr.Inverse().Apply(tr.Apply(p)), p)
	vecNear(t, "Apply(Inverse)", tr.Apply(tr.Inverse().Apply(p)), p)
}

func TestIdentity(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	vecNear(t, "Identity.Apply", Identity().Apply(p), p)
}

func TestPose_WorldChain(t *testing.T) {
	s := testSkeleton(t)

	// Hips at (0,5,0) yawed +90deg; Spine offset (0,1,0) locally; foot (0,0,-1).
	pose := NewPose(s.JointCount())
	pose.Local[0] = Transform{Pos: r3.Vec{Y: 5}, Rot: yaw(math.Pi / 2)}
	pose.Local[1] = Transform{Pos: r3.Vec{Y: 1}, Rot: Identity().Rot}
	pose.Local[2] = Transform{Pos: r3.Vec{Z: -1}, Rot: Identity().Rot}

	// Spine world: hips pos + yaw(+Y offset) = (0,5,0) + (-1,0,0).
	spine := pose.World(s, 1)
	vecNear(t, "Spine world", spine.Pos, r3.Vec{X: -1, Y: 5, Z: 0})

	foot := pose.World(s, 2)
	vecNear(t, "Foot world", foot.Pos, r3.Vec{X: -1, Y: 5, Z: -1})
}

func TestWalker_MatchesDirectWorld(t *testing.T) {
	s := testSkeleton(t)
	pose := NewPose(s.JointCount())
	pose.Local[0] = Transform{Pos: r3.Vec{X: 2, Y: 1}, Rot: yaw(0.7)}
	pose.Local[1] = Transform{Pos: r3.Vec{Y: 0.5}, Rot: yaw(-0.2)}
	pose.Local[2] = Transform{Pos: r3.Vec{Z: -0.9}, Rot: yaw(0.1)}

	w := NewWalker(s)
	for id := JointID(0); int(id) < s.JointCount(); id++ {
		direct := pose.World(s, id)
		walked := w.World(pose, id)
		vecNear(t, "walker pos", walked.Pos, direct.Pos)
	}

	// Reset and serve a different pose.
	w.Reset()
	other := NewPose(s.JointCount())
	other.Local[0] = Transform{Pos: r3.Vec{X: -3}, Rot: Identity().Rot}
	vecNear(t, "walker after reset", w.World(other, 2).Pos, other.World(s, 2).Pos)
}
