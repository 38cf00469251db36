package rig

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Coordinate convention: X=right, Y=forward, Z=up. The ground plane is XY.
var (
	// Forward is the canonical facing axis a joint orientation is applied to.
	Forward = r3.Vec{Y: 1}
	// Up is the vertical axis dropped by ground-plane projection.
	Up = r3.Vec{Z: 1}
)

// Transform is a rigid transform: rotate by Rot, then translate by Pos.
type Transform struct {
	Pos r3.Vec
	Rot r3.Rotation
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Rot: r3.Rotation(quat.Number{Real: 1})}
}

// Mul composes two transforms: (t.Mul(u)).Apply(p) == t.Apply(u.Apply(p)).
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		Pos: r3.Add(t.Pos, t.Rot.Rotate(u.Pos)),
		Rot: r3.Rotation(quat.Mul(quat.Number(t.Rot), quat.Number(u.Rot))),
	}
}

// Apply maps a point from the transform's local space into its parent space.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Pos, t.Rot.Rotate(p))
}

// Inverse returns the inverse rigid transform. Rot must be a unit rotation,
// which holds for transforms built from joint rotations.
func (t Transform) Inverse() Transform {
	inv := r3.Rotation(quat.Conj(quat.Number(t.Rot)))
	return Transform{Pos: r3.Scale(-1, inv.Rotate(t.Pos)), Rot: inv}
}
