package match

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stride-data/motion.match/internal/config"
	"github.com/stride-data/motion.match/internal/rig"
)

const tol = 1e-5

func testSkeleton(t *testing.T) *rig.Skeleton {
	t.Helper()
	s, err := rig.NewSkeleton(
		[]string{"Hips", "Spine", "LeftFoot"},
		[]rig.JointID{rig.NoJoint, 0, 1},
	)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	return s
}

// testClip builds an n-frame clip whose root moves +X one unit per frame at
// 10 fps, with identity rotations everywhere.
func testClip(t *testing.T, n int) *rig.Clip {
	t.Helper()
	s := testSkeleton(t)
	frames := make([]rig.Pose, n)
	for i := range frames {
		frames[i] = rig.NewPose(s.JointCount())
		frames[i].Local[0].Pos = r3.Vec{X: float64(i)}
	}
	c, err := rig.NewClip(s, frames, 0.1)
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	return c
}

func resolve(t *testing.T, cfg *config.FeatureConfig, skel *rig.Skeleton) *Layout {
	t.Helper()
	layout, err := ResolveLayout(cfg, skel)
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	return layout
}

func yaw(rad float64) r3.Rotation {
	return r3.NewRotation(rad, rig.Up)
}

func sliceNear(t *testing.T, what string, got []float32, want ...float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s has %d values, want %d", what, len(got), len(want))
	}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("%s[%d] = %v, want %v", what, i, got[i], want[i])
			return
		}
	}
}
