package match

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stride-data/motion.match/internal/rig"
)

// minHorizontalNorm is the smallest horizontal magnitude a direction may
// have and still be ground-projected; below it the rotation has left only
// rounding noise in the plane and the projection is treated as undefined.
const minHorizontalNorm = 1e-8

// PoseSource is the pose-database collaborator consumed by extraction. The
// implementation guarantees that IsValidForExtraction reflects availability
// of every frame extraction may sample around that index (clip boundaries,
// discontinuities between takes).
type PoseSource interface {
	Skeleton() *rig.Skeleton
	PoseCount() int
	// FrameDuration returns the frame spacing in seconds.
	FrameDuration() float64
	// Pose returns frame i; i must be in [0, PoseCount).
	Pose(i int) rig.Pose
	IsValidForExtraction(i int) bool
}

// Extract evaluates every configured sub-feature for every pose of src and
// returns the populated feature store. Rows the source reports invalid are
// flagged and left zero. Out-of-range time-offset samples are skipped with a
// recorded warning, never aborting the run. Configuration problems fail fast
// before any buffer is built.
func Extract(src PoseSource, layout *Layout) (*FeatureStore, *ExtractionStats, error) {
	skel := src.Skeleton()
	if err := checkLayoutJoints(layout, skel); err != nil {
		return nil, nil, err
	}
	if src.FrameDuration() <= 0 {
		return nil, nil, configErrorf("pose source frame duration must be positive, got %v", src.FrameDuration())
	}

	n := src.PoseCount()
	store := NewFeatureStore(layout, n)
	stats := NewExtractionStats()

	// Two walkers: one memoizes FK for the anchor pose i (reference frame and
	// pose sub-features), the other serves the offset frames.
	anchor := rig.NewWalker(skel)
	sample := rig.NewWalker(skel)

	for i := 0; i < n; i++ {
		if !src.IsValidForExtraction(i) {
			stats.AddPose(false)
			continue
		}
		stats.AddPose(true)
		store.valid[i] = true

		pose := src.Pose(i)
		anchor.Reset()
		frame := anchor.World(pose, layout.SimulationJoint)
		inv := frame.Inverse()
		row := store.row(i)

		for fi := range layout.Trajectory {
			tf := &layout.Trajectory[fi]
			for pi, t := range tf.TimeOffsets {
				j := i + t
				if j < 0 || j >= n {
					stats.AddSkippedSample(fmt.Sprintf(
						"trajectory feature %d: pose %d offset %+d out of range [0,%d)", fi, i, t, n))
					continue
				}
				joint := tf.JointID
				if tf.UseSimulationJoint {
					joint = layout.SimulationJoint
				}
				var world rig.Transform
				if j == i {
					world = anchor.World(pose, joint)
				} else {
					sample.Reset()
					world = sample.World(src.Pose(j), joint)
				}
				writeTrajectorySample(row, tf, pi, world, inv, stats, fi, i, t)
			}
		}

		for pi := range layout.Pose {
			pf := &layout.Pose[pi]
			switch pf.Kind {
			case Position:
				p := inv.Apply(anchor.World(pose, pf.JointID).Pos)
				writeVec3(row, pf.Offset, p)
			case Velocity:
				j := i + 1
				if j >= n {
					stats.AddSkippedSample(fmt.Sprintf(
						"pose feature %d: pose %d has no next frame for velocity", pi, i))
					continue
				}
				// Both samples are transformed into pose i's character frame
				// before differencing.
				p0 := inv.Apply(anchor.World(pose, pf.JointID).Pos)
				sample.Reset()
				p1 := inv.Apply(sample.World(src.Pose(j), pf.JointID).Pos)
				writeVec3(row, pf.Offset, r3.Scale(1/src.FrameDuration(), r3.Sub(p1, p0)))
			}
		}
	}

	return store, stats, nil
}

// checkLayoutJoints verifies every resolved joint id against the extraction
// skeleton. Layouts are resolved against a skeleton up front, but the source
// passed to Extract may carry a different one.
func checkLayoutJoints(layout *Layout, skel *rig.Skeleton) error {
	if !skel.Valid(layout.SimulationJoint) {
		return configErrorf("simulation joint %d not in skeleton (%d joints)", layout.SimulationJoint, skel.JointCount())
	}
	for i := range layout.Trajectory {
		tf := &layout.Trajectory[i]
		if !tf.UseSimulationJoint && !skel.Valid(tf.JointID) {
			return configErrorf("trajectory feature %d: joint %d not in skeleton (%d joints)", i, tf.JointID, skel.JointCount())
		}
	}
	for i := range layout.Pose {
		if !skel.Valid(layout.Pose[i].JointID) {
			return configErrorf("pose feature %d: joint %d not in skeleton (%d joints)", i, layout.Pose[i].JointID, skel.JointCount())
		}
	}
	return nil
}

func writeTrajectorySample(row []float32, tf *TrajectoryFeature, prediction int, world, inv rig.Transform, stats *ExtractionStats, fi, pose, offset int) {
	var v r3.Vec
	switch tf.Kind {
	case Position:
		v = inv.Apply(world.Pos)
	case Direction:
		v = inv.Rot.Rotate(world.Rot.Rotate(rig.Forward))
	}

	at := tf.Offset + prediction*tf.Arity
	if !tf.Project {
		writeVec3(row, at, v)
		return
	}

	// Ground-plane projection drops the vertical axis. Directions are
	// re-normalized so the projected sample stays a unit vector; positions
	// are not.
	x, y := v.X, v.Y
	if tf.Kind == Direction {
		norm := math.Hypot(x, y)
		if norm < minHorizontalNorm {
			// Near-vertical direction: the projection is undefined, and
			// re-normalizing would blow rounding noise up to a full unit
			// vector. Leave the slot at zero and record it, matching the
			// out-of-range policy.
			stats.AddSkippedSample(fmt.Sprintf(
				"trajectory feature %d: pose %d offset %+d direction is vertical, projection undefined", fi, pose, offset))
			return
		}
		x /= norm
		y /= norm
	}
	row[at] = float32(x)
	row[at+1] = float32(y)
}

func writeVec3(row []float32, at int, v r3.Vec) {
	row[at] = float32(v.X)
	row[at+1] = float32(v.Y)
	row[at+2] = float32(v.Z)
}
