package match

import (
	"github.com/stride-data/motion.match/internal/config"
	"github.com/stride-data/motion.match/internal/rig"
)

// Kind tags a resolved sub-feature. Resolution turns the string kinds of the
// config schema into small integers so the extraction loop dispatches over a
// flat table without string comparisons.
type Kind int

const (
	// Position samples a joint position relative to the character frame.
	Position Kind = iota
	// Direction samples a joint facing direction relative to the character frame.
	Direction
	// Velocity samples a joint velocity by finite difference of consecutive frames.
	Velocity
)

// TrajectoryFeature is a trajectory sub-feature resolved against a skeleton.
type TrajectoryFeature struct {
	Kind               Kind
	UseSimulationJoint bool
	JointID            rig.JointID // NoJoint when UseSimulationJoint
	TimeOffsets        []int
	Project            bool

	// Offset is the float index of this sub-feature's first value within a
	// feature vector; the sub-feature spans Arity*PredictionCount values.
	Offset int
	Arity  int
}

// PredictionCount returns the number of sampled time offsets.
func (f *TrajectoryFeature) PredictionCount() int { return len(f.TimeOffsets) }

// PoseFeature is a pose sub-feature resolved against a skeleton. Pose
// sub-features always span 3 values.
type PoseFeature struct {
	Kind    Kind
	JointID rig.JointID
	Offset  int
}

// Layout is the resolved, immutable shape of a feature vector: per
// sub-feature offsets and arities, the trajectory/pose block boundary, and
// the total vector size. A Layout is a pure function of its config and
// skeleton; resolving the same pair twice yields identical layouts.
type Layout struct {
	SimulationJoint rig.JointID
	Trajectory      []TrajectoryFeature
	Pose            []PoseFeature

	// PoseOffset is the float index where the pose block starts; the
	// trajectory block occupies [0, PoseOffset).
	PoseOffset int
	// FeatureSize is the total float count of one feature vector.
	FeatureSize int
}

// ResolveLayout resolves a feature config against a skeleton, computing all
// offsets and the total vector size. Unresolvable joints and structurally
// invalid sub-features fail with ConfigError before anything is allocated.
func ResolveLayout(cfg *config.FeatureConfig, skel *rig.Skeleton) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, configErrorf("%v", err)
	}

	layout := &Layout{SimulationJoint: skel.Root()}
	if cfg.SimulationJoint != "" {
		id := skel.FindJoint(cfg.SimulationJoint)
		if id == rig.NoJoint {
			return nil, configErrorf("simulation joint %q not found in skeleton", cfg.SimulationJoint)
		}
		layout.SimulationJoint = id
	}

	offset := 0
	for i, tc := range cfg.Trajectory {
		tf := TrajectoryFeature{
			UseSimulationJoint: tc.UseSimulationJoint,
			JointID:            rig.NoJoint,
			TimeOffsets:        tc.TimeOffsets,
			Project:            tc.Project,
			Offset:             offset,
			Arity:              3,
		}
		switch tc.Kind {
		case config.KindPosition:
			tf.Kind = Position
		case config.KindDirection:
			tf.Kind = Direction
		default:
			return nil, configErrorf("trajectory feature %d: unknown kind %q", i, tc.Kind)
		}
		if tc.Project {
			tf.Arity = 2
		}
		if !tc.UseSimulationJoint {
			id := skel.FindJoint(tc.Joint)
			if id == rig.NoJoint {
				return nil, configErrorf("trajectory feature %d: joint %q not found in skeleton", i, tc.Joint)
			}
			tf.JointID = id
		}
		layout.Trajectory = append(layout.Trajectory, tf)
		offset += tf.Arity * len(tf.TimeOffsets)
	}
	layout.PoseOffset = offset

	for i, pc := range cfg.Pose {
		pf := PoseFeature{Offset: offset}
		switch pc.Kind {
		case config.KindPosition:
			pf.Kind = Position
		case config.KindVelocity:
			pf.Kind = Velocity
		default:
			return nil, configErrorf("pose feature %d: unknown kind %q", i, pc.Kind)
		}
		id := skel.FindJoint(pc.Joint)
		if id == rig.NoJoint {
			return nil, configErrorf("pose feature %d: joint %q not found in skeleton", i, pc.Joint)
		}
		pf.JointID = id
		layout.Pose = append(layout.Pose, pf)
		offset += 3
	}
	layout.FeatureSize = offset

	return layout, nil
}

// Lookaround returns the maximum frame distances extraction may sample behind
// and ahead of a pose index: the extremes of the trajectory time offsets,
// plus one frame ahead when any velocity sub-feature is configured. Pose
// sources can use it to size their validity windows.
func (l *Layout) Lookaround() (behind, ahead int) {
	for _, tf := range l.Trajectory {
		for _, t := range tf.TimeOffsets {
			if -t > behind {
				behind = -t
			}
			if t > ahead {
				ahead = t
			}
		}
	}
	for _, pf := range l.Pose {
		if pf.Kind == Velocity && ahead < 1 {
			ahead = 1
		}
	}
	return behind, ahead
}
