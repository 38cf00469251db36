package rig

import "fmt"

// Pose holds one frame of local joint transforms, indexed by JointID.
type Pose struct {
	Local []Transform
}

// NewPose returns an identity pose for n joints.
func NewPose(n int) Pose {
	local := make([]Transform, n)
	for i := range local {
		local[i] = Identity()
	}
	return Pose{Local: local}
}

// World computes the world-space transform of a joint by accumulating local
// transforms up the parent chain. O(depth) per call; callers that evaluate
// many joints of the same pose should use a Walker to memoize results.
func (p Pose) World(s *Skeleton, id JointID) Transform {
	t := p.Local[id]
	for parent := s.Parent(id); parent != NoJoint; parent = s.Parent(parent) {
		t = p.Local[parent].Mul(t)
	}
	return t
}

// Walker memoizes per-joint world transforms for a single pose. It is reused
// across poses via Reset to keep the extraction loop allocation-free.
type Walker struct {
	skel  *Skeleton
	world []Transform
	done  []bool
}

// NewWalker returns a walker for poses of the given skeleton.
func NewWalker(s *Skeleton) *Walker {
	return &Walker{
		skel:  s,
		world: make([]Transform, s.JointCount()),
		done:  make([]bool, s.JointCount()),
	}
}

// Reset discards memoized transforms so the walker can serve a new pose.
func (w *Walker) Reset() {
	for i := range w.done {
		w.done[i] = false
	}
}

// World returns the world transform of id under pose p, computing and caching
// ancestors on first touch. The pose must not change between Reset calls.
func (w *Walker) World(p Pose, id JointID) Transform {
	if w.done[id] {
		return w.world[id]
	}
	parent := w.skel.Parent(id)
	t := p.Local[id]
	if parent != NoJoint {
		t = w.World(p, parent).Mul(t)
	}
	w.world[id] = t
	w.done[id] = true
	return t
}

func (p Pose) check(s *Skeleton) error {
	if len(p.Local) != s.JointCount() {
		return fmt.Errorf("pose has %d joints, skeleton has %d", len(p.Local), s.JointCount())
	}
	return nil
}
