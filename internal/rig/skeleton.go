package rig

import "fmt"

// JointID indexes a joint within a Skeleton. The zero skeleton has no joints,
// so a JointID is only meaningful alongside the skeleton that issued it.
type JointID int

// NoJoint is returned by lookups that fail and by Parent for the root joint.
const NoJoint JointID = -1

// Skeleton is a joint hierarchy stored as flat parallel arrays: Names[i] and
// Parents[i] describe joint i. Parents[i] < i for every non-root joint, so a
// parent-chain walk always terminates and poses can be composed root-first.
type Skeleton struct {
	Names   []string
	Parents []JointID

	byName map[string]JointID
}

// NewSkeleton builds a skeleton from parallel name/parent arrays.
// Joint 0 must be the root (parent NoJoint) and every other joint must have a
// parent with a smaller index.
func NewSkeleton(names []string, parents []JointID) (*Skeleton, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("skeleton has no joints")
	}
	if len(names) != len(parents) {
		return nil, fmt.Errorf("skeleton name/parent length mismatch: %d vs %d", len(names), len(parents))
	}
	byName := make(map[string]JointID, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("joint %d has empty name", i)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate joint name %q", name)
		}
		byName[name] = JointID(i)

		p := parents[i]
		if i == 0 {
			if p != NoJoint {
				return nil, fmt.Errorf("joint 0 (%q) must be the root, has parent %d", name, p)
			}
			continue
		}
		if p < 0 || int(p) >= i {
			return nil, fmt.Errorf("joint %d (%q) has invalid parent %d", i, name, p)
		}
	}
	return &Skeleton{Names: names, Parents: parents, byName: byName}, nil
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int { return len(s.Names) }

// FindJoint resolves a joint name to its ID, or NoJoint if absent.
func (s *Skeleton) FindJoint(name string) JointID {
	if id, ok := s.byName[name]; ok {
		return id
	}
	return NoJoint
}

// Parent returns the parent of the given joint, or NoJoint for the root.
func (s *Skeleton) Parent(id JointID) JointID { return s.Parents[id] }

// Root returns the root joint (always joint 0).
func (s *Skeleton) Root() JointID { return 0 }

// Valid reports whether id refers to a joint of this skeleton.
func (s *Skeleton) Valid(id JointID) bool {
	return id >= 0 && int(id) < len(s.Names)
}
