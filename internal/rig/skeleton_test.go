package rig

import "testing"

func testSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	s, err := NewSkeleton(
		[]string{"Hips", "Spine", "LeftFoot"},
		[]JointID{NoJoint, 0, 1},
	)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	return s
}

func TestNewSkeleton_Validation(t *testing.T) {
	cases := []struct {
		name    string
		names   []string
		parents []JointID
	}{
		{"empty", nil, nil},
		{"length mismatch", []string{"Hips", "Spine"}, []JointID{NoJoint}},
		{"root with parent", []string{"Hips", "Spine"}, []JointID{0, 0}},
		{"duplicate name", []string{"Hips", "Hips"}, []JointID{NoJoint, 0}},
		{"forward parent", []string{"Hips", "Spine", "Chest"}, []JointID{NoJoint, 2, 1}},
		{"self parent", []string{"Hips", "Spine"}, []JointID{NoJoint, 1}},
		{"empty name", []string{"Hips", ""}, []JointID{NoJoint, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSkeleton(tc.names, tc.parents); err == nil {
				t.Errorf("NewSkeleton(%v, %v) succeeded, want error", tc.names, tc.parents)
			}
		})
	}
}

func TestSkeleton_Lookup(t *testing.T) {
	s := testSkeleton(t)

	if got := s.JointCount(); got != 3 {
		t.Errorf("JointCount = %d, want 3", got)
	}
	if got := s.FindJoint("Spine"); got != 1 {
		t.Errorf("FindJoint(Spine) = %d, want 1", got)
	}
	if got := s.FindJoint("Tail"); got != NoJoint {
		t.Errorf("FindJoint(Tail) = %d, want NoJoint", got)
	}
	if got := s.Parent(2); got != 1 {
		t.Errorf("Parent(2) = %d, want 1", got)
	}
	if got := s.Parent(s.Root()); got != NoJoint {
		t.Errorf("Parent(root) = %d, want NoJoint", got)
	}
	if s.Valid(NoJoint) || s.Valid(3) {
		t.Error("Valid accepted out-of-range joint")
	}
	if !s.Valid(0) || !s.Valid(2) {
		t.Error("Valid rejected in-range joint")
	}
}
