package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Feature kinds. Trajectory sub-features sample the character's root motion
// at configured frame offsets; pose sub-features sample a body joint at the
// current frame.
const (
	KindPosition  = "position"
	KindDirection = "direction"
	KindVelocity  = "velocity"
)

// TrajectoryFeatureConfig describes one trajectory sub-feature.
type TrajectoryFeatureConfig struct {
	// Kind is "position" or "direction".
	Kind string `json:"kind"`
	// UseSimulationJoint samples the simulation joint itself rather than a
	// named joint.
	UseSimulationJoint bool `json:"use_simulation_joint,omitempty"`
	// Joint is the sampled joint name; required unless UseSimulationJoint.
	Joint string `json:"joint,omitempty"`
	// TimeOffsets are the frame offsets sampled relative to the current pose.
	// Negative offsets look behind, positive ahead.
	TimeOffsets []int `json:"time_offsets"`
	// Project drops the vertical axis, reducing the sample to the ground
	// plane (arity 2 instead of 3).
	Project bool `json:"project,omitempty"`
}

// PoseFeatureConfig describes one pose sub-feature.
type PoseFeatureConfig struct {
	// Kind is "position" or "velocity".
	Kind string `json:"kind"`
	// Joint is the sampled joint name.
	Joint string `json:"joint"`
}

// FeatureConfig is the declarative layout of a feature vector. The schema
// matches the JSON config file format, so the same document drives both
// extraction tooling and load-time restore.
type FeatureConfig struct {
	// SimulationJoint names the joint defining the character reference frame.
	// Empty means the skeleton root.
	SimulationJoint string `json:"simulation_joint,omitempty"`

	Trajectory []TrajectoryFeatureConfig `json:"trajectory"`
	Pose       []PoseFeatureConfig       `json:"pose"`
}

// Validate checks the config for structural errors that do not require a
// skeleton to detect. Joint resolution happens later, against a skeleton.
func (c *FeatureConfig) Validate() error {
	if len(c.Trajectory) == 0 && len(c.Pose) == 0 {
		return fmt.Errorf("feature config has no sub-features")
	}
	for i, tf := range c.Trajectory {
		if tf.Kind != KindPosition && tf.Kind != KindDirection {
			return fmt.Errorf("trajectory feature %d: unknown kind %q", i, tf.Kind)
		}
		if len(tf.TimeOffsets) == 0 {
			return fmt.Errorf("trajectory feature %d: no time offsets", i)
		}
		if !tf.UseSimulationJoint && tf.Joint == "" {
			return fmt.Errorf("trajectory feature %d: joint name required unless use_simulation_joint", i)
		}
	}
	for i, pf := range c.Pose {
		if pf.Kind != KindPosition && pf.Kind != KindVelocity {
			return fmt.Errorf("pose feature %d: unknown kind %q", i, pf.Kind)
		}
		if pf.Joint == "" {
			return fmt.Errorf("pose feature %d: joint name required", i)
		}
	}
	return nil
}

// Fingerprint returns a stable hash of the config. Persistence records it so
// that a snapshot saved under one layout is never reinterpreted under another.
func (c *FeatureConfig) Fingerprint() string {
	// json.Marshal is deterministic for a struct: fields are emitted in
	// declaration order.
	b, err := json.Marshal(c)
	if err != nil {
		// A FeatureConfig contains only marshalable fields.
		panic(fmt.Sprintf("marshal feature config: %v", err))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// LoadFeatureConfig loads and validates a FeatureConfig from a JSON file.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FeatureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
