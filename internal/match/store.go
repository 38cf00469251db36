package match

import "fmt"

// FeatureStore owns the flat buffers produced by extraction: one feature
// vector per pose (row-major), a validity flag per pose, and the shared
// per-dimension mean/stddev used for z-score normalization.
//
// Once extraction and normalization are complete the buffers are treated as
// immutable, so concurrent readers need no locking. Re-extraction builds a
// fresh store and publishes it whole (see Published); nothing mutates a
// published store in place.
type FeatureStore struct {
	layout *Layout
	count  int

	valid    []bool
	features []float32
	mean     []float32
	std      []float32

	released bool
}

// NewFeatureStore allocates zeroed buffers for count poses under the given
// layout. Either extraction or a bulk load must populate them before use.
func NewFeatureStore(layout *Layout, count int) *FeatureStore {
	return &FeatureStore{
		layout:   layout,
		count:    count,
		valid:    make([]bool, count),
		features: make([]float32, count*layout.FeatureSize),
		mean:     make([]float32, layout.FeatureSize),
		std:      make([]float32, layout.FeatureSize),
	}
}

// Layout returns the layout the store was built under.
func (s *FeatureStore) Layout() *Layout { return s.layout }

// Count returns the number of pose rows.
func (s *FeatureStore) Count() int { return s.count }

// FeatureSize returns the float count of one feature vector.
func (s *FeatureStore) FeatureSize() int { return s.layout.FeatureSize }

// Raw buffer handles for bulk distance computation by the search loop.
// Callers must treat them as read-only.

// Valid returns the per-row validity flags.
func (s *FeatureStore) Valid() []bool { return s.valid }

// Features returns the flat row-major feature matrix.
func (s *FeatureStore) Features() []float32 { return s.features }

// Mean returns the per-dimension means.
func (s *FeatureStore) Mean() []float32 { return s.mean }

// StandardDeviation returns the per-dimension standard deviations.
func (s *FeatureStore) StandardDeviation() []float32 { return s.std }

// row returns the backing slice of row i without copying.
func (s *FeatureStore) row(i int) []float32 {
	size := s.layout.FeatureSize
	return s.features[i*size : (i+1)*size]
}

func (s *FeatureStore) checkRow(i int) error {
	if s.released {
		return fmt.Errorf("feature store already released")
	}
	if i < 0 || i >= s.count {
		return &IndexError{What: "pose", Index: i, Count: s.count}
	}
	return nil
}

// Feature returns a copy of feature vector i.
func (s *FeatureStore) Feature(i int) ([]float32, error) {
	if err := s.checkRow(i); err != nil {
		return nil, err
	}
	out := make([]float32, s.layout.FeatureSize)
	copy(out, s.row(i))
	return out, nil
}

// TrajectorySample returns the arity-2 or arity-3 trajectory sample of row i
// at the given sub-feature and prediction index. With denormalize set, the
// inverse z-score transform is applied using the store's current statistics;
// stored data is never mutated.
func (s *FeatureStore) TrajectorySample(i, subFeature, prediction int, denormalize bool) ([]float32, error) {
	if err := s.checkRow(i); err != nil {
		return nil, err
	}
	if subFeature < 0 || subFeature >= len(s.layout.Trajectory) {
		return nil, &IndexError{What: "trajectory sub-feature", Index: subFeature, Count: len(s.layout.Trajectory)}
	}
	tf := &s.layout.Trajectory[subFeature]
	if prediction < 0 || prediction >= tf.PredictionCount() {
		return nil, &IndexError{What: "prediction", Index: prediction, Count: tf.PredictionCount()}
	}
	return s.sample(i, tf.Offset+prediction*tf.Arity, tf.Arity, denormalize), nil
}

// PoseSample returns the 3-float pose sample of row i at the given pose
// sub-feature index, optionally denormalized.
func (s *FeatureStore) PoseSample(i, subFeature int, denormalize bool) ([]float32, error) {
	if err := s.checkRow(i); err != nil {
		return nil, err
	}
	if subFeature < 0 || subFeature >= len(s.layout.Pose) {
		return nil, &IndexError{What: "pose sub-feature", Index: subFeature, Count: len(s.layout.Pose)}
	}
	return s.sample(i, s.layout.Pose[subFeature].Offset, 3, denormalize), nil
}

func (s *FeatureStore) sample(i, offset, arity int, denormalize bool) []float32 {
	row := s.row(i)
	out := make([]float32, arity)
	for d := 0; d < arity; d++ {
		v := row[offset+d]
		if denormalize {
			v = v*s.std[offset+d] + s.mean[offset+d]
		}
		out[d] = v
	}
	return out
}

// Bulk-load setters take ownership of externally built buffers, asserting an
// exact length match against the layout. The previously owned buffer is
// dropped, so repeated loads do not pin stale memory.

// SetValid replaces the validity flags.
func (s *FeatureStore) SetValid(valid []bool) error {
	if len(valid) != s.count {
		return &LayoutMismatchError{What: "valid", Want: s.count, Got: len(valid)}
	}
	s.valid = valid
	return nil
}

// SetFeatures replaces the feature matrix.
func (s *FeatureStore) SetFeatures(features []float32) error {
	if len(features) != s.count*s.layout.FeatureSize {
		return &LayoutMismatchError{What: "features", Want: s.count * s.layout.FeatureSize, Got: len(features)}
	}
	s.features = features
	return nil
}

// SetMean replaces the per-dimension means.
func (s *FeatureStore) SetMean(mean []float32) error {
	if len(mean) != s.layout.FeatureSize {
		return &LayoutMismatchError{What: "mean", Want: s.layout.FeatureSize, Got: len(mean)}
	}
	s.mean = mean
	return nil
}

// SetStandardDeviation replaces the per-dimension standard deviations.
func (s *FeatureStore) SetStandardDeviation(std []float32) error {
	if len(std) != s.layout.FeatureSize {
		return &LayoutMismatchError{What: "stddev", Want: s.layout.FeatureSize, Got: len(std)}
	}
	s.std = std
	return nil
}

// Release drops the store's buffers. It is idempotent and must be called
// before the store goes out of scope; afterwards row accessors fail.
func (s *FeatureStore) Release() {
	if s.released {
		return
	}
	s.released = true
	s.valid = nil
	s.features = nil
	s.mean = nil
	s.std = nil
}
