package match

import (
	"math"

	"github.com/stride-data/motion.match/internal/monitoring"
)

// ComputeStatistics computes per-dimension mean and population standard
// deviation over the valid rows of the store and installs them as the
// store's normalization statistics. Invalid rows hold unreliable data and
// are excluded from both passes.
//
// The returned slice lists degenerate dimensions: dimensions that are
// constant across all valid rows and therefore have stddev 0. A degenerate
// dimension signals a data or configuration bug; normalization guards it
// explicitly rather than dividing by zero.
func ComputeStatistics(s *FeatureStore) ([]int, error) {
	size := s.layout.FeatureSize
	validRows := 0
	for i := 0; i < s.count; i++ {
		if s.valid[i] {
			validRows++
		}
	}
	if validRows == 0 {
		return nil, &StatisticsError{Reason: "no valid rows to compute statistics over"}
	}

	mean := make([]float64, size)
	for i := 0; i < s.count; i++ {
		if !s.valid[i] {
			continue
		}
		row := s.row(i)
		for d := 0; d < size; d++ {
			mean[d] += float64(row[d])
		}
	}
	for d := 0; d < size; d++ {
		mean[d] /= float64(validRows)
	}

	variance := make([]float64, size)
	for i := 0; i < s.count; i++ {
		if !s.valid[i] {
			continue
		}
		row := s.row(i)
		for d := 0; d < size; d++ {
			diff := float64(row[d]) - mean[d]
			variance[d] += diff * diff
		}
	}

	var degenerate []int
	for d := 0; d < size; d++ {
		s.mean[d] = float32(mean[d])
		std := math.Sqrt(variance[d] / float64(validRows))
		s.std[d] = float32(std)
		if std == 0 {
			degenerate = append(degenerate, d)
		}
	}
	if len(degenerate) > 0 {
		monitoring.Logf("feature statistics: %d degenerate dimension(s) with zero stddev: %v", len(degenerate), degenerate)
	}
	return degenerate, nil
}

// NormalizeAll computes statistics and z-score normalizes every valid row in
// place. Invalid rows are left untouched. Degenerate dimensions are written
// as 0 in every row (their raw value equals the mean everywhere) and are
// returned so callers can surface the condition.
func NormalizeAll(s *FeatureStore) ([]int, error) {
	degenerate, err := ComputeStatistics(s)
	if err != nil {
		return nil, err
	}
	size := s.layout.FeatureSize
	for i := 0; i < s.count; i++ {
		if !s.valid[i] {
			continue
		}
		row := s.row(i)
		for d := 0; d < size; d++ {
			if s.std[d] == 0 {
				row[d] = 0
				continue
			}
			row[d] = (row[d] - s.mean[d]) / s.std[d]
		}
	}
	return degenerate, nil
}

// NormalizeVector z-score normalizes an external vector of length
// FeatureSize in place using the given statistics. With trajectoryOnly set,
// only the trajectory block [0, PoseOffset) is transformed, leaving pose
// dimensions untouched — used when a live query's pose block is already
// normalized or intentionally excluded. Dimensions with zero stddev are
// written as 0, never NaN.
func (l *Layout) NormalizeVector(v, mean, std []float32, trajectoryOnly bool) error {
	if err := l.checkVector(v, mean, std); err != nil {
		return err
	}
	limit := l.FeatureSize
	if trajectoryOnly {
		limit = l.PoseOffset
	}
	for d := 0; d < limit; d++ {
		if std[d] == 0 {
			v[d] = 0
			continue
		}
		v[d] = (v[d] - mean[d]) / std[d]
	}
	return nil
}

// DenormalizeVector applies the exact inverse transform over all dimensions:
// v[d] = v[d]*std[d] + mean[d].
func (l *Layout) DenormalizeVector(v, mean, std []float32) error {
	if err := l.checkVector(v, mean, std); err != nil {
		return err
	}
	for d := 0; d < l.FeatureSize; d++ {
		v[d] = v[d]*std[d] + mean[d]
	}
	return nil
}

func (l *Layout) checkVector(v, mean, std []float32) error {
	if len(v) != l.FeatureSize {
		return &LayoutMismatchError{What: "vector", Want: l.FeatureSize, Got: len(v)}
	}
	if len(mean) != l.FeatureSize {
		return &LayoutMismatchError{What: "mean", Want: l.FeatureSize, Got: len(mean)}
	}
	if len(std) != l.FeatureSize {
		return &LayoutMismatchError{What: "stddev", Want: l.FeatureSize, Got: len(std)}
	}
	return nil
}
