package match

import (
	"sync"

	"github.com/stride-data/motion.match/internal/monitoring"
)

// maxRecordedWarnings caps the number of warning messages kept verbatim;
// further warnings are counted but not stored.
const maxRecordedWarnings = 20

// ExtractionStats tracks counters and non-fatal diagnostics for one
// extraction run with thread-safe operations.
type ExtractionStats struct {
	mu             sync.Mutex
	poseCount      int64
	validCount     int64
	skippedSamples int64
	warningCount   int64
	warnings       []string
}

// NewExtractionStats creates a new ExtractionStats instance.
func NewExtractionStats() *ExtractionStats {
	return &ExtractionStats{}
}

// AddPose counts one processed pose; valid marks whether it produced a row.
func (es *ExtractionStats) AddPose(valid bool) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.poseCount++
	if valid {
		es.validCount++
	}
}

// AddSkippedSample records a non-fatal per-sample warning: the slot stays at
// zero and extraction continues.
func (es *ExtractionStats) AddSkippedSample(msg string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.skippedSamples++
	es.warningCount++
	if len(es.warnings) < maxRecordedWarnings {
		es.warnings = append(es.warnings, msg)
	}
}

// Counts returns the current counters.
func (es *ExtractionStats) Counts() (poses, valid, skipped int64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.poseCount, es.validCount, es.skippedSamples
}

// Warnings returns the recorded warning messages (capped) and the total
// warning count.
func (es *ExtractionStats) Warnings() ([]string, int64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	out := make([]string, len(es.warnings))
	copy(out, es.warnings)
	return out, es.warningCount
}

// LogStats logs a one-line extraction summary.
func (es *ExtractionStats) LogStats() {
	poses, valid, skipped := es.Counts()
	if skipped > 0 {
		monitoring.Logf("Extraction stats: %d poses, %d valid rows, %d samples skipped", poses, valid, skipped)
		return
	}
	monitoring.Logf("Extraction stats: %d poses, %d valid rows", poses, valid)
}
