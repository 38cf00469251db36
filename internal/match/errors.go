package match

import "fmt"

// ConfigError reports an invalid or unresolvable feature configuration. It is
// fatal and raised before any buffer is touched.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "feature config: " + e.Reason }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// LayoutMismatchError reports a buffer whose length does not match the layout
// it is being attached to, or a snapshot saved under a different layout.
// Detail overrides the length-based message for non-length mismatches.
type LayoutMismatchError struct {
	What string
	Want int
	Got  int

	Detail string
}

func (e *LayoutMismatchError) Error() string {
	if e.Detail != "" {
		return "layout mismatch: " + e.Detail
	}
	return fmt.Sprintf("layout mismatch: %s length %d, want %d", e.What, e.Got, e.Want)
}

// StatisticsError reports that normalization statistics cannot be computed,
// typically because no valid rows exist.
type StatisticsError struct {
	Reason string
}

func (e *StatisticsError) Error() string { return "statistics: " + e.Reason }

// IndexError reports an out-of-range accessor argument. This is a programmer
// error on the caller's side, surfaced rather than panicking because the
// indices often originate from external query input.
type IndexError struct {
	What  string
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Count)
}
