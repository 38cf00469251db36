// Package monitoring carries the process-wide diagnostic seam. Extraction and
// normalization report degraded-but-recoverable conditions (skipped samples,
// degenerate dimensions) through Logf rather than returning errors, so hosts
// decide where those lines go.
package monitoring

import "log"

// Logf emits one diagnostic line. It starts out wired to log.Printf; swap it
// with SetLogger before concurrent use begins.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger rebinds Logf. A nil f discards all diagnostics.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
