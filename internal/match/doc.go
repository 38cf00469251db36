// Package match owns the motion-matching feature-set engine.
//
// Responsibilities: resolving a declarative feature configuration into a
// flat vector layout, extracting character-relative trajectory and pose
// features from a pose database, z-score normalization statistics, and the
// flat feature buffers the nearest-neighbor search reads.
// Key types: Layout, FeatureStore, ExtractionStats, Published.
//
// No SQL/database code is allowed in this package; snapshot persistence
// lives in storage/sqlite.
package match
