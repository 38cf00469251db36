// Package sqlite persists feature-store snapshots so precomputed feature
// databases can be restored at load time instead of re-extracted.
package sqlite

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/stride-data/motion.match/internal/match"
)

//go:embed schema.sql
var schemaSQL string

// FeatureSnapshot is the persisted form of a feature store. The four blobs
// hold, in order: validity flags, the flat row-major feature matrix, the
// per-dimension means, and the per-dimension standard deviations.
type FeatureSnapshot struct {
	SnapshotID        string
	CreatedAtNs       int64
	PoseCount         int
	FeatureSize       int
	SchemaFingerprint string
	SnapshotReason    string
	Normalized        bool
}

// SnapshotStore provides persistence for feature snapshots.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) a snapshot database at path.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// NewSnapshotStore creates a SnapshotStore backed by an existing database.
// The schema must already be applied.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// Save persists the store's buffers under the given config fingerprint and
// returns the new snapshot ID.
func (s *SnapshotStore) Save(store *match.FeatureStore, fingerprint, reason string, normalized bool) (string, error) {
	validBlob, err := serialize(store.Valid())
	if err != nil {
		return "", fmt.Errorf("serialize valid flags: %w", err)
	}
	featuresBlob, err := serialize(store.Features())
	if err != nil {
		return "", fmt.Errorf("serialize features: %w", err)
	}
	meanBlob, err := serialize(store.Mean())
	if err != nil {
		return "", fmt.Errorf("serialize mean: %w", err)
	}
	stdBlob, err := serialize(store.StandardDeviation())
	if err != nil {
		return "", fmt.Errorf("serialize stddev: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO feature_snapshots (
			snapshot_id, created_at_ns, pose_count, feature_size,
			schema_fingerprint, snapshot_reason, normalized,
			valid_blob, features_blob, mean_blob, stddev_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		id,
		time.Now().UnixNano(),
		store.Count(),
		store.FeatureSize(),
		fingerprint,
		reason,
		boolToInt(normalized),
		validBlob,
		featuresBlob,
		meanBlob,
		stdBlob,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// Load restores the snapshot into a fresh FeatureStore under the given
// layout. The snapshot's fingerprint and every buffer length must match the
// layout; any mismatch fails with LayoutMismatchError rather than silently
// reinterpreting the stored data.
func (s *SnapshotStore) Load(snapshotID string, layout *match.Layout, fingerprint string) (*match.FeatureStore, *FeatureSnapshot, error) {
	query := `
		SELECT snapshot_id, created_at_ns, pose_count, feature_size,
		       schema_fingerprint, snapshot_reason, normalized,
		       valid_blob, features_blob, mean_blob, stddev_blob
		FROM feature_snapshots
		WHERE snapshot_id = ?
	`
	return s.load(s.db.QueryRow(query, snapshotID), layout, fingerprint)
}

// Latest restores the most recent snapshot saved under the fingerprint.
// Returns sql.ErrNoRows when none exists.
func (s *SnapshotStore) Latest(layout *match.Layout, fingerprint string) (*match.FeatureStore, *FeatureSnapshot, error) {
	query := `
		SELECT snapshot_id, created_at_ns, pose_count, feature_size,
		       schema_fingerprint, snapshot_reason, normalized,
		       valid_blob, features_blob, mean_blob, stddev_blob
		FROM feature_snapshots
		WHERE schema_fingerprint = ?
		ORDER BY created_at_ns DESC
		LIMIT 1
	`
	return s.load(s.db.QueryRow(query, fingerprint), layout, fingerprint)
}

func (s *SnapshotStore) load(row *sql.Row, layout *match.Layout, fingerprint string) (*match.FeatureStore, *FeatureSnapshot, error) {
	var snap FeatureSnapshot
	var reason sql.NullString
	var normalized int
	var validBlob, featuresBlob, meanBlob, stdBlob []byte

	err := row.Scan(
		&snap.SnapshotID,
		&snap.CreatedAtNs,
		&snap.PoseCount,
		&snap.FeatureSize,
		&snap.SchemaFingerprint,
		&reason,
		&normalized,
		&validBlob,
		&featuresBlob,
		&meanBlob,
		&stdBlob,
	)
	if err != nil {
		return nil, nil, err
	}
	snap.SnapshotReason = reason.String
	snap.Normalized = normalized != 0

	if snap.SchemaFingerprint != fingerprint {
		return nil, nil, &match.LayoutMismatchError{
			What:   "schema fingerprint",
			Detail: fmt.Sprintf("snapshot %s was saved under schema %.12s, current schema is %.12s", snap.SnapshotID, snap.SchemaFingerprint, fingerprint),
		}
	}
	if snap.FeatureSize != layout.FeatureSize {
		return nil, nil, &match.LayoutMismatchError{What: "feature size", Want: layout.FeatureSize, Got: snap.FeatureSize}
	}

	var valid []bool
	if err := deserialize(validBlob, &valid); err != nil {
		return nil, nil, fmt.Errorf("decode valid flags: %w", err)
	}
	var features, mean, std []float32
	if err := deserialize(featuresBlob, &features); err != nil {
		return nil, nil, fmt.Errorf("decode features: %w", err)
	}
	if err := deserialize(meanBlob, &mean); err != nil {
		return nil, nil, fmt.Errorf("decode mean: %w", err)
	}
	if err := deserialize(stdBlob, &std); err != nil {
		return nil, nil, fmt.Errorf("decode stddev: %w", err)
	}

	store := match.NewFeatureStore(layout, snap.PoseCount)
	if err := store.SetValid(valid); err != nil {
		return nil, nil, err
	}
	if err := store.SetFeatures(features); err != nil {
		return nil, nil, err
	}
	if err := store.SetMean(mean); err != nil {
		return nil, nil, err
	}
	if err := store.SetStandardDeviation(std); err != nil {
		return nil, nil, err
	}
	return store, &snap, nil
}

// serialize compresses a buffer using gob encoding and gzip compression.
func serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(v); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserialize decompresses and decodes a gob+gzip blob into out.
func deserialize(blob []byte, out interface{}) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()
	return gob.NewDecoder(gz).Decode(out)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
