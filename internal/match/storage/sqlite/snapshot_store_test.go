package sqlite

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-data/motion.match/internal/config"
	"github.com/stride-data/motion.match/internal/match"
	"github.com/stride-data/motion.match/internal/rig"
)

func testLayout(t *testing.T) (*match.Layout, *config.FeatureConfig) {
	t.Helper()
	skel, err := rig.NewSkeleton([]string{"Hips", "LeftFoot"}, []rig.JointID{rig.NoJoint, 0})
	require.NoError(t, err)

	cfg := &config.FeatureConfig{
		Trajectory: []config.TrajectoryFeatureConfig{
			{Kind: config.KindPosition, UseSimulationJoint: true, TimeOffsets: []int{1}, Project: true},
		},
		Pose: []config.PoseFeatureConfig{{Kind: config.KindPosition, Joint: "LeftFoot"}},
	}
	layout, err := match.ResolveLayout(cfg, skel)
	require.NoError(t, err)
	require.Equal(t, 5, layout.FeatureSize)
	return layout, cfg
}

func testStore(t *testing.T, layout *match.Layout) *match.FeatureStore {
	t.Helper()
	s := match.NewFeatureStore(layout, 2)
	require.NoError(t, s.SetValid([]bool{true, false}))
	require.NoError(t, s.SetFeatures([]float32{
		1, 2, 3, 4, 5,
		0, 0, 0, 0, 0,
	}))
	require.NoError(t, s.SetMean([]float32{1, 1, 1, 1, 1}))
	require.NoError(t, s.SetStandardDeviation([]float32{2, 2, 2, 2, 2}))
	return s
}

func openTestDB(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotStore_SaveLoadRoundTrip(t *testing.T) {
	layout, cfg := testLayout(t)
	store := testStore(t, layout)
	defer store.Release()
	db := openTestDB(t)

	id, err := db.Save(store, cfg.Fingerprint(), "unit-test", true)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, snap, err := db.Load(id, layout, cfg.Fingerprint())
	require.NoError(t, err)
	defer loaded.Release()

	assert.Equal(t, id, snap.SnapshotID)
	assert.Equal(t, 2, snap.PoseCount)
	assert.Equal(t, layout.FeatureSize, snap.FeatureSize)
	assert.Equal(t, "unit-test", snap.SnapshotReason)
	assert.True(t, snap.Normalized)

	assert.Equal(t, store.Valid(), loaded.Valid())
	assert.Equal(t, store.Features(), loaded.Features())
	assert.Equal(t, store.Mean(), loaded.Mean())
	assert.Equal(t, store.StandardDeviation(), loaded.StandardDeviation())

	// Loaded stores serve the typed accessors.
	sample, err := loaded.TrajectorySample(0, 0, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 5}, sample)
}

func TestSnapshotStore_FingerprintMismatch(t *testing.T) {
	layout, cfg := testLayout(t)
	store := testStore(t, layout)
	defer store.Release()
	db := openTestDB(t)

	id, err := db.Save(store, cfg.Fingerprint(), "unit-test", false)
	require.NoError(t, err)

	var mismatch *match.LayoutMismatchError
	_, _, err = db.Load(id, layout, "a different fingerprint")
	require.ErrorAs(t, err, &mismatch)
}

func TestSnapshotStore_Latest(t *testing.T) {
	layout, cfg := testLayout(t)
	store := testStore(t, layout)
	defer store.Release()
	db := openTestDB(t)

	_, err := db.Save(store, cfg.Fingerprint(), "first", false)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // created_at_ns orders the snapshots
	second, err := db.Save(store, cfg.Fingerprint(), "second", true)
	require.NoError(t, err)

	loaded, snap, err := db.Latest(layout, cfg.Fingerprint())
	require.NoError(t, err)
	defer loaded.Release()
	assert.Equal(t, second, snap.SnapshotID)

	_, _, err = db.Latest(layout, "unknown fingerprint")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSnapshotStore_LoadMissing(t *testing.T) {
	layout, cfg := testLayout(t)
	db := openTestDB(t)

	_, _, err := db.Load("no-such-snapshot", layout, cfg.Fingerprint())
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
