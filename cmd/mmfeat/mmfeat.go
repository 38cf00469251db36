// Command mmfeat extracts motion-matching feature vectors from a pose
// database clip, normalizes them, and persists the result as a snapshot the
// runtime can restore at load time.
package main

import (
	"flag"
	"log"

	"github.com/stride-data/motion.match/internal/config"
	"github.com/stride-data/motion.match/internal/match"
	"github.com/stride-data/motion.match/internal/match/storage/sqlite"
	"github.com/stride-data/motion.match/internal/rig"
)

var (
	clipFile    = flag.String("clip", "", "Path to the pose database clip (gob, written by rig.Clip.Save)")
	configFile  = flag.String("config", "", "Path to the feature schema JSON file")
	dbFile      = flag.String("db", "features.db", "Path to the SQLite snapshot database")
	reason      = flag.String("reason", "cli-extract", "Snapshot reason recorded with the save")
	noNormalize = flag.Bool("no-normalize", false, "Persist raw feature values without z-score normalization")
)

func main() {
	flag.Parse()
	if *clipFile == "" || *configFile == "" {
		flag.Usage()
		log.Fatal("both -clip and -config are required")
	}

	cfg, err := config.LoadFeatureConfig(*configFile)
	if err != nil {
		log.Fatalf("load feature config: %v", err)
	}
	clip, err := rig.LoadClip(*clipFile)
	if err != nil {
		log.Fatalf("load clip: %v", err)
	}
	log.Printf("loaded clip: %d joints, %d poses at %.1f fps",
		clip.Skeleton().JointCount(), clip.PoseCount(), 1/clip.FrameDuration())

	layout, err := match.ResolveLayout(cfg, clip.Skeleton())
	if err != nil {
		log.Fatalf("resolve feature layout: %v", err)
	}
	log.Printf("feature layout: %d trajectory + %d pose sub-features, %d floats per vector",
		len(layout.Trajectory), len(layout.Pose), layout.FeatureSize)

	behind, ahead := layout.Lookaround()
	clip.SetLookaround(behind, ahead)

	store, stats, err := match.Extract(clip, layout)
	if err != nil {
		log.Fatalf("extract features: %v", err)
	}
	defer store.Release()
	stats.LogStats()
	if warnings, total := stats.Warnings(); total > 0 {
		for _, w := range warnings {
			log.Printf("extraction warning: %s", w)
		}
		if int64(len(warnings)) < total {
			log.Printf("... and %d more warnings", total-int64(len(warnings)))
		}
	}

	if !*noNormalize {
		degenerate, err := match.NormalizeAll(store)
		if err != nil {
			log.Fatalf("normalize features: %v", err)
		}
		if len(degenerate) > 0 {
			log.Printf("warning: %d constant feature dimension(s) %v carry no signal for matching",
				len(degenerate), degenerate)
		}
	}

	db, err := sqlite.Open(*dbFile)
	if err != nil {
		log.Fatalf("open snapshot db: %v", err)
	}
	defer db.Close()

	id, err := db.Save(store, cfg.Fingerprint(), *reason, !*noNormalize)
	if err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	log.Printf("saved snapshot %s (schema %.12s) to %s", id, cfg.Fingerprint(), *dbFile)
}
