package match

import "sync/atomic"

// Published hands a fully built, immutable FeatureStore to concurrent query
// readers. Re-extraction swaps in a complete replacement store; readers only
// ever observe a whole snapshot, never a partially updated one.
type Published struct {
	store atomic.Pointer[FeatureStore]
}

// Load returns the current snapshot, or nil before the first Swap.
func (p *Published) Load() *FeatureStore {
	return p.store.Load()
}

// Swap publishes next and returns the previous snapshot, which the caller
// must Release once any readers still holding it have drained.
func (p *Published) Swap(next *FeatureStore) *FeatureStore {
	return p.store.Swap(next)
}
