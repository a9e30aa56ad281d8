package feed

import (
	"log/slog"
)

// HashStore is the slice of the item store the deduplicator needs: one bulk
// read of every content hash already persisted.
type HashStore interface {
	ContentHashes() (map[string]struct{}, error)
}

type Deduplicator struct {
	store HashStore
}

func NewDeduplicator(store HashStore) *Deduplicator {
	return &Deduplicator{store: store}
}

// Run admits only items whose content hash is neither persisted nor seen
// earlier in the same batch. Input order is preserved. If the store read
// fails, the candidate list is returned unfiltered: ingestion must not
// hard-fail on a transient store outage, at the cost of possible duplicate
// downstream writes for that cycle.
func (d *Deduplicator) Run(candidates []Item) []Item {
	existing, err := d.store.ContentHashes()
	if err != nil {
		slog.Warn("Dedup lookup failed, admitting all candidates unfiltered", "count", len(candidates), "error", err)
		return candidates
	}

	unique := make([]Item, 0, len(candidates))
	for _, item := range candidates {
		if _, ok := existing[item.ContentHash]; ok {
			continue
		}
		unique = append(unique, item)
		existing[item.ContentHash] = struct{}{}
	}

	slog.Debug("Deduplication complete", "candidates", len(candidates), "unique", len(unique))

	return unique
}
