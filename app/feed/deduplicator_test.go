package feed

import (
	"errors"
	"testing"
)

type mockHashStore struct {
	hashes map[string]struct{}
	err    error
}

func (m *mockHashStore) ContentHashes() (map[string]struct{}, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hashes, nil
}

func TestDeduplicator_Run_FiltersPersisted(t *testing.T) {
	seen := Item{Title: "Seen", Link: "https://example.com/seen"}
	seen.ContentHash = ContentHash(seen.Title, seen.Link)
	fresh := Item{Title: "Fresh", Link: "https://example.com/fresh"}
	fresh.ContentHash = ContentHash(fresh.Title, fresh.Link)

	store := &mockHashStore{hashes: map[string]struct{}{seen.ContentHash: {}}}
	deduplicator := NewDeduplicator(store)

	unique := deduplicator.Run([]Item{seen, fresh})

	if len(unique) != 1 {
		t.Fatalf("Expected 1 unique item, got %d", len(unique))
	}
	if unique[0].Title != "Fresh" {
		t.Errorf("Expected the unseen item to be admitted, got %q", unique[0].Title)
	}
}

func TestDeduplicator_Run_IntraBatchFirstWins(t *testing.T) {
	first := Item{Title: "Same", Link: "https://example.com/same", Source: "Source A"}
	first.ContentHash = ContentHash(first.Title, first.Link)
	second := Item{Title: "Same", Link: "https://example.com/same", Source: "Source B"}
	second.ContentHash = ContentHash(second.Title, second.Link)
	other := Item{Title: "Other", Link: "https://example.com/other"}
	other.ContentHash = ContentHash(other.Title, other.Link)

	deduplicator := NewDeduplicator(&mockHashStore{hashes: map[string]struct{}{}})

	unique := deduplicator.Run([]Item{first, second, other})

	if len(unique) != 2 {
		t.Fatalf("Expected 2 unique items, got %d", len(unique))
	}
	if unique[0].Source != "Source A" {
		t.Errorf("Expected the first occurrence to win, got source %q", unique[0].Source)
	}
	if unique[1].Title != "Other" {
		t.Errorf("Expected input order preserved, got %q second", unique[1].Title)
	}
}

func TestDeduplicator_Run_EmptyInput(t *testing.T) {
	deduplicator := NewDeduplicator(&mockHashStore{hashes: map[string]struct{}{}})

	unique := deduplicator.Run(nil)

	if len(unique) != 0 {
		t.Errorf("Expected no items, got %d", len(unique))
	}
}

func TestDeduplicator_Run_StoreErrorAdmitsAll(t *testing.T) {
	itemA := Item{Title: "A", Link: "https://example.com/a"}
	itemA.ContentHash = ContentHash(itemA.Title, itemA.Link)
	itemB := Item{Title: "B", Link: "https://example.com/b"}
	itemB.ContentHash = ContentHash(itemB.Title, itemB.Link)

	deduplicator := NewDeduplicator(&mockHashStore{err: errors.New("store unavailable")})

	unique := deduplicator.Run([]Item{itemA, itemB})

	// A failed hash lookup must not drop the cycle's candidates
	if len(unique) != 2 {
		t.Fatalf("Expected all candidates admitted on store error, got %d", len(unique))
	}
}
