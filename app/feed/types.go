package feed

import (
	"time"
)

// Source is one configured feed: a display name mapped to a feed URL.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// Item is one ingested content entry as it moves through the pipeline.
// ID is zero until the item has been persisted.
type Item struct {
	ID          int64
	Title       string
	Link        string
	Summary     string
	Source      string
	PublishedAt time.Time

	ContentHash string

	// Scoring output, set by the scorer before persistence.
	Score            int
	MatchedTerms     []string
	RelevanceSummary string
}
