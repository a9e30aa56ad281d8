package database

import (
	"time"
)

// Item is a persisted news item record.
type Item struct {
	ID               int64
	Title            string
	Link             string
	Summary          string
	Source           string
	PublishedAt      time.Time
	ContentHash      string
	MatchedTerms     []string
	RelevanceSummary string
	Sent             bool
	SentAt           *time.Time
	CreatedAt        time.Time
}

// NewsItem is the input shape for persistence: a scored, deduplicated entry
// that has not been stored yet.
type NewsItem struct {
	Title            string
	Link             string
	Summary          string
	Source           string
	PublishedAt      time.Time
	ContentHash      string
	MatchedTerms     []string
	RelevanceSummary string
}

// InsertOutcome reports what happened to a single item during a batch
// insert. Duplicate-by-hash is a normal skip, not an error.
type InsertOutcome int

const (
	InsertOutcomeInserted InsertOutcome = iota
	InsertOutcomeSkipped
	InsertOutcomeFailed
)

// DeliveryLogEntry is one append-only record of a delivery attempt.
type DeliveryLogEntry struct {
	ID           int64
	LoggedAt     time.Time
	ItemCount    int
	Success      bool
	ErrorMessage string
}

// Statistics summarizes the store contents.
type Statistics struct {
	TotalItems           int
	UnsentItems          int
	SentItems            int
	LastSuccessfulSendAt *time.Time
	ItemsBySource        map[string]int
}
