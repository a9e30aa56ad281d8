package tasks

import (
	"context"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
)

// ItemStore is the slice of the item repository the tasks consume.
type ItemStore interface {
	AddItems(items []database.NewsItem) int
	GetUnsentItems(limit int) ([]database.Item, error)
	Cleanup(olderThanDays int) (int64, error)
	GetStatistics() (*database.Statistics, error)
}

// DeliveryLogger appends cycle outcomes to the delivery history.
type DeliveryLogger interface {
	Log(itemCount int, success bool, errorMessage string) error
}

// Fetcher retrieves and normalizes one source's entries.
type Fetcher interface {
	Run(ctx context.Context, source feed.Source) ([]feed.Item, error)
}

// Deduplicator admits only items not seen before.
type Deduplicator interface {
	Run(items []feed.Item) []feed.Item
}

// Deliverer sends one unsent batch and records the outcome.
type Deliverer interface {
	Run(ctx context.Context, batch []database.Item) error
}
