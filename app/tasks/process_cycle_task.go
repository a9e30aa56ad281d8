package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
	"github.com/lysyi3m/news-digest/app/scoring"
)

// ProcessCycleTask runs one full ingestion cycle: fetch every configured
// source, score, summarize, deduplicate, persist, then deliver the unsent
// backlog as a digest.
type ProcessCycleTask struct {
	Task
	sources           []feed.Source
	fetcher           Fetcher
	scorer            *scoring.Scorer
	summarizer        *scoring.Summarizer
	deduplicator      Deduplicator
	items             ItemStore
	deliverer         Deliverer
	maxItemsPerDigest int
}

func NewProcessCycleTask(sources []feed.Source, fetcher Fetcher, scorer *scoring.Scorer,
	summarizer *scoring.Summarizer, deduplicator Deduplicator, items ItemStore,
	deliverer Deliverer, maxItemsPerDigest int) *ProcessCycleTask {
	return &ProcessCycleTask{
		Task:              NewTask(TaskTypeProcessCycle),
		sources:           sources,
		fetcher:           fetcher,
		scorer:            scorer,
		summarizer:        summarizer,
		deduplicator:      deduplicator,
		items:             items,
		deliverer:         deliverer,
		maxItemsPerDigest: maxItemsPerDigest,
	}
}

func (t *ProcessCycleTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var fetched []feed.Item
	for _, source := range t.sources {
		items, err := t.fetcher.Run(ctx, source)
		if err != nil {
			slog.Error("Failed to fetch source, skipping", "source", source.Name, "error", err)
			continue
		}
		fetched = append(fetched, items...)
	}

	accepted := t.scorer.Run(fetched)
	accepted = t.summarizer.Run(accepted)
	unique := t.deduplicator.Run(accepted)
	newCount := t.items.AddItems(toNewsItems(unique))

	batch, err := t.items.GetUnsentItems(t.maxItemsPerDigest)
	if err != nil {
		return fmt.Errorf("failed to load unsent items: %w", err)
	}

	// A failed delivery is a handled outcome: the deliverer has already
	// recorded it and the batch stays unsent for the next cycle.
	if err := t.deliverer.Run(ctx, batch); err != nil {
		slog.Error("Digest delivery failed, items remain queued", "items", len(batch), "error", err)
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"duration", t.GetDuration().String(),
		"fetched", len(fetched),
		"accepted", len(accepted),
		"new", newCount,
		"batch", len(batch))

	return nil
}

func toNewsItems(items []feed.Item) []database.NewsItem {
	records := make([]database.NewsItem, 0, len(items))
	for _, item := range items {
		records = append(records, database.NewsItem{
			Title:            item.Title,
			Link:             item.Link,
			Summary:          item.Summary,
			Source:           item.Source,
			PublishedAt:      item.PublishedAt,
			ContentHash:      item.ContentHash,
			MatchedTerms:     item.MatchedTerms,
			RelevanceSummary: item.RelevanceSummary,
		})
	}
	return records
}
