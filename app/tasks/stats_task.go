package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// StatsSummaryTask logs a periodic summary of the store contents.
type StatsSummaryTask struct {
	Task
	items ItemStore
}

func NewStatsSummaryTask(items ItemStore) *StatsSummaryTask {
	return &StatsSummaryTask{
		Task:  NewTask(TaskTypeStatsSummary),
		items: items,
	}
}

func (t *StatsSummaryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.items.GetStatistics()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	lastSend := "never"
	if stats.LastSuccessfulSendAt != nil {
		lastSend = stats.LastSuccessfulSendAt.Format("2006-01-02 15:04:05")
	}

	slog.Info("Statistics summary",
		"total", stats.TotalItems,
		"unsent", stats.UnsentItems,
		"sent", stats.SentItems,
		"last_send", lastSend)

	for source, count := range stats.ItemsBySource {
		slog.Info("Source statistics", "source", source, "items", count)
	}

	return nil
}
