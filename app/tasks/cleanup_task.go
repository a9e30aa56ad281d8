package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// CleanupTask removes delivered items older than the retention window.
type CleanupTask struct {
	Task
	items         ItemStore
	retentionDays int
}

func NewCleanupTask(items ItemStore, retentionDays int) *CleanupTask {
	return &CleanupTask{
		Task:          NewTask(TaskTypeCleanup),
		items:         items,
		retentionDays: retentionDays,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.items.Cleanup(t.retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean up old items: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"duration", t.GetDuration().String(),
		"retention_days", t.retentionDays,
		"deleted", deleted)

	return nil
}
