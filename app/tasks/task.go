package tasks

import (
	"context"
	"time"
)

type TaskType string

const (
	TaskTypeProcessCycle TaskType = "process_cycle"
	TaskTypeCleanup      TaskType = "cleanup"
	TaskTypeStatsSummary TaskType = "stats_summary"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetType() TaskType
	Start()
	GetDuration() time.Duration
}

type Task struct {
	Type      TaskType
	StartedAt *time.Time
}

func NewTask(taskType TaskType) Task {
	return Task{Type: taskType}
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
