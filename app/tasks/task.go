package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRefreshSource TaskType = "refresh_source"
	TaskTypePrecompute    TaskType = "precompute"
)

// MinRescheduleMinutes floors reschedule delays so a zero or negative
// cache value cannot cause runaway refresh loops.
const MinRescheduleMinutes = 10

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTarget() string
	Start()
	GetDuration() time.Duration
	RescheduleAfter() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	Target    string
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetTarget() string {
	return t.Target
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

func NewTask(taskType TaskType, target string) Task {
	return Task{
		ID:     uuid.NewString(),
		Type:   taskType,
		Target: target,
	}
}

func clampDelay(minutes int) time.Duration {
	if minutes < MinRescheduleMinutes {
		minutes = MinRescheduleMinutes
	}
	return time.Duration(minutes) * time.Minute
}
