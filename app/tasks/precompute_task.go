package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/ical"
)

type PrecomputeTask struct {
	Task
	MinCache  int
	processor *calendar.Processor
	store     *cache.Store
}

func NewPrecomputeTask(name string, minCache int, processor *calendar.Processor, store *cache.Store) *PrecomputeTask {
	return &PrecomputeTask{
		Task:      NewTask(TaskTypePrecompute, name),
		MinCache:  minCache,
		processor: processor,
		store:     store,
	}
}

func (t *PrecomputeTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The precomputed artifact itself must not feed its own refresh.
	cal, err := t.processor.Run(ctx, t.Target, false)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if err := t.store.WriteConfig(t.Target, ical.Encode(cal)); err != nil {
		return fmt.Errorf("failed to write precomputed artifact: %w", err)
	}

	slog.Info("Task completed",
		"type", "Precompute",
		"configuration", t.Target,
		"duration", t.GetDuration(),
		"events", len(cal.Events))

	return nil
}

func (t *PrecomputeTask) RescheduleAfter() time.Duration {
	return clampDelay(t.MinCache)
}
