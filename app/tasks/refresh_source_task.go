package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

type RefreshSourceTask struct {
	Task
	Entry  config.Entry
	loader *calendar.Loader
	store  *cache.Store
}

func NewRefreshSourceTask(entry config.Entry, loader *calendar.Loader, store *cache.Store) *RefreshSourceTask {
	return &RefreshSourceTask{
		Task:   NewTask(TaskTypeRefreshSource, entry.URL),
		Entry:  entry,
		loader: loader,
		store:  store,
	}
}

func (t *RefreshSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cal, err := t.loader.FetchRemote(ctx, t.Entry)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	ical.Horodate(cal, ical.CachedMarker, time.Now().UTC())

	if err := t.store.WriteURL(t.Entry.URL, ical.Encode(cal)); err != nil {
		return fmt.Errorf("failed to write cache artifact: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshSource",
		"source", t.Entry.Name,
		"duration", t.GetDuration(),
		"events", len(cal.Events))

	return nil
}

func (t *RefreshSourceTask) RescheduleAfter() time.Duration {
	return clampDelay(t.Entry.Cache)
}
