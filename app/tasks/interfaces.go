package tasks

import "time"

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application to manage the cache refresh and precompute
// timeline. Tasks run one at a time on a single worker, ordered by next-fire
// time, so two scheduled tasks never write the same cache artifact
// concurrently.
// Example usage:
//
//	scheduler := NewScheduler(resolver, loader, processor, store, historyRepo)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Schedule(task TaskInterface, delay time.Duration)
}
