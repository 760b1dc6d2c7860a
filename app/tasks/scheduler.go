package tasks

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/cfg"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type scheduledTask struct {
	task  TaskInterface
	runAt time.Time
}

// taskQueue is a min-heap ordered by next-fire time.
type taskQueue []*scheduledTask

func (q taskQueue) Len() int           { return len(q) }
func (q taskQueue) Less(i, j int) bool { return q[i].runAt.Before(q[j].runAt) }
func (q taskQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)        { *q = append(*q, x.(*scheduledTask)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

type Scheduler struct {
	resolver    *config.Loader
	loader      *calendar.Loader
	processor   *calendar.Processor
	store       *cache.Store
	historyRepo database.HistoryRepository
	failureLog  string
	mu          sync.Mutex
	queue       taskQueue
	wake        chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewScheduler(resolver *config.Loader, loader *calendar.Loader, processor *calendar.Processor,
	store *cache.Store, historyRepo database.HistoryRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		resolver:    resolver,
		loader:      loader,
		processor:   processor,
		store:       store,
		historyRepo: historyRepo,
		failureLog:  cfg.Get().FailureLog,
		wake:        make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (s *Scheduler) Start() {
	s.scheduleStartupTasks()

	s.wg.Add(1)
	go s.worker()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) Schedule(task TaskInterface, delay time.Duration) {
	s.mu.Lock()
	heap.Push(&s.queue, &scheduledTask{task: task, runAt: time.Now().Add(delay)})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) scheduleStartupTasks() {
	names, err := s.resolver.List()
	if err != nil {
		slog.Warn("Failed to list configurations", "error", err)
		return
	}
	if len(names) == 0 {
		slog.Debug("No configurations found")
		return
	}

	slog.Debug("Scheduling startup tasks", "configurations", len(names))

	seenURLs := make(map[string]bool)

	for _, name := range names {
		entries, err := s.resolver.Resolve(name)
		if err != nil {
			slog.Warn("Failed to resolve configuration, skipping", "configuration", name, "error", err)
			continue
		}

		minCache := 0
		hasCached := false
		for _, entry := range entries {
			if !entry.Cached() {
				continue
			}
			if !hasCached || entry.Cache < minCache {
				minCache = entry.Cache
			}
			hasCached = true

			if seenURLs[entry.URL] {
				continue
			}
			seenURLs[entry.URL] = true
			s.Schedule(NewRefreshSourceTask(entry, s.loader, s.store), 0)
		}

		if hasCached {
			s.Schedule(NewPrecomputeTask(name, minCache, s.processor, s.store), 0)
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.ctx.Done():
				return
			case <-s.wake:
			}
			continue
		}

		delay := time.Until(s.queue[0].runAt)
		if delay > 0 {
			s.mu.Unlock()
			timer := time.NewTimer(delay)
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-s.wake:
				timer.Stop()
			case <-timer.C:
			}
			continue
		}

		next := heap.Pop(&s.queue).(*scheduledTask)
		s.mu.Unlock()

		s.executeTask(next.task)

		select {
		case <-s.ctx.Done():
			return
		default:
		}
	}
}

// executeTask runs one task with failure isolation: errors and panics are
// logged and recorded, and the task is rescheduled unconditionally.
func (s *Scheduler) executeTask(task TaskInterface) {
	defer s.Schedule(task, task.RescheduleAfter())

	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := s.runTask(taskCtx, task)
	duration := task.GetDuration()

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "target", task.GetTarget(), "id", task.GetID(), "error", err)
		s.appendFailure(task, err)
	}

	s.recordRun(task, duration, err)
}

func (s *Scheduler) runTask(ctx context.Context, task TaskInterface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v\n%s", r, debug.Stack())
		}
	}()

	return task.Execute(ctx)
}

// appendFailure captures the failure trace to a side file so transient
// source errors remain inspectable after the log rotates.
func (s *Scheduler) appendFailure(task TaskInterface, taskErr error) {
	f, err := os.OpenFile(s.failureLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("Failed to open failure log", "path", s.failureLog, "error", err)
		return
	}
	defer f.Close()

	entry := fmt.Sprintf("%s %s target=%s id=%s\n%v\n\n",
		time.Now().UTC().Format(time.RFC3339), string(task.GetType()), task.GetTarget(), task.GetID(), taskErr)
	if _, err := f.WriteString(entry); err != nil {
		slog.Warn("Failed to write failure log", "path", s.failureLog, "error", err)
	}
}

func (s *Scheduler) recordRun(task TaskInterface, duration time.Duration, taskErr error) {
	if s.historyRepo == nil {
		return
	}

	run := database.TaskRun{
		TaskType:   string(task.GetType()),
		Target:     task.GetTarget(),
		Success:    taskErr == nil,
		DurationMs: duration.Milliseconds(),
		RanAt:      time.Now().UTC(),
	}
	if taskErr != nil {
		run.Detail = taskErr.Error()
	}

	if err := s.historyRepo.RecordRun(run); err != nil {
		slog.Warn("Failed to record task run", "type", string(task.GetType()), "target", task.GetTarget(), "error", err)
	}
}
