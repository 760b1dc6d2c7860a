package tasks

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/database"
)

type fakeTask struct {
	Task
	executed   chan struct{}
	err        error
	panicValue any
	reschedule time.Duration
}

func newFakeTask(reschedule time.Duration) *fakeTask {
	return &fakeTask{
		Task:       NewTask(TaskTypeRefreshSource, "https://example.com/feed.ics"),
		executed:   make(chan struct{}, 16),
		reschedule: reschedule,
	}
}

func (t *fakeTask) Execute(ctx context.Context) error {
	select {
	case t.executed <- struct{}{}:
	default:
	}
	if t.panicValue != nil {
		panic(t.panicValue)
	}
	return t.err
}

func (t *fakeTask) RescheduleAfter() time.Duration {
	return t.reschedule
}

type fakeHistoryRepo struct {
	mu   sync.Mutex
	runs []database.TaskRun
}

func (r *fakeHistoryRepo) RecordRun(run database.TaskRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeHistoryRepo) GetStats(limit int) (*database.Stats, error) {
	return &database.Stats{}, nil
}

func (r *fakeHistoryRepo) recorded() []database.TaskRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]database.TaskRun(nil), r.runs...)
}

func newTestScheduler(t *testing.T, historyRepo database.HistoryRepository) *Scheduler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		historyRepo: historyRepo,
		failureLog:  filepath.Join(t.TempDir(), "failures.log"),
		wake:        make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
	t.Cleanup(s.Stop)

	return s
}

func waitExecuted(t *testing.T, task *fakeTask, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-task.executed:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for execution %d of %d", i+1, n)
		}
	}
}

func TestSchedulerExecutesTask(t *testing.T) {
	s := newTestScheduler(t, nil)

	task := newFakeTask(time.Hour)
	s.Schedule(task, 0)

	s.wg.Add(1)
	go s.worker()

	waitExecuted(t, task, 1)
}

func TestSchedulerHonorsDelayOrdering(t *testing.T) {
	s := newTestScheduler(t, nil)

	late := newFakeTask(time.Hour)
	early := newFakeTask(time.Hour)
	order := make(chan string, 2)
	go func() {
		<-late.executed
		order <- "late"
	}()
	go func() {
		<-early.executed
		order <- "early"
	}()

	s.Schedule(late, 200*time.Millisecond)
	s.Schedule(early, 10*time.Millisecond)

	s.wg.Add(1)
	go s.worker()

	first := <-order
	if first != "early" {
		t.Errorf("expected earlier task to run first, got %q", first)
	}
	<-order
}

func TestFailedTaskStillReschedules(t *testing.T) {
	repo := &fakeHistoryRepo{}
	s := newTestScheduler(t, repo)

	task := newFakeTask(5 * time.Millisecond)
	task.err = errors.New("source unreachable")
	s.Schedule(task, 0)

	s.wg.Add(1)
	go s.worker()

	waitExecuted(t, task, 3)
	s.Stop()

	data, err := os.ReadFile(s.failureLog)
	if err != nil {
		t.Fatalf("reading failure log: %v", err)
	}
	if !strings.Contains(string(data), "source unreachable") {
		t.Errorf("failure log missing error, got:\n%s", data)
	}

	runs := repo.recorded()
	if len(runs) < 3 {
		t.Fatalf("expected at least 3 recorded runs, got %d", len(runs))
	}
	for _, run := range runs {
		if run.Success {
			t.Errorf("expected failed run, got %+v", run)
		}
		if run.Detail != "source unreachable" {
			t.Errorf("unexpected run detail: %q", run.Detail)
		}
	}
}

func TestPanickingTaskRecoveredAndRescheduled(t *testing.T) {
	s := newTestScheduler(t, nil)

	task := newFakeTask(5 * time.Millisecond)
	task.panicValue = "boom"
	s.Schedule(task, 0)

	s.wg.Add(1)
	go s.worker()

	waitExecuted(t, task, 2)
	s.Stop()

	data, err := os.ReadFile(s.failureLog)
	if err != nil {
		t.Fatalf("reading failure log: %v", err)
	}
	if !strings.Contains(string(data), "task panicked: boom") {
		t.Errorf("failure log missing panic trace, got:\n%s", data)
	}
}

func TestSuccessfulRunRecorded(t *testing.T) {
	repo := &fakeHistoryRepo{}
	s := newTestScheduler(t, repo)

	task := newFakeTask(time.Hour)
	s.Schedule(task, 0)

	s.wg.Add(1)
	go s.worker()

	waitExecuted(t, task, 1)
	s.Stop()

	runs := repo.recorded()
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	run := runs[0]
	if !run.Success || run.Detail != "" {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.TaskType != string(TaskTypeRefreshSource) {
		t.Errorf("unexpected task type: %q", run.TaskType)
	}
	if run.Target != "https://example.com/feed.ics" {
		t.Errorf("unexpected target: %q", run.Target)
	}

	if _, err := os.Stat(s.failureLog); !os.IsNotExist(err) {
		t.Errorf("failure log should not exist after successful run")
	}
}

func TestStopHaltsWorker(t *testing.T) {
	s := newTestScheduler(t, nil)

	task := newFakeTask(time.Hour)
	s.Schedule(task, time.Hour)

	s.wg.Add(1)
	go s.worker()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	select {
	case <-task.executed:
		t.Error("task executed despite pending delay")
	default:
	}
}

func TestScheduleStartupTasks(t *testing.T) {
	store := newTestStore(t)
	configDir := t.TempDir()

	writeTestDoc(t, configDir, "work", `
- url: "https://example.com/shared.ics"
  name: "shared"
  cache: 30
- url: "https://example.com/live.ics"
  name: "live"
`)
	writeTestDoc(t, configDir, "home", `
- url: "https://example.com/shared.ics"
  name: "shared"
  cache: 20
- url: "https://example.com/family.ics"
  name: "family"
  cache: 15
`)
	writeTestDoc(t, configDir, "liveonly", `
- url: "https://example.com/other.ics"
  name: "other"
`)

	resolver := config.NewLoader(configDir)
	loader := calendar.NewLoader(store, http.DefaultClient, "test-agent")
	processor := calendar.NewProcessor(resolver, loader, store)

	s := newTestScheduler(t, nil)
	s.resolver = resolver
	s.loader = loader
	s.processor = processor
	s.store = store

	s.scheduleStartupTasks()

	refreshURLs := make(map[string]bool)
	precomputes := make(map[string]int)
	for _, scheduled := range s.queue {
		switch task := scheduled.task.(type) {
		case *RefreshSourceTask:
			if refreshURLs[task.Entry.URL] {
				t.Errorf("duplicate refresh task for %s", task.Entry.URL)
			}
			refreshURLs[task.Entry.URL] = true
		case *PrecomputeTask:
			precomputes[task.Target] = task.MinCache
		default:
			t.Errorf("unexpected task type %T", task)
		}
	}

	if len(refreshURLs) != 2 {
		t.Errorf("expected 2 refresh tasks, got %v", refreshURLs)
	}
	if !refreshURLs["https://example.com/shared.ics"] || !refreshURLs["https://example.com/family.ics"] {
		t.Errorf("unexpected refresh task set: %v", refreshURLs)
	}
	if refreshURLs["https://example.com/live.ics"] {
		t.Error("live entry must not get a refresh task")
	}

	if len(precomputes) != 2 {
		t.Fatalf("expected 2 precompute tasks, got %v", precomputes)
	}
	if precomputes["home"] != 15 {
		t.Errorf("expected home precompute with min cache 15, got %d", precomputes["home"])
	}
	if precomputes["work"] != 30 {
		t.Errorf("expected work precompute with min cache 30, got %d", precomputes["work"])
	}
	if _, ok := precomputes["liveonly"]; ok {
		t.Error("configuration without cached entries must not get a precompute task")
	}
}

func TestClampDelay(t *testing.T) {
	tests := []struct {
		minutes  int
		expected time.Duration
	}{
		{0, 10 * time.Minute},
		{-5, 10 * time.Minute},
		{5, 10 * time.Minute},
		{10, 10 * time.Minute},
		{45, 45 * time.Minute},
	}

	for _, tt := range tests {
		if got := clampDelay(tt.minutes); got != tt.expected {
			t.Errorf("clampDelay(%d) = %v, expected %v", tt.minutes, got, tt.expected)
		}
	}
}
