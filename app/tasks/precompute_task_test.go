package tasks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

func writeTestDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPrecomputeTaskWritesArtifact(t *testing.T) {
	store := newTestStore(t)

	url := "https://example.com/standup.ics"
	if err := store.WriteURL(url, fixtureICS(t, "Standup")); err != nil {
		t.Fatal(err)
	}

	configDir := t.TempDir()
	writeTestDoc(t, configDir, "work", fmt.Sprintf(`
- url: %q
  name: "standup"
  cache: 30
`, url))

	resolver := config.NewLoader(configDir)
	loader := calendar.NewLoader(store, http.DefaultClient, "test-agent")
	processor := calendar.NewProcessor(resolver, loader, store)

	task := NewPrecomputeTask("work", 30, processor, store)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, ok, err := store.ReadConfig("work")
	if err != nil || !ok {
		t.Fatalf("expected precomputed artifact, ok=%v err=%v", ok, err)
	}

	cal, err := ical.Decode(data, "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cal.Events) != 1 || cal.Events[0].Name != "Standup" {
		t.Errorf("unexpected precomputed events: %+v", cal.Events)
	}
}

func TestPrecomputeTaskFailureLeavesArtifactUntouched(t *testing.T) {
	store := newTestStore(t)

	previous := fixtureICS(t, "Previous")
	if err := store.WriteConfig("work", previous); err != nil {
		t.Fatal(err)
	}

	resolver := config.NewLoader(t.TempDir())
	loader := calendar.NewLoader(store, http.DefaultClient, "test-agent")
	processor := calendar.NewProcessor(resolver, loader, store)

	task := NewPrecomputeTask("work", 30, processor, store)
	if err := task.Execute(context.Background()); err == nil {
		t.Fatal("expected error for missing configuration")
	}

	data, ok, err := store.ReadConfig("work")
	if err != nil || !ok {
		t.Fatalf("expected previous artifact to survive, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(data, previous) {
		t.Error("previous artifact was modified by failed precompute")
	}
}

func TestPrecomputeTaskReschedule(t *testing.T) {
	task := NewPrecomputeTask("work", 15, nil, nil)
	if got := task.RescheduleAfter(); got != 15*time.Minute {
		t.Errorf("expected 15m, got %v", got)
	}

	floored := NewPrecomputeTask("work", 0, nil, nil)
	if got := floored.RescheduleAfter(); got != 10*time.Minute {
		t.Errorf("expected 10m floor, got %v", got)
	}
}
