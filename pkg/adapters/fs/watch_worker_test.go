package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/redline/pkg/core"
)

func TestWatcherReviewsWrittenDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(WatchConfig{
		Dir:      dir,
		Include:  []string{"**/*.docx"},
		Exclude:  []string{"**/*.reviewed.docx"},
		Debounce: 100 * time.Millisecond,
	}, func(ctx context.Context, path string) core.Event {
		calls.Add(1)
		if filepath.Base(path) == "bad.docx" {
			return core.Event{Type: core.EventFailed, Err: errors.New("boom")}
		}
		return core.Event{Type: core.EventReviewed, Output: path + ".out"}
	})

	events, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Burst of writes to one document collapses into one review.
	target := filepath.Join(dir, "doc.docx")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Ignored by pattern.
	writeFile(t, filepath.Join(dir, "doc.reviewed.docx"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	e := waitEvent(t, events)
	if e.Type != core.EventReviewed || e.Path != target {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ID == "" || e.Timestamp == 0 {
		t.Errorf("event id and timestamp should be set: %+v", e)
	}

	bad := filepath.Join(dir, "bad.docx")
	writeFile(t, bad, "x")
	e = waitEvent(t, events)
	if e.Type != core.EventFailed || e.Path != bad || e.Err == nil {
		t.Fatalf("unexpected event: %+v", e)
	}

	state := w.State().(WatcherState)
	if !state.Active || state.Reviewed != 1 || state.Failed != 1 {
		t.Errorf("unexpected state: %+v", state)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 reviews, got %d", got)
	}

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	w := NewWatcher(WatchConfig{Dir: dir, Include: []string{"**/*.docx"}, Debounce: 10 * time.Millisecond},
		func(ctx context.Context, path string) core.Event {
			return core.Event{Type: core.EventClean}
		})
	events, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(sub, "doc.docx")
	writeFile(t, target, "x")

	e := waitEvent(t, events)
	if e.Path != target || e.Type != core.EventClean {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := NewWatcher(WatchConfig{Dir: filepath.Join(t.TempDir(), "missing")}, nil)
	if _, err := w.Watch(context.Background()); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func waitEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		if !ok {
			t.Fatal("events channel closed")
		}
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return core.Event{}
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.add("k", func() { calls.Add(1) })
	}
	d.add("other", func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}

	d.add("late", func() { calls.Add(1) })
	if !d.stopAndWait(time.Second) {
		t.Error("stopAndWait timed out")
	}
	d.add("after-stop", func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("pending and post-stop calls must be dropped, got %d calls", got)
	}
}
