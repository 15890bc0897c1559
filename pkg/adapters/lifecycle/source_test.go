package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/redline/pkg/core"
)

func receive(t *testing.T, src *Source) core.Event {
	t.Helper()
	select {
	case e, ok := <-src.Events():
		if !ok {
			t.Fatal("source closed early")
		}
		got, ok := e.(core.Event)
		if !ok {
			t.Fatalf("unexpected event type %T", e)
		}
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return core.Event{}
}

func waitClosed(t *testing.T, src *Source) {
	t.Helper()
	select {
	case _, ok := <-src.Events():
		if ok {
			t.Error("expected the source to close after its input")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close")
	}
}

func TestSourceForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 1)
	src := NewSource(in)
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	in <- core.Event{ID: "1", Type: core.EventReviewed, Path: "a.docx", Output: "a.reviewed.docx", Timestamp: 1}
	if got := receive(t, src); got.ID != "1" || got.Path != "a.docx" || got.Timestamp != 1 {
		t.Errorf("unexpected event: %+v", got)
	}

	close(in)
	waitClosed(t, src)
}

func TestSourceCompletesAndFilters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	src := NewSource(in, WithSkipClean(true))
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	in <- core.Event{Type: core.EventClean, Path: "clean.docx"}
	in <- core.Event{Type: core.EventReviewed, Path: "a.docx", Stats: core.Stats{Insertions: 2}}
	in <- core.Event{Type: core.EventFailed, Path: "broken.docx"}
	close(in)

	first := receive(t, src)
	if first.Path != "a.docx" {
		t.Fatalf("clean event was not skipped, got %+v", first)
	}
	if first.ID == "" || first.Timestamp == 0 {
		t.Errorf("event was not completed: %+v", first)
	}
	if second := receive(t, src); second.Path != "broken.docx" {
		t.Errorf("unexpected second event: %+v", second)
	}
	waitClosed(t, src)

	state, ok := src.State().(SourceState)
	if !ok {
		t.Fatalf("unexpected state type %T", src.State())
	}
	if state.Forwarded != 2 || state.Skipped != 1 || state.Failed != 1 || state.Stats.Insertions != 2 {
		t.Errorf("unexpected state: %+v", state)
	}
	if src.ComponentType() != "review-source" {
		t.Errorf("unexpected component type %q", src.ComponentType())
	}
}
