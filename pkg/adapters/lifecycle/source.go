// Package lifecycle bridges review events to github.com/aretw0/lifecycle.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/redline/pkg/core"
)

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithSkipClean drops events for documents that had nothing to accept.
func WithSkipClean(skip bool) SourceOption {
	return func(s *Source) {
		s.skipClean = skip
	}
}

// Source is a lifecycle.Source emitting review events. Events are completed with an ID
// and a timestamp when the producer left them empty.
type Source struct {
	events    <-chan core.Event
	out       chan lifecycle.Event
	skipClean bool

	mu        sync.RWMutex
	forwarded int
	skipped   int
	failed    int
	stats     core.Stats
}

// NewSource creates a Source reading review events from events.
func NewSource(events <-chan core.Event, opts ...SourceOption) *Source {
	s := &Source{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events implements lifecycle.Source.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start implements lifecycle.Source. The output channel is closed once the input is
// closed or ctx is done.
func (s *Source) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				e, keep := s.accept(e)
				if !keep {
					continue
				}
				// core.Event satisfies lifecycle.Event through String.
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

// accept completes e and records it. It reports whether e should be forwarded.
func (s *Source) accept(e core.Event) (core.Event, bool) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skipClean && e.Type == core.EventClean {
		s.skipped++
		return e, false
	}
	s.forwarded++
	if e.Type == core.EventFailed {
		s.failed++
	}
	s.stats = s.stats.Add(e.Stats)
	return e, true
}

// SourceState exposes internal state for observability.
type SourceState struct {
	Forwarded int        `json:"forwarded"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Stats     core.Stats `json:"stats"`
}

// State implements introspection.Introspectable.
func (s *Source) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SourceState{
		Forwarded: s.forwarded,
		Skipped:   s.skipped,
		Failed:    s.failed,
		Stats:     s.stats,
	}
}

// ComponentType implements introspection.Component.
func (s *Source) ComponentType() string {
	return "review-source"
}

var _ lifecycle.Source = (*Source)(nil)
var _ introspection.Introspectable = (*Source)(nil)
var _ introspection.Component = (*Source)(nil)
