package fs

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Loads  int    `json:"loads"`
	Saves  int    `json:"saves"`
	Staged int    `json:"staged"`
	Perm   string `json:"perm"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Loads:  s.loads,
		Saves:  s.saves,
		Staged: s.staged,
		Perm:   s.config.Perm.String(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Dir      string   `json:"dir"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude"`
	Active   bool     `json:"active"`
	Reviewed int      `json:"reviewed"`
	Failed   int      `json:"failed"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WatcherState{
		Dir:      w.config.Dir,
		Include:  w.config.Include,
		Exclude:  w.config.Exclude,
		Active:   w.active,
		Reviewed: w.reviewed,
		Failed:   w.failed,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "fs-watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) record(failed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if failed {
		w.failed++
	} else {
		w.reviewed++
	}
}
