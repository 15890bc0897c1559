package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/aretw0/redline/pkg/core"
)

// DefaultDebounce is the quiet period before a changed document is reviewed.
const DefaultDebounce = 50 * time.Millisecond

// ReviewFunc reviews the document at path and reports the outcome.
type ReviewFunc func(ctx context.Context, path string) core.Event

// WatchConfig holds the configuration for a Watcher.
type WatchConfig struct {
	Dir string
	// Include and Exclude are doublestar patterns relative to Dir.
	Include  []string
	Exclude  []string
	Debounce time.Duration
	Logger   *slog.Logger
	// ErrorHandler receives watcher failures in addition to the logger.
	ErrorHandler func(error)
}

// Watcher reviews documents below a directory as they are written.
type Watcher struct {
	config WatchConfig
	review ReviewFunc

	mu       sync.RWMutex
	active   bool
	reviewed int
	failed   int
}

// NewWatcher creates a Watcher that calls review for every matching document written below config.Dir.
func NewWatcher(config WatchConfig, review ReviewFunc) *Watcher {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Watcher{config: config, review: review}
}

// Watch starts watching and returns the review events. The channel is closed once ctx is
// done or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan core.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.recursiveAdd(watcher, w.config.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	w.setActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		return w.run(ctx, watcher, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.config.Logger.Error("watcher stopped", "error", err)
		if w.config.ErrorHandler != nil {
			w.config.ErrorHandler(err)
		}
	}))

	return events, nil
}

// recursiveAdd watches root and every directory below it, skipping hidden directories.
func (w *Watcher) recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// run is the main event loop of the watcher goroutine.
func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher, events chan core.Event) (err error) {
	d := newDebouncer(w.config.Debounce)
	defer func() {
		recovered := recover()

		// Let in-flight reviews finish before the events channel is closed.
		d.stopAndWait(5 * time.Second)
		_ = watcher.Close()
		close(events)
		w.setActive(false)

		if recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.config.Logger.Error("watcher panic", "error", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, watcher, d, events, event)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.config.Logger.Warn("fsnotify error", "error", wErr)
			if w.config.ErrorHandler != nil {
				w.config.ErrorHandler(wErr)
			}
		}
	}
}

// processFilesystemEvent filters an fsnotify event and schedules a review for it.
func (w *Watcher) processFilesystemEvent(ctx context.Context, watcher *fsnotify.Watcher, d *debouncer, events chan<- core.Event, event fsnotify.Event) {
	w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.recursiveAdd(watcher, event.Name); err != nil {
				w.config.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if isTempFile(event.Name) {
		return
	}

	rel, err := filepath.Rel(w.config.Dir, event.Name)
	if err != nil {
		return
	}
	ok, err := Included(filepath.ToSlash(rel), w.config.Include, w.config.Exclude)
	if err != nil {
		w.config.Logger.Warn("pattern match failed", "path", event.Name, "error", err)
		return
	}
	if !ok {
		return
	}

	path := event.Name
	d.add(path, func() {
		w.dispatch(ctx, events, path)
	})
}

// dispatch reviews path and sends the outcome, protecting against channel closure during shutdown.
func (w *Watcher) dispatch(ctx context.Context, events chan<- core.Event, path string) {
	if ctx.Err() != nil {
		return
	}

	e := w.review(ctx, path)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Path == "" {
		e.Path = path
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}

	failed := e.Type == core.EventFailed
	w.record(failed)
	if failed {
		w.config.Logger.Warn("review failed", "path", path, "error", e.Err)
	}

	defer func() {
		_ = recover()
	}()
	select {
	case events <- e:
	case <-ctx.Done():
	}
}
