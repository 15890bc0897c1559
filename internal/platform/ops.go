package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/redline/pkg/adapters/afs"
	"github.com/aretw0/redline/pkg/adapters/fs"
	"github.com/aretw0/redline/pkg/core"
)

// Runner moves packages between storage and the review service on behalf of a host.
type Runner struct {
	service *core.Service
	files   *fs.Store
	urls    *afs.Store
	store   core.Store
	logger  *slog.Logger
	onError func(error)
}

// NewRunner wires a review service together with the filesystem and URL stores.
func NewRunner(opts ...Option) *Runner {
	o := buildOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		service: newService(o),
		files:   fs.NewStore(fs.Config{Logger: logger}),
		urls:    afs.NewStore(logger),
		store:   o.store,
		logger:  logger,
		onError: o.errorHandler,
	}
}

// Service returns the underlying review service.
func (r *Runner) Service() *core.Service {
	return r.service
}

// StoreFor returns the store handling location: URLs go to afs, paths to the filesystem.
func (r *Runner) StoreFor(location string) core.Store {
	if r.store != nil {
		return r.store
	}
	if afs.IsURL(location) {
		return r.urls
	}
	return r.files
}

// Show returns the main document text of the package at location.
func (r *Runner) Show(ctx context.Context, location string) (string, error) {
	data, err := r.StoreFor(location).Load(ctx, location)
	if err != nil {
		return "", err
	}
	return r.service.GetMainDocumentText(ctx, data)
}

// Revisions lists the revisions of the package at location.
func (r *Runner) Revisions(ctx context.Context, location string) ([]core.RevisionInfo, error) {
	data, err := r.StoreFor(location).Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return r.service.ListRevisions(ctx, data)
}

// ReviewFile finishes review of src and stores the result at dst. When dst differs from src,
// src is first staged to dst and only the staged copy is rewritten. An empty dst reviews src
// in place. Unchanged packages are not rewritten.
func (r *Runner) ReviewFile(ctx context.Context, src, dst string) (core.Review, error) {
	if dst == "" {
		dst = src
	}

	srcStore, dstStore := r.StoreFor(src), r.StoreFor(dst)
	if dst != src {
		if srcStore == dstStore {
			if err := srcStore.Stage(ctx, src, dst); err != nil {
				return core.Review{}, fmt.Errorf("stage %s: %w", src, err)
			}
		} else {
			data, err := srcStore.Load(ctx, src)
			if err != nil {
				return core.Review{}, err
			}
			if err := dstStore.Save(ctx, dst, data); err != nil {
				return core.Review{}, fmt.Errorf("stage %s: %w", src, err)
			}
		}
	}

	data, err := dstStore.Load(ctx, dst)
	if err != nil {
		return core.Review{}, err
	}
	review, err := r.service.FinishReview(ctx, data)
	if err != nil {
		return core.Review{}, fmt.Errorf("%s: %w", src, err)
	}
	if review.Changed() {
		if err := dstStore.Save(ctx, dst, review.Package); err != nil {
			return core.Review{}, err
		}
	}
	r.logger.Debug("document reviewed", "src", src, "dst", dst, "revisions", review.Stats.Revisions())
	return review, nil
}

// ReviewEvent reviews src into its output location for cfg and reports the outcome as an event.
func (r *Runner) ReviewEvent(ctx context.Context, src string, cfg Config) core.Event {
	dst := OutputPath(src, cfg.Suffix)
	e := core.Event{
		ID:        uuid.NewString(),
		Path:      src,
		Output:    dst,
		Timestamp: time.Now().Unix(),
	}

	review, err := r.ReviewFile(ctx, src, dst)
	switch {
	case err != nil:
		e.Type = core.EventFailed
		e.Err = err
	case review.Changed():
		e.Type = core.EventReviewed
		e.Stats = review.Stats
	default:
		e.Type = core.EventClean
	}
	return e
}

// Batch reviews every document below root selected by cfg. A failing document does not stop
// the batch; its failure is reported in its event.
func (r *Runner) Batch(ctx context.Context, root string, cfg Config) ([]core.Event, error) {
	paths, err := r.files.Glob(root, cfg.Include, cfg.Excludes())
	if err != nil {
		return nil, err
	}

	events := make([]core.Event, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		events = append(events, r.ReviewEvent(ctx, p, cfg))
	}
	return events, nil
}

// Watch reviews documents below dir whenever they are written, until ctx is done.
func (r *Runner) Watch(ctx context.Context, dir string, cfg Config) (<-chan core.Event, *fs.Watcher, error) {
	w := fs.NewWatcher(fs.WatchConfig{
		Dir:          dir,
		Include:      cfg.Include,
		Exclude:      cfg.Excludes(),
		Debounce:     cfg.Debounce,
		Logger:       r.logger,
		ErrorHandler: r.onError,
	}, func(ctx context.Context, src string) core.Event {
		return r.ReviewEvent(ctx, src, cfg)
	})

	events, err := w.Watch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return events, w, nil
}

// OutputPath inserts suffix before the extension of location. An empty suffix returns location.
func OutputPath(location, suffix string) string {
	if suffix == "" {
		return location
	}
	ext := path.Ext(location)
	if !afs.IsURL(location) {
		ext = filepath.Ext(location)
	}
	return strings.TrimSuffix(location, ext) + suffix + ext
}
