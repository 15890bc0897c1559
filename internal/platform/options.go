package platform

import (
	"log/slog"

	"github.com/aretw0/redline/pkg/core"
)

// options holds the internal configuration for the review service.
type options struct {
	packager       core.Packager
	reviewer       core.Reviewer
	store          core.Store
	logger         *slog.Logger
	removeComments bool
	errorHandler   func(error)
}

// Option defines a functional option for configuring the review service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRemoveComments also removes comment anchors and comment parts when finishing review.
func WithRemoveComments(enabled bool) Option {
	return func(o *options) {
		o.removeComments = enabled
	}
}

// WithPackager allows injecting a custom package reader (e.g. a mock).
func WithPackager(p core.Packager) Option {
	return func(o *options) {
		o.packager = p
	}
}

// WithReviewer allows injecting a custom revision reviewer.
// If provided, WithRemoveComments no longer affects anchors inside the main part.
func WithReviewer(r core.Reviewer) Option {
	return func(o *options) {
		o.reviewer = r
	}
}

// WithStore allows injecting the storage used for every location.
// By default paths go to the filesystem store and URLs to the afs store.
func WithStore(s core.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithWatcherErrorHandler registers a callback to handle errors occurring during the Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
