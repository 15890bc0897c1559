package redline

import (
	"context"
	"log/slog"

	"github.com/aretw0/redline/internal/platform"
	"github.com/aretw0/redline/pkg/core"
)

// --- Types ---

// Review is a public alias for the outcome of finishing review.
type Review = core.Review

// Stats is a public alias for the review counters.
type Stats = core.Stats

// RevisionInfo is a public alias for one listed revision.
type RevisionInfo = core.RevisionInfo

// --- Configuration ---

// Option defines a functional option for configuring redline.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRemoveComments also strips comment anchors and comment parts when finishing review.
func WithRemoveComments(enabled bool) Option {
	return platform.WithRemoveComments(enabled)
}

// WithPackager allows injecting a custom package reader.
func WithPackager(p core.Packager) Option {
	return platform.WithPackager(p)
}

// WithReviewer allows injecting a custom revision reviewer.
func WithReviewer(r core.Reviewer) Option {
	return platform.WithReviewer(r)
}

// --- Factory ---

// New creates a review service.
func New(opts ...Option) *core.Service {
	return platform.New(opts...)
}

// --- Façade ---

// GetMainDocumentText returns the main document part of the package in data as XML text.
func GetMainDocumentText(data []byte, opts ...Option) (string, error) {
	return New(opts...).GetMainDocumentText(context.Background(), data)
}

// FinishReview accepts every tracked change in the package in data. It returns the resulting
// main document text and the updated package bytes. On error nothing is returned.
//
// Comments are kept unless WithRemoveComments(true) is passed. Pass it to also drop comment
// anchors and comment parts in the same call, as a full markup simplification does.
func FinishReview(data []byte, opts ...Option) (string, []byte, error) {
	review, err := New(opts...).FinishReview(context.Background(), data)
	if err != nil {
		return "", nil, err
	}
	return review.Text, review.Package, nil
}

// ListRevisions lists the tracked changes of the main document part in data.
func ListRevisions(data []byte, opts ...Option) ([]RevisionInfo, error) {
	return New(opts...).ListRevisions(context.Background(), data)
}
