package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/beevik/etree"
)

// Config holds the configuration for the review service.
type Config struct {
	Logger *slog.Logger
	// RemoveComments also strips comment anchors and comment parts during FinishReview.
	RemoveComments bool
}

// Service handles the business logic for reviewing documents.
// It owns no package state between calls.
type Service struct {
	packager Packager
	reviewer Reviewer
	config   Config
	logger   *slog.Logger

	mu       sync.RWMutex
	reviews  int
	failures int
}

// NewService creates a new Service.
func NewService(packager Packager, reviewer Reviewer, config Config) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		packager: packager,
		reviewer: reviewer,
		config:   config,
		logger:   logger,
	}
}

// GetMainDocumentText returns the serialized main document part without transforming it.
// The package is never modified.
func (s *Service) GetMainDocumentText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, part, doc, err := s.load(data)
	if err != nil {
		return "", err
	}
	return part.Render(doc)
}

// FinishReview accepts every revision in the main part and returns the clean text together
// with the updated package bytes. Either both are produced or an error is returned.
// Comment anchors and comment parts are kept unless Config.RemoveComments is set.
func (s *Service) FinishReview(ctx context.Context, data []byte) (Review, error) {
	if err := ctx.Err(); err != nil {
		return Review{}, err
	}
	review, err := s.finishReview(data)
	s.record(err)
	if err != nil {
		return Review{}, err
	}
	return review, nil
}

func (s *Service) finishReview(data []byte) (Review, error) {
	pkg, part, doc, err := s.load(data)
	if err != nil {
		return Review{}, err
	}

	accepted, stats, err := s.reviewer.Accept(doc)
	if err != nil {
		return Review{}, fmt.Errorf("accept revisions in %s: %w", part.Name(), err)
	}

	var removed []string
	if s.config.RemoveComments {
		removed, err = pkg.RemoveComments(part)
		if err != nil {
			return Review{}, fmt.Errorf("remove comments: %w", err)
		}
		stats.CommentParts = len(removed)
	}

	text, err := part.Render(accepted)
	if err != nil {
		return Review{}, err
	}

	review := Review{Text: text, Stats: stats, Removed: removed}
	if !review.Changed() {
		s.logger.Debug("no revisions to accept", "part", part.Name())
		review.Package = bytes.Clone(data)
		return review, nil
	}

	if stats.Revisions() > 0 || stats.CommentAnchors > 0 {
		if err := part.WriteXML(accepted); err != nil {
			return Review{}, err
		}
	}

	out, err := pkg.Save()
	if err != nil {
		return Review{}, fmt.Errorf("save package: %w", err)
	}
	review.Package = out

	s.logger.Debug("review finished",
		"part", part.Name(),
		"insertions", stats.Insertions,
		"deletions", stats.Deletions,
		"property_changes", stats.ParagraphPropertyChanges+stats.RunPropertyChanges+stats.TablePropertyChanges+stats.SectionPropertyChanges,
		"removed", len(removed),
	)
	return review, nil
}

// ListRevisions reports the revisions found in the main part.
func (s *Service) ListRevisions(ctx context.Context, data []byte) ([]RevisionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, _, doc, err := s.load(data)
	if err != nil {
		return nil, err
	}
	return s.reviewer.Inspect(doc)
}

func (s *Service) load(data []byte) (Package, Part, *etree.Document, error) {
	if len(data) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty input", ErrCorruptContainer)
	}
	pkg, err := s.packager.Open(data)
	if err != nil {
		return nil, nil, nil, err
	}
	part, err := pkg.MainPart()
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := part.ReadXML()
	if err != nil {
		return nil, nil, nil, err
	}
	s.logger.Debug("main part loaded", "part", part.Name())
	return pkg, part, doc, nil
}

func (s *Service) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews++
	if err != nil {
		s.failures++
		if !errors.Is(err, ErrNoMainPart) {
			s.logger.Warn("review failed", "error", err)
		}
	}
}
