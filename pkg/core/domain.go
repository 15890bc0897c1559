// Review results and events are the central entities of the domain.
package core

import (
	"fmt"
	"time"
)

// Stats counts what a review accepted or removed.
type Stats struct {
	Insertions               int `json:"insertions"`
	Deletions                int `json:"deletions"`
	ParagraphPropertyChanges int `json:"paragraph_property_changes"`
	RunPropertyChanges       int `json:"run_property_changes"`
	TablePropertyChanges     int `json:"table_property_changes"`
	SectionPropertyChanges   int `json:"section_property_changes"`
	MergedParagraphs         int `json:"merged_paragraphs"`
	CommentAnchors           int `json:"comment_anchors"`
	CommentParts             int `json:"comment_parts"`
}

// Revisions returns the number of accepted revisions.
func (s Stats) Revisions() int {
	return s.Insertions + s.Deletions + s.ParagraphPropertyChanges + s.RunPropertyChanges +
		s.TablePropertyChanges + s.SectionPropertyChanges + s.MergedParagraphs
}

// Total returns the number of changes applied to the package.
func (s Stats) Total() int {
	return s.Revisions() + s.CommentAnchors + s.CommentParts
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Insertions:               s.Insertions + o.Insertions,
		Deletions:                s.Deletions + o.Deletions,
		ParagraphPropertyChanges: s.ParagraphPropertyChanges + o.ParagraphPropertyChanges,
		RunPropertyChanges:       s.RunPropertyChanges + o.RunPropertyChanges,
		TablePropertyChanges:     s.TablePropertyChanges + o.TablePropertyChanges,
		SectionPropertyChanges:   s.SectionPropertyChanges + o.SectionPropertyChanges,
		MergedParagraphs:         s.MergedParagraphs + o.MergedParagraphs,
		CommentAnchors:           s.CommentAnchors + o.CommentAnchors,
		CommentParts:             s.CommentParts + o.CommentParts,
	}
}

// Review is the outcome of finishing review on a package.
type Review struct {
	// Text is the serialized main part after acceptance.
	Text string
	// Package holds the updated package bytes, ready to be persisted by the caller.
	Package []byte
	Stats   Stats
	// Removed lists entries dropped from the package (comment parts).
	Removed []string
}

// Changed reports whether the review modified the package.
func (r Review) Changed() bool {
	return r.Stats.Total() > 0
}

// RevisionInfo describes one revision found in the main part.
type RevisionInfo struct {
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
	// Text is the inner text affected by an insertion or deletion.
	Text string `json:"text,omitempty"`
}

// EventType represents the outcome of a host-side review.
type EventType string

const (
	EventReviewed EventType = "REVIEWED"
	EventClean    EventType = "CLEAN"
	EventFailed   EventType = "FAILED"
)

// Event reports a review performed by a long-running host (e.g. watch mode).
type Event struct {
	ID        string
	Type      EventType
	Path      string
	Output    string
	Stats     Stats
	Err       error
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	ts := time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339)
	switch e.Type {
	case EventFailed:
		return fmt.Sprintf("%s %s %s: %v", ts, e.Type, e.Path, e.Err)
	case EventReviewed:
		return fmt.Sprintf("%s %s %s -> %s (%d revisions)", ts, e.Type, e.Path, e.Output, e.Stats.Revisions())
	default:
		return fmt.Sprintf("%s %s %s", ts, e.Type, e.Path)
	}
}
