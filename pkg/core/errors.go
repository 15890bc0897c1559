package core

import "errors"

// Common errors.
//
// Components wrap these with context; callers match them with errors.Is.
var (
	// ErrCorruptContainer reports a package whose zip structure cannot be read.
	ErrCorruptContainer = errors.New("corrupt container")

	// ErrEntryNotFound reports a missing package entry.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrNoMainPart reports a package without a resolvable main document part.
	ErrNoMainPart = errors.New("no main document part")

	// ErrAmbiguousMainPart reports a package declaring more than one main document part.
	ErrAmbiguousMainPart = errors.New("ambiguous main document part")

	// ErrMalformedXML reports part content that is not well-formed XML.
	ErrMalformedXML = errors.New("malformed xml")

	// ErrMalformedRevision reports revision markup whose shape cannot be accepted.
	ErrMalformedRevision = errors.New("malformed revision")
)
