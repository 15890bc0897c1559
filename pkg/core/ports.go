package core

import (
	"context"

	"github.com/beevik/etree"
)

// Packager opens serialized document packages.
// Adhering to this interface keeps the service independent of the container format.
type Packager interface {
	// Open parses package bytes. The returned Package owns its entries until Save.
	Open(data []byte) (Package, error)
}

// Package is an opened document package.
type Package interface {
	// MainPart resolves the package's main document part.
	MainPart() (Part, error)

	// RemoveComments drops the comment parts related to part and returns the removed entry names.
	RemoveComments(part Part) ([]string, error)

	// Save serializes the package, including every replaced entry.
	Save() ([]byte, error)
}

// Part is a named XML part inside a Package.
type Part interface {
	// Name returns the entry path of the part.
	Name() string

	// ReadXML parses the current content of the part.
	ReadXML() (*etree.Document, error)

	// WriteXML serializes doc and replaces the part's entry. Other entries are untouched.
	WriteXML(doc *etree.Document) error

	// Render serializes the root element of doc as text.
	Render(doc *etree.Document) (string, error)
}

// Reviewer resolves revision markup.
type Reviewer interface {
	// Accept returns a revision-free copy of doc. doc itself is not modified.
	Accept(doc *etree.Document) (*etree.Document, Stats, error)

	// Inspect lists the revisions present in doc.
	Inspect(doc *etree.Document) ([]RevisionInfo, error)
}

// Store loads and persists package bytes at host locations (paths or URLs).
// The review engine itself never touches storage; hosts move bytes through a Store.
type Store interface {
	Load(ctx context.Context, location string) ([]byte, error)

	// Save replaces the content at location as a whole.
	Save(ctx context.Context, location string, data []byte) error

	// Stage copies src to dst so that a review can run on the copy.
	Stage(ctx context.Context, src, dst string) error
}
