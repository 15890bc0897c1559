// Package container stores the entries of a zip-structured document package.
//
// A Package is copy-on-write: With and Without return a new Package that shares every
// untouched entry with its source. Save writes untouched entries with their original
// compressed bytes, so their content is byte-identical in the output archive.
package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/redline/pkg/core"
)

// entry is one named member of the archive. Entries are never mutated once created.
type entry struct {
	header zip.FileHeader
	// raw holds the compressed bytes of an entry read from the source archive.
	raw []byte
	// data holds the uncompressed bytes of an entry written through With.
	data  []byte
	dirty bool
	file  *zip.File
}

// Package is an ordered set of uniquely named entries.
type Package struct {
	entries []*entry
	index   map[string]int // folded name -> position in entries
	comment string
}

// Open reads a zip archive held in memory.
func Open(data []byte) (*Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptContainer, err)
	}

	p := &Package{
		entries: make([]*entry, 0, len(r.File)),
		index:   make(map[string]int, len(r.File)),
		comment: r.Comment,
	}

	for _, f := range r.File {
		key := fold(f.Name)
		if _, dup := p.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", core.ErrCorruptContainer, f.Name)
		}

		rc, err := f.OpenRaw()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", core.ErrCorruptContainer, f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", core.ErrCorruptContainer, f.Name, err)
		}

		p.index[key] = len(p.entries)
		p.entries = append(p.entries, &entry{
			header: f.FileHeader,
			raw:    raw,
			file:   f,
		})
	}

	return p, nil
}

// Names returns the entry names in archive order.
func (p *Package) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.header.Name
	}
	return names
}

// Has reports whether an entry exists.
func (p *Package) Has(name string) bool {
	_, ok := p.index[fold(name)]
	return ok
}

// Resolve returns the stored spelling of name.
func (p *Package) Resolve(name string) (string, error) {
	i, ok := p.index[fold(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrEntryNotFound, name)
	}
	return p.entries[i].header.Name, nil
}

// Read returns the uncompressed content of an entry.
func (p *Package) Read(name string) ([]byte, error) {
	i, ok := p.index[fold(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrEntryNotFound, name)
	}

	e := p.entries[i]
	if e.dirty {
		return bytes.Clone(e.data), nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: entry %q: %v", core.ErrCorruptContainer, name, err)
	}
	defer rc.Close()

	// The zip reader verifies the checksum when the stream reaches EOF.
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %q: %v", core.ErrCorruptContainer, name, err)
	}
	return data, nil
}

// With returns a package in which name holds data. An existing entry keeps its position,
// compression method, timestamp and attributes; a new entry is appended and deflated.
// The receiver is left unchanged.
func (p *Package) With(name string, data []byte) *Package {
	name = strings.TrimPrefix(name, "/")
	next := p.clone()

	e := &entry{data: bytes.Clone(data), dirty: true}
	if i, ok := next.index[fold(name)]; ok {
		old := next.entries[i].header
		e.header = zip.FileHeader{
			Name:           old.Name,
			Comment:        old.Comment,
			Method:         old.Method,
			Modified:       old.Modified,
			ExternalAttrs:  old.ExternalAttrs,
			CreatorVersion: old.CreatorVersion,
		}
		next.entries[i] = e
		return next
	}

	e.header = zip.FileHeader{Name: name, Method: zip.Deflate}
	next.index[fold(name)] = len(next.entries)
	next.entries = append(next.entries, e)
	return next
}

// Without returns a package lacking name. Removing a missing entry is a no-op.
func (p *Package) Without(name string) *Package {
	i, ok := p.index[fold(name)]
	if !ok {
		return p
	}

	next := &Package{
		entries: make([]*entry, 0, len(p.entries)-1),
		index:   make(map[string]int, len(p.entries)-1),
		comment: p.comment,
	}
	for j, e := range p.entries {
		if j == i {
			continue
		}
		next.index[fold(e.header.Name)] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	return next
}

// Save serializes the package as a zip archive.
func (p *Package) Save() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range p.entries {
		if err := e.writeTo(zw); err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", e.header.Name, err)
		}
	}

	if p.comment != "" {
		if err := zw.SetComment(p.comment); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *entry) writeTo(zw *zip.Writer) error {
	if !e.dirty {
		// CreateRaw mutates the header it is given.
		h := e.header
		w, err := zw.CreateRaw(&h)
		if err != nil {
			return err
		}
		_, err = w.Write(e.raw)
		return err
	}

	h := e.header
	w, err := zw.CreateHeader(&h)
	if err != nil {
		return err
	}
	_, err = w.Write(e.data)
	return err
}

func (p *Package) clone() *Package {
	next := &Package{
		entries: make([]*entry, len(p.entries), len(p.entries)+1),
		index:   make(map[string]int, len(p.index)+1),
		comment: p.comment,
	}
	copy(next.entries, p.entries)
	for k, v := range p.index {
		next.index[k] = v
	}
	return next
}

// fold normalizes a part name for lookup; OPC part names compare case-insensitively.
func fold(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}
