// Package testdocx builds small WordprocessingML packages in memory for tests.
package testdocx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// Namespace declarations used by Body.
const (
	NSW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

const (
	ContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/><Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/></Types>`

	PackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	DocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

	Styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:docDefaults/></w:styles>`

	CoreProps = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:creator>redline</dc:creator></cp:coreProperties>`
)

// Entry is a named package member.
type Entry struct {
	Name string
	Data string
}

// Body wraps body markup in a w:document root declaring the w and r namespaces.
func Body(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + NSW + `" xmlns:r="` + NSR + `"><w:body>` + inner + `</w:body></w:document>`
}

// Entries returns the entries of a minimal document package around documentXML.
func Entries(documentXML string) []Entry {
	return []Entry{
		{Name: "[Content_Types].xml", Data: ContentTypes},
		{Name: "_rels/.rels", Data: PackageRels},
		{Name: "word/document.xml", Data: documentXML},
		{Name: "word/_rels/document.xml.rels", Data: DocumentRels},
		{Name: "word/styles.xml", Data: Styles},
		{Name: "docProps/core.xml", Data: CoreProps},
	}
}

// Build returns a package around documentXML.
func Build(t testing.TB, documentXML string) []byte {
	t.Helper()
	return Zip(t, Entries(documentXML)...)
}

// Zip writes entries into a deflated zip archive.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	data, err := Pack(entries...)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return data
}

// MustBuild is like Build but panics on failure. It serves examples, which have no testing.TB.
func MustBuild(documentXML string) []byte {
	data, err := Pack(Entries(documentXML)...)
	if err != nil {
		panic(err)
	}
	return data
}

// Pack writes entries into a deflated zip archive.
func Pack(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Data)); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Replace returns entries with the named entry's data replaced, or removed when data is empty.
func Replace(entries []Entry, name, data string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			if data == "" {
				continue
			}
			e.Data = data
		}
		out = append(out, e)
	}
	return out
}

// ReadEntry returns the uncompressed content of name in a zip archive.
func ReadEntry(t testing.TB, data []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", name, err)
		}
		defer rc.Close()
		var out bytes.Buffer
		if _, err := out.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", name, err)
		}
		return out.Bytes()
	}
	t.Fatalf("entry %s not found", name)
	return nil
}

// Names lists the entry names of a zip archive in order.
func Names(t testing.TB, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}
