package opc

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aretw0/redline/pkg/core"
)

// Relationship types pointing at the main document part.
const (
	RelOfficeDocument       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelOfficeDocumentStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships/officeDocument"
)

// commentRelTypes are the relationships from a main part to its annotation parts.
var commentRelTypes = map[string]bool{
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments": true,
	"http://purl.oclc.org/ooxml/officeDocument/relationships/comments":             true,
	"http://schemas.microsoft.com/office/2011/relationships/commentsExtended":      true,
	"http://schemas.microsoft.com/office/2016/09/relationships/commentsIds":        true,
	"http://schemas.microsoft.com/office/2018/08/relationships/commentsExtensible": true,
}

const targetModeExternal = "External"

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

func (r relationship) internal() bool {
	return !strings.EqualFold(r.TargetMode, targetModeExternal)
}

func parseRelationships(name string, data []byte) (*relationships, error) {
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedXML, name, err)
	}
	return &rels, nil
}

// relsName returns the relationship part of source; the empty source is the package itself.
func relsName(source string) string {
	source = strings.TrimPrefix(source, "/")
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// resolveTarget resolves a relationship target against the part that declares it and
// returns an entry name without leading slash.
func resolveTarget(source, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("empty relationship target")
	}
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		return "", fmt.Errorf("relationship target %q is not a package part", target)
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	unescaped, err := url.PathUnescape(target)
	if err != nil {
		return "", fmt.Errorf("relationship target %q: %w", target, err)
	}

	var joined string
	if strings.HasPrefix(unescaped, "/") {
		joined = unescaped
	} else {
		base := path.Dir("/" + strings.TrimPrefix(source, "/"))
		joined = path.Join(base, unescaped)
	}

	// path.Clean keeps a rooted path inside the root, so ".." cannot escape the package.
	cleaned := path.Clean("/" + joined)
	if cleaned == "/" {
		return "", fmt.Errorf("relationship target %q resolves to the package root", target)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
