// Package revision classifies WordprocessingML revision markup and accepts it.
package revision

import "github.com/beevik/etree"

// WordprocessingML namespaces. Both conformance classes carry the same revision markup.
const (
	NSTransitional = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSStrict       = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// Kind is the revision role of an element.
type Kind int

const (
	Plain Kind = iota
	Insertion
	Deletion
	ParagraphPropertyChange
	RunPropertyChange
	TablePropertyChange
	SectionPropertyChange
)

func (k Kind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case ParagraphPropertyChange:
		return "paragraph-property-change"
	case RunPropertyChange:
		return "run-property-change"
	case TablePropertyChange:
		return "table-property-change"
	case SectionPropertyChange:
		return "section-property-change"
	default:
		return "plain"
	}
}

// IsPropertyChange reports whether k keeps its container and drops a change payload.
func (k Kind) IsPropertyChange() bool {
	switch k {
	case ParagraphPropertyChange, RunPropertyChange, TablePropertyChange, SectionPropertyChange:
		return true
	}
	return false
}

// propertyChanges maps a property container to its change element and kind.
var propertyChanges = map[string]struct {
	change string
	kind   Kind
}{
	"pPr":     {"pPrChange", ParagraphPropertyChange},
	"rPr":     {"rPrChange", RunPropertyChange},
	"tblPr":   {"tblPrChange", TablePropertyChange},
	"tblPrEx": {"tblPrExChange", TablePropertyChange},
	"trPr":    {"trPrChange", TablePropertyChange},
	"tcPr":    {"tcPrChange", TablePropertyChange},
	"tblGrid": {"tblGridChange", TablePropertyChange},
	"sectPr":  {"sectPrChange", SectionPropertyChange},
}

// changeContainers maps a change element back to the container it belongs in.
var changeContainers = func() map[string]string {
	m := make(map[string]string, len(propertyChanges))
	for container, pc := range propertyChanges {
		m[pc.change] = container
	}
	return m
}()

// Classify returns the revision kind of e. It never fails: anything that is not
// recognized revision markup, including moves and customXml revisions, is Plain.
func Classify(e *etree.Element) Kind {
	if e == nil || !isW(e) {
		return Plain
	}

	switch e.Tag {
	case "ins":
		return Insertion
	case "del":
		return Deletion
	case "tr":
		if trPr := wChild(e, "trPr"); trPr != nil && wChild(trPr, "del") != nil {
			return Deletion
		}
		return Plain
	}

	if pc, ok := propertyChanges[e.Tag]; ok && wChild(e, pc.change) != nil {
		return pc.kind
	}
	return Plain
}

func isW(e *etree.Element) bool {
	ns := e.NamespaceURI()
	return ns == NSTransitional || ns == NSStrict
}

// isWTag reports whether e is the WordprocessingML element with the given local name.
func isWTag(e *etree.Element, tag string) bool {
	return e.Tag == tag && isW(e)
}

// wChild returns the first WordprocessingML child element with the given local name.
func wChild(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if isWTag(c, tag) {
			return c
		}
	}
	return nil
}

// isChangeElement reports whether e is a property change payload holder such as w:pPrChange.
func isChangeElement(e *etree.Element) bool {
	_, ok := changeContainers[e.Tag]
	return ok && isW(e)
}
