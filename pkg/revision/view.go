package revision

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/redline/pkg/core"
)

// Revision is a typed view over a revision element of the source tree.
type Revision struct {
	Kind    Kind
	Element *etree.Element

	ID     string
	Author string
	Date   string

	// Change is the property change element (e.g. w:rPrChange), nil for other kinds.
	Change *etree.Element
}

// Content returns the children an insertion or deletion wraps.
func (r Revision) Content() []etree.Token {
	if r.Kind.IsPropertyChange() {
		return nil
	}
	return r.Element.Child
}

// Accepted returns the properties of a property change that remain once it is accepted.
func (r Revision) Accepted() []*etree.Element {
	if !r.Kind.IsPropertyChange() {
		return nil
	}
	var out []*etree.Element
	for _, c := range r.Element.ChildElements() {
		if c != r.Change {
			out = append(out, c)
		}
	}
	return out
}

// Previous returns the properties a property change replaced.
func (r Revision) Previous() *etree.Element {
	if r.Change == nil {
		return nil
	}
	return wChild(r.Change, r.Element.Tag)
}

// View returns the typed view of e.
func View(e *etree.Element) (Revision, error) {
	kind := Classify(e)
	rev := Revision{Kind: kind, Element: e}

	switch {
	case kind == Deletion && e.Tag == "tr":
		rev.setAttrs(wChild(wChild(e, "trPr"), "del"))
	case kind == Insertion || kind == Deletion:
		rev.setAttrs(e)
	case kind.IsPropertyChange():
		changeTag := propertyChanges[e.Tag].change
		var changes []*etree.Element
		for _, c := range e.ChildElements() {
			if isWTag(c, changeTag) {
				changes = append(changes, c)
			}
		}
		if len(changes) != 1 {
			return Revision{}, fmt.Errorf("%w: %s carries %d %s elements", core.ErrMalformedRevision, e.GetPath(), len(changes), changeTag)
		}
		rev.Change = changes[0]

		payloads := 0
		for _, c := range rev.Change.ChildElements() {
			if isWTag(c, e.Tag) {
				payloads++
			}
		}
		if payloads != 1 {
			return Revision{}, fmt.Errorf("%w: %s has %d %s payloads", core.ErrMalformedRevision, rev.Change.GetPath(), payloads, e.Tag)
		}
		rev.setAttrs(rev.Change)
	default:
		if isChangeElement(e) {
			return Revision{}, fmt.Errorf("%w: %s outside its %s", core.ErrMalformedRevision, e.GetPath(), changeContainers[e.Tag])
		}
	}
	return rev, nil
}

func (r *Revision) setAttrs(e *etree.Element) {
	r.ID = wAttr(e, "id")
	r.Author = wAttr(e, "author")
	r.Date = wAttr(e, "date")
}

// wAttr returns the value of a WordprocessingML attribute of e.
func wAttr(e *etree.Element, key string) string {
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Key != key {
			continue
		}
		if ns := a.NamespaceURI(); ns == NSTransitional || ns == NSStrict {
			return a.Value
		}
	}
	return ""
}

// Text returns the visible or deleted text below e.
func Text(e *etree.Element) string {
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(n *etree.Element) {
		for _, c := range n.ChildElements() {
			if !isW(c) {
				walk(c)
				continue
			}
			switch c.Tag {
			case "t", "delText":
				sb.WriteString(c.Text())
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			default:
				walk(c)
			}
		}
	}
	walk(e)
	return sb.String()
}

// Inspect lists every revision below the root of doc in document order.
// The content of a deletion is not visited: acceptance discards it whatever it holds.
func Inspect(doc *etree.Document) ([]core.RevisionInfo, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", core.ErrMalformedXML)
	}

	var infos []core.RevisionInfo
	var walk func(*etree.Element) error
	walk = func(e *etree.Element) error {
		rev, err := View(e)
		if err != nil {
			return err
		}
		if rev.Kind != Plain {
			info := core.RevisionInfo{
				Kind:   rev.Kind.String(),
				ID:     rev.ID,
				Author: rev.Author,
				Date:   rev.Date,
			}
			if !rev.Kind.IsPropertyChange() {
				info.Text = Text(e)
			}
			infos = append(infos, info)
		}
		if rev.Kind == Deletion {
			return nil
		}
		for _, c := range e.ChildElements() {
			if c == rev.Change {
				continue
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return infos, nil
}
