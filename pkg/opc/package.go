// Package opc interprets a zip container as an Open Packaging Conventions package and
// locates its WordprocessingML main document part.
package opc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/aretw0/redline/pkg/container"
	"github.com/aretw0/redline/pkg/core"
)

// Packager opens document packages held in memory.
type Packager struct{}

// NewPackager creates a new Packager.
func NewPackager() *Packager {
	return &Packager{}
}

// Open implements core.Packager.
func (p *Packager) Open(data []byte) (core.Package, error) {
	c, err := container.Open(data)
	if err != nil {
		return nil, err
	}
	return &Package{store: c}, nil
}

// ComponentType implements introspection.Component.
func (p *Packager) ComponentType() string {
	return "opc"
}

// Package is an opened OPC package. Parts written through it replace whole entries;
// Save serializes the current state.
type Package struct {
	store *container.Package
}

// Entries returns the entry names of the package in archive order.
func (p *Package) Entries() []string {
	return p.store.Names()
}

// MainPart resolves the officeDocument relationship of the package.
func (p *Package) MainPart() (core.Part, error) {
	relsData, err := p.store.Read(relsName(""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNoMainPart, err)
	}
	rels, err := parseRelationships(relsName(""), relsData)
	if err != nil {
		return nil, err
	}

	var targets []relationship
	for _, r := range rels.Items {
		if !r.internal() {
			continue
		}
		if r.Type == RelOfficeDocument || r.Type == RelOfficeDocumentStrict {
			targets = append(targets, r)
		}
	}
	switch len(targets) {
	case 0:
		return nil, fmt.Errorf("%w: no officeDocument relationship", core.ErrNoMainPart)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d officeDocument relationships", core.ErrAmbiguousMainPart, len(targets))
	}

	target, err := resolveTarget("", targets[0].Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNoMainPart, err)
	}
	name, err := p.store.Resolve(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNoMainPart, err)
	}

	ctData, err := p.store.Read(contentTypesName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNoMainPart, err)
	}
	types, err := parseContentTypes(ctData)
	if err != nil {
		return nil, err
	}
	ct := types.lookup(name)
	if !isMainContentType(ct) {
		return nil, fmt.Errorf("%w: %s has content type %q", core.ErrNoMainPart, name, ct)
	}

	return &Part{pkg: p, name: name, contentType: ct}, nil
}

// RemoveComments drops the annotation parts related to part, their relationship parts,
// the relationships pointing at them and their content-type overrides.
// It returns the removed entry names; a part without comments yields none.
func (p *Package) RemoveComments(part core.Part) ([]string, error) {
	relsPath := relsName(part.Name())
	name, err := p.store.Resolve(relsPath)
	if errors.Is(err, core.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	relsDoc, err := readTree(p.store, name)
	if err != nil {
		return nil, err
	}
	root := relsDoc.Root()

	var targets []string
	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" || !commentRelTypes[rel.SelectAttrValue("Type", "")] {
			continue
		}
		if strings.EqualFold(rel.SelectAttrValue("TargetMode", ""), targetModeExternal) {
			continue
		}
		target, err := resolveTarget(part.Name(), rel.SelectAttrValue("Target", ""))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedXML, name, err)
		}
		targets = append(targets, target)
		root.RemoveChild(rel)
	}
	if len(targets) == 0 {
		return nil, nil
	}

	next := p.store
	if next, err = withTree(next, name, relsDoc); err != nil {
		return nil, err
	}

	var removed []string
	for _, target := range targets {
		for _, candidate := range []string{target, relsName(target)} {
			stored, err := next.Resolve(candidate)
			if err != nil {
				continue
			}
			next = next.Without(stored)
			removed = append(removed, stored)
		}
	}

	if next.Has(contentTypesName) {
		ctName, _ := next.Resolve(contentTypesName)
		ctDoc, err := readTree(next, ctName)
		if err != nil {
			return nil, err
		}
		dropped := 0
		ctRoot := ctDoc.Root()
		for _, o := range ctRoot.ChildElements() {
			if o.Tag != "Override" {
				continue
			}
			partName := strings.TrimPrefix(o.SelectAttrValue("PartName", ""), "/")
			for _, target := range targets {
				if strings.EqualFold(partName, target) {
					ctRoot.RemoveChild(o)
					dropped++
					break
				}
			}
		}
		if dropped > 0 {
			if next, err = withTree(next, ctName, ctDoc); err != nil {
				return nil, err
			}
		}
	}

	p.store = next
	return removed, nil
}

// Save implements core.Package.
func (p *Package) Save() ([]byte, error) {
	return p.store.Save()
}

func readTree(store *container.Package, name string) (*etree.Document, error) {
	data, err := store.Read(name)
	if err != nil {
		return nil, err
	}
	doc := newDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedXML, name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s: no root element", core.ErrMalformedXML, name)
	}
	return doc, nil
}

func withTree(store *container.Package, name string, doc *etree.Document) (*container.Package, error) {
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", name, err)
	}
	return store.With(name, data), nil
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.WriteSettings.CanonicalText = true
	return doc
}

// Part is an XML part of a Package.
type Part struct {
	pkg         *Package
	name        string
	contentType string
}

// Name implements core.Part.
func (p *Part) Name() string {
	return p.name
}

// ContentType returns the content type declared for the part.
func (p *Part) ContentType() string {
	return p.contentType
}

// ReadXML implements core.Part.
func (p *Part) ReadXML() (*etree.Document, error) {
	return readTree(p.pkg.store, p.name)
}

// WriteXML implements core.Part.
func (p *Part) WriteXML(doc *etree.Document) error {
	if doc.Root() == nil {
		return fmt.Errorf("%w: %s: no root element", core.ErrMalformedXML, p.name)
	}
	next, err := withTree(p.pkg.store, p.name, doc)
	if err != nil {
		return err
	}
	p.pkg.store = next
	return nil
}

// Render implements core.Part. The XML declaration and any other prolog are omitted.
func (p *Part) Render(doc *etree.Document) (string, error) {
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("%w: %s: no root element", core.ErrMalformedXML, p.name)
	}
	out := etree.NewDocument()
	out.WriteSettings = doc.WriteSettings
	out.SetRoot(root.Copy())
	return out.WriteToString()
}
