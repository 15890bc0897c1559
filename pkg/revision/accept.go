package revision

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/beevik/etree"

	"github.com/aretw0/redline/pkg/core"
)

// Option configures an Acceptor.
type Option func(*Acceptor)

// WithRemoveComments also drops comment anchors while accepting revisions.
func WithRemoveComments(enabled bool) Option {
	return func(a *Acceptor) {
		a.removeComments = enabled
	}
}

// WithLogger sets the logger used by the Acceptor.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Acceptor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Acceptor accepts every revision of a main document tree.
type Acceptor struct {
	removeComments bool
	logger         *slog.Logger
}

// NewAcceptor creates an Acceptor.
func NewAcceptor(opts ...Option) *Acceptor {
	a := &Acceptor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ComponentType implements introspection.Component.
func (a *Acceptor) ComponentType() string {
	return "revision"
}

// Inspect implements core.Reviewer.
func (a *Acceptor) Inspect(doc *etree.Document) ([]core.RevisionInfo, error) {
	return Inspect(doc)
}

// Accept implements core.Reviewer. It builds a new tree in a single post-order pass;
// doc is left untouched. Tokens outside the root element are copied as they are.
func (a *Acceptor) Accept(doc *etree.Document) (*etree.Document, core.Stats, error) {
	root := doc.Root()
	if root == nil {
		return nil, core.Stats{}, fmt.Errorf("%w: no root element", core.ErrMalformedXML)
	}
	if kind := Classify(root); kind != Plain {
		return nil, core.Stats{}, fmt.Errorf("%w: %s at the document root", core.ErrMalformedRevision, kind)
	}

	t := &transformer{
		removeComments: a.removeComments,
		merged:         make(map[*etree.Element]bool),
	}

	out := etree.NewDocument()
	out.ReadSettings = doc.ReadSettings
	out.WriteSettings = doc.WriteSettings

	for _, tok := range doc.Child {
		e, ok := tok.(*etree.Element)
		if !ok {
			out.AddChild(copyToken(tok))
			continue
		}
		resolved, err := t.resolve(e)
		if err != nil {
			return nil, core.Stats{}, err
		}
		for _, r := range resolved {
			out.AddChild(r)
		}
	}

	if t.droppedTables > 0 {
		a.logger.Debug("dropped tables without rows", "count", t.droppedTables)
	}
	return out, t.stats, nil
}

type transformer struct {
	removeComments bool
	stats          core.Stats
	droppedTables  int
	// merged marks resolved paragraphs whose paragraph mark was deleted.
	merged map[*etree.Element]bool
}

// resolve returns the tokens that replace e in the accepted tree.
func (t *transformer) resolve(e *etree.Element) ([]etree.Token, error) {
	if t.removeComments && isCommentAnchor(e) {
		t.stats.CommentAnchors++
		return nil, nil
	}

	rev, err := View(e)
	if err != nil {
		return nil, err
	}

	switch rev.Kind {
	case Deletion:
		t.stats.Deletions++
		return nil, nil

	case Insertion:
		t.stats.Insertions++
		kids, err := t.children(e, nil)
		if err != nil {
			return nil, err
		}
		carryNamespaces(e, kids)
		return kids, nil

	case ParagraphPropertyChange, RunPropertyChange, TablePropertyChange, SectionPropertyChange:
		t.count(rev.Kind)
		c := shallowCopy(e)
		kids, err := t.children(e, rev.Change)
		if err != nil {
			return nil, err
		}
		appendAll(c, kids)
		return []etree.Token{c}, nil
	}

	c := shallowCopy(e)
	kids, err := t.children(e, nil)
	if err != nil {
		return nil, err
	}
	appendAll(c, kids)

	switch {
	case isWTag(e, "p"):
		if markDeleted(e) {
			t.merged[c] = true
		}
	case isWTag(e, "tbl"):
		if hasRows(e) && !hasRows(c) {
			t.droppedTables++
			return nil, nil
		}
	case isWTag(e, "r"):
		if t.removeComments && hasCommentAnchor(e) && onlyRunProperties(c) {
			return nil, nil
		}
	}
	return []etree.Token{c}, nil
}

// children resolves the child tokens of e, skipping skip, and merges paragraphs whose
// mark was deleted into the paragraph that directly follows them.
func (t *transformer) children(e, skip *etree.Element) ([]etree.Token, error) {
	var out []etree.Token
	pending := -1

	for _, tok := range e.Child {
		child, ok := tok.(*etree.Element)
		if !ok {
			out = append(out, copyToken(tok))
			continue
		}
		if child == skip {
			continue
		}

		resolved, err := t.resolve(child)
		if err != nil {
			return nil, err
		}
		for _, r := range resolved {
			re, ok := r.(*etree.Element)
			if !ok {
				out = append(out, r)
				continue
			}
			if pending >= 0 {
				if re.Tag == "p" && re.Space == out[pending].(*etree.Element).Space {
					mergeInto(out[pending].(*etree.Element), re)
					out = append(out[:pending], out[pending+1:]...)
					t.stats.MergedParagraphs++
				}
				pending = -1
			}
			out = append(out, re)
			if t.merged[re] {
				pending = len(out) - 1
			}
		}
	}
	return out, nil
}

func (t *transformer) count(k Kind) {
	switch k {
	case ParagraphPropertyChange:
		t.stats.ParagraphPropertyChanges++
	case RunPropertyChange:
		t.stats.RunPropertyChanges++
	case TablePropertyChange:
		t.stats.TablePropertyChanges++
	case SectionPropertyChange:
		t.stats.SectionPropertyChanges++
	}
}

// markDeleted reports whether the paragraph mark of p is a tracked deletion.
func markDeleted(p *etree.Element) bool {
	pPr := wChild(p, "pPr")
	if pPr == nil {
		return false
	}
	rPr := wChild(pPr, "rPr")
	return rPr != nil && wChild(rPr, "del") != nil
}

// mergeInto moves the content of prev, except its paragraph properties, to the start of
// next, right after next's own paragraph properties.
func mergeInto(prev, next *etree.Element) {
	var moved []etree.Token
	for _, c := range prev.Child {
		if el, ok := c.(*etree.Element); ok && el.Tag == "pPr" && el.Space == prev.Space {
			continue
		}
		moved = append(moved, c)
	}
	carryNamespaces(prev, moved)

	at := 0
	for i, c := range next.Child {
		if el, ok := c.(*etree.Element); ok && el.Tag == "pPr" && el.Space == next.Space {
			at = i + 1
			break
		}
	}
	for _, c := range moved {
		prev.RemoveChild(c)
		next.InsertChildAt(at, c)
		at++
	}
}

// carryNamespaces copies the namespace declarations of from onto every element in toks
// that does not declare the same prefix itself, so the elements stay well-formed once
// they leave from's scope.
func carryNamespaces(from *etree.Element, toks []etree.Token) {
	var decls []etree.Attr
	for _, a := range from.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			decls = append(decls, a)
		}
	}
	if len(decls) == 0 {
		return
	}
	for _, tok := range toks {
		el, ok := tok.(*etree.Element)
		if !ok {
			continue
		}
		for _, d := range decls {
			if el.SelectAttr(d.FullKey()) == nil {
				el.CreateAttr(d.FullKey(), d.Value)
			}
		}
	}
}

// hasRows reports whether a table holds at least one w:tr child. It only compares
// prefixes, so it works on resolved elements detached from their namespace declarations.
func hasRows(tbl *etree.Element) bool {
	for _, c := range tbl.ChildElements() {
		if c.Tag == "tr" && c.Space == tbl.Space {
			return true
		}
	}
	return false
}

// shallowCopy returns an unparented copy of e with its attributes and no children.
func shallowCopy(e *etree.Element) *etree.Element {
	c := etree.NewElement(e.Tag)
	c.Space = e.Space
	for _, a := range e.Attr {
		c.CreateAttr(a.FullKey(), a.Value)
	}
	return c
}

func appendAll(e *etree.Element, tokens []etree.Token) {
	for _, tok := range tokens {
		e.AddChild(tok)
	}
}

func copyToken(tok etree.Token) etree.Token {
	switch v := tok.(type) {
	case *etree.CharData:
		if v.IsCData() {
			return etree.NewCData(v.Data)
		}
		return etree.NewText(v.Data)
	case *etree.Comment:
		return etree.NewComment(v.Data)
	case *etree.ProcInst:
		return etree.NewProcInst(v.Target, v.Inst)
	case *etree.Directive:
		return etree.NewDirective(v.Data)
	case *etree.Element:
		return v.Copy()
	}
	return nil
}
