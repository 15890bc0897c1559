package revision

import "github.com/beevik/etree"

// commentAnchors are the elements tying a comment to a range of the main part.
var commentAnchors = map[string]bool{
	"commentRangeStart": true,
	"commentRangeEnd":   true,
	"commentReference":  true,
}

func isCommentAnchor(e *etree.Element) bool {
	return commentAnchors[e.Tag] && isW(e)
}

// hasCommentAnchor reports whether a direct child of e is a comment anchor.
func hasCommentAnchor(e *etree.Element) bool {
	for _, c := range e.ChildElements() {
		if isCommentAnchor(c) {
			return true
		}
	}
	return false
}

// onlyRunProperties reports whether a resolved run holds nothing but w:rPr.
// Character data is ignored because a run carries text only inside w:t.
func onlyRunProperties(r *etree.Element) bool {
	for _, c := range r.ChildElements() {
		if c.Tag != "rPr" || c.Space != r.Space {
			return false
		}
	}
	return true
}
