package workspace

// Navigator turns an activated citation into a document switch plus a page
// jump.
type Navigator struct {
	s *State
}

// Resolve reports which document a citation points at.
func (n Navigator) Resolve(c Citation) (DocumentID, bool) {
	return n.s.resolve(c.Source)
}

// Activate selects the cited document and sets its remembered page to the
// cited page. The page is not checked against the page count; the renderer
// reports out-of-range pages itself. Unknown sources and pages below 1 leave
// the session untouched.
func (n Navigator) Activate(c Citation) bool {
	id, ok := n.s.resolve(c.Source)
	if !ok || c.Page < 1 {
		return false
	}
	n.s.active = id
	n.s.docs[id].page = c.Page
	return true
}
