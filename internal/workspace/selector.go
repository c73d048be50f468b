package workspace

// Selector switches the active document. It never writes a remembered page.
type Selector struct {
	s *State
}

// Documents lists the catalog in its configured order.
func (sel Selector) Documents() []Document {
	docs := make([]Document, 0, len(sel.s.order))
	for _, id := range sel.s.order {
		docs = append(docs, sel.s.docs[id].doc)
	}
	return docs
}

// Active returns the id of the active document.
func (sel Selector) Active() DocumentID {
	return sel.s.active
}

// Select makes id the active document. The viewer then shows its remembered
// page, not page 1.
func (sel Selector) Select(id DocumentID) error {
	if _, ok := sel.s.docs[id]; !ok {
		return ErrUnknownDocument
	}
	sel.s.active = id
	return nil
}

// SelectIndex selects the document at a zero-based catalog position.
func (sel Selector) SelectIndex(idx int) error {
	if idx < 0 || idx >= len(sel.s.order) {
		return ErrUnknownDocument
	}
	return sel.Select(sel.s.order[idx])
}

// Cycle moves the selection delta tabs along the catalog, wrapping around.
func (sel Selector) Cycle(delta int) DocumentID {
	n := len(sel.s.order)
	idx := 0
	for i, id := range sel.s.order {
		if id == sel.s.active {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	sel.s.active = sel.s.order[idx]
	return sel.s.active
}

// RememberedPage returns the last page viewed for id.
func (sel Selector) RememberedPage(id DocumentID) (int, bool) {
	ds, ok := sel.s.docs[id]
	if !ok {
		return 0, false
	}
	return ds.page, true
}
