package workspace

// PageView is a read-only snapshot of what the viewer should draw.
type PageView struct {
	Document Document
	Page     int
	Pages    int
	Status   LoadStatus
	LoadErr  string
}

// PagesKnown reports whether the renderer has reported a page count.
func (v PageView) PagesKnown() bool {
	return v.Status == LoadReady
}

// Viewer owns the current page of the active document. It writes the
// remembered page and the load outcome, nothing else.
type Viewer struct {
	s *State
}

// Current describes the active document and its remembered page.
func (v Viewer) Current() PageView {
	return snapshot(v.s.activeState())
}

// Page returns the view for any document, active or not.
func (v Viewer) Page(id DocumentID) (PageView, bool) {
	ds, ok := v.s.docs[id]
	if !ok {
		return PageView{}, false
	}
	return snapshot(ds), true
}

// GoPrevious moves one page back. Page 1 is a floor.
func (v Viewer) GoPrevious() bool {
	ds := v.s.activeState()
	if ds.status == LoadFailed || ds.page <= 1 {
		return false
	}
	ds.page--
	return true
}

// GoNext moves one page forward. The last page is a ceiling once the page
// count is known; before the renderer reports it the move is allowed.
func (v Viewer) GoNext() bool {
	ds := v.s.activeState()
	switch ds.status {
	case LoadFailed:
		return false
	case LoadReady:
		if ds.page >= ds.pages {
			return false
		}
	}
	ds.page++
	return true
}

// CanGoPrevious mirrors GoPrevious without moving.
func (v Viewer) CanGoPrevious() bool {
	ds := v.s.activeState()
	return ds.status != LoadFailed && ds.page > 1
}

// CanGoNext mirrors GoNext without moving.
func (v Viewer) CanGoNext() bool {
	ds := v.s.activeState()
	switch ds.status {
	case LoadFailed:
		return false
	case LoadReady:
		return ds.page < ds.pages
	default:
		return true
	}
}

// ReportLoaded records the page count delivered by the renderer.
func (v Viewer) ReportLoaded(id DocumentID, pages int) error {
	ds, ok := v.s.docs[id]
	if !ok {
		return ErrUnknownDocument
	}
	ds.pages = pages
	ds.status = LoadReady
	ds.loadErr = ""
	return nil
}

// ReportLoadFailed records a renderer failure; navigation stays disabled until
// a later ReportLoaded.
func (v Viewer) ReportLoadFailed(id DocumentID, err error) error {
	ds, ok := v.s.docs[id]
	if !ok {
		return ErrUnknownDocument
	}
	ds.status = LoadFailed
	ds.pages = 0
	ds.loadErr = "document failed to load"
	if err != nil && err.Error() != "" {
		ds.loadErr = err.Error()
	}
	return nil
}

func snapshot(ds *documentState) PageView {
	return PageView{
		Document: ds.doc,
		Page:     ds.page,
		Pages:    ds.pages,
		Status:   ds.status,
		LoadErr:  ds.loadErr,
	}
}
