// Package workspace holds the reading session shared by the viewer, the
// document tabs, the question panel and the citation list.
//
// A single State is owned by the application shell. Components never touch it
// directly; they receive a handle (Viewer, Selector, QueryPanel, Navigator)
// that exposes only the fields that component is allowed to read or write.
package workspace

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrUnknownDocument is returned when an identifier is not part of the catalog.
	ErrUnknownDocument = errors.New("unknown document")
	// ErrEmptyCatalog is returned by New when no documents are supplied.
	ErrEmptyCatalog = errors.New("document catalog is empty")
)

// DocumentID is the stable key of a bundled document, eg. "pdf1".
type DocumentID string

// Document describes one fixed document known to the application.
type Document struct {
	ID      DocumentID
	Title   string
	Source  string
	Aliases []string
}

// LoadStatus reports how far the renderer got with a document.
type LoadStatus int

const (
	LoadPending LoadStatus = iota
	LoadReady
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "pending"
	}
}

type documentState struct {
	doc     Document
	page    int
	pages   int
	status  LoadStatus
	loadErr string
}

// State is the in-memory session. It is not safe for concurrent use; every
// mutation happens on the UI event loop.
type State struct {
	order   []DocumentID
	docs    map[DocumentID]*documentState
	aliases map[string]DocumentID
	active  DocumentID
	query   queryState
}

// New builds a session over a fixed catalog. The first document starts active
// and every document starts on page 1.
func New(catalog []Document) (*State, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	s := &State{
		docs:    make(map[DocumentID]*documentState, len(catalog)),
		aliases: map[string]DocumentID{},
	}
	for _, doc := range catalog {
		if doc.ID == "" {
			return nil, fmt.Errorf("document %q has no id", doc.Title)
		}
		if _, dup := s.docs[doc.ID]; dup {
			return nil, fmt.Errorf("duplicate document id %q", doc.ID)
		}
		s.order = append(s.order, doc.ID)
		s.docs[doc.ID] = &documentState{doc: doc, page: 1}
		names := append([]string{path.Base(doc.Source)}, doc.Aliases...)
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" || name == "." || name == "/" {
				continue
			}
			if owner, taken := s.aliases[name]; taken && owner != doc.ID {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", name, owner, doc.ID)
			}
			s.aliases[name] = doc.ID
		}
	}
	s.active = s.order[0]
	return s, nil
}

// Viewer returns the paginated viewer handle.
func (s *State) Viewer() Viewer { return Viewer{s: s} }

// Selector returns the document selector handle.
func (s *State) Selector() Selector { return Selector{s: s} }

// Navigator returns the citation navigator handle.
func (s *State) Navigator() Navigator { return Navigator{s: s} }

// Query returns the question panel handle.
func (s *State) Query() QueryPanel { return QueryPanel{s: s} }

func (s *State) activeState() *documentState {
	return s.docs[s.active]
}

// resolve maps a citation source to a document id: exact alias first, then the
// base name so "data/report.pdf" still finds "report.pdf".
func (s *State) resolve(source string) (DocumentID, bool) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", false
	}
	if id, ok := s.aliases[source]; ok {
		return id, true
	}
	id, ok := s.aliases[path.Base(strings.ReplaceAll(source, "\\", "/"))]
	return id, ok
}
