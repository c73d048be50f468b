package tui

import (
	"github.com/csheth/citeview/internal/backend"
	"github.com/csheth/citeview/internal/workspace"
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusViewer
	focusSources
)

var focusOrder = []focusArea{focusComposer, focusViewer, focusSources}

func (f focusArea) String() string {
	switch f {
	case focusViewer:
		return "VIEWER"
	case focusSources:
		return "SOURCES"
	default:
		return "COMPOSER"
	}
}

const (
	composerPlaceholder = "Enter text..."
	waitingMessage      = "Waiting for response..."
	sendLabel           = "Send"
	sendingLabel        = "Sending..."
	sourcesHeading      = "Sources:"
)

const (
	minViewerWidth = 40
	minSideWidth   = 24
	panelGutter    = 2
	chromeHeight   = 9
	minBodyHeight  = 6
	composerChrome = 16
)

type docLoadedMsg struct {
	id    workspace.DocumentID
	pages int
	err   error
}

// pageKey identifies one rendering of a page: wrapping depends on width.
type pageKey struct {
	source string
	page   int
	width  int
}

type pageRenderedMsg struct {
	key  pageKey
	text string
	err  error
}

type queryResultMsg struct {
	seq    uint64
	query  string
	result backend.Result
}
