package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/citeview/internal/workspace"
)

type pageLayout struct {
	windowWidth   int
	windowHeight  int
	viewerWidth   int
	sideWidth     int
	bodyHeight    int
	composerWidth int
}

func newPageLayout() pageLayout {
	layout := pageLayout{}
	layout.Update(100, 30)
	return layout
}

// Update splits the window into the page viewer on the left and the
// response panel on the right; the composer and status rows sit below both.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	side := width * 3 / 10
	if side < minSideWidth {
		side = minSideWidth
	}
	viewer := width - side - panelGutter
	if viewer < minViewerWidth {
		viewer = minViewerWidth
	}
	l.viewerWidth = viewer
	l.sideWidth = side

	body := height - chromeHeight
	if body < minBodyHeight {
		body = minBodyHeight
	}
	l.bodyHeight = body

	composer := width - composerChrome
	if composer < minSideWidth {
		composer = minSideWidth
	}
	l.composerWidth = composer
}

type sideView struct {
	content     string
	sourceLines map[int]int
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) buildSidePanel() sideView {
	cb := &contentBuilder{}
	sourceLines := map[int]int{}
	wrap := wrapWidth(m.sidePanel.Width, 2)
	query := m.state.Query()

	header := sectionHeaderStyle
	if m.focus == focusSources {
		header = focusedHeaderStyle
	}
	cb.WriteString(header.Render("Response"))
	cb.WriteRune('\n')

	answer, ok := query.Answer()
	switch {
	case query.Loading():
		cb.WriteString(helperStyle.Render(m.spinner.View() + " " + waitingMessage))
		cb.WriteRune('\n')
	case !ok:
		cb.WriteString(helperStyle.Render(waitingMessage))
		cb.WriteRune('\n')
	default:
		if text := answer.DisplayText(); strings.TrimSpace(text) != "" {
			cb.WriteString(wordwrap.String(text, wrap))
			cb.WriteRune('\n')
		}
	}

	citations := m.citations()
	if len(citations) == 0 {
		return sideView{content: cb.String(), sourceLines: sourceLines}
	}
	cb.WriteRune('\n')
	cb.WriteString(sectionHeaderStyle.Render(sourcesHeading))
	cb.WriteRune('\n')
	for idx, citation := range citations {
		sourceLines[idx] = cb.Line()
		cb.WriteString(m.renderCitation(idx, citation, wrap))
		cb.WriteRune('\n')
	}
	return sideView{content: cb.String(), sourceLines: sourceLines}
}

func (m *model) renderCitation(idx int, citation workspace.Citation, wrap int) string {
	label := wordwrap.String(citation.Label(), wrap-2)
	if m.focus == focusSources && idx == m.sourceCursor {
		return currentLineStyle.Render(indentFirst(label, "▸ ", "  "))
	}
	return linkStyle.Render(indentFirst(label, "• ", "  "))
}

func indentFirst(text, first, rest string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func wrapWidth(width, padding int) int {
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}
