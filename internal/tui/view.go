package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/citeview/internal/workspace"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.viewerPanel(),
		strings.Repeat(" ", panelGutter),
		m.sidePanel.View(),
	)
	return joinNonEmpty([]string{m.tabsView(), body, m.composerPanel(), m.footerView()})
}

func (m *model) tabsView() string {
	selector := m.state.Selector()
	active := selector.Active()
	tabs := make([]string, 0, len(selector.Documents()))
	for idx, doc := range selector.Documents() {
		label := doc.Title
		if idx < 9 {
			label = fmt.Sprintf("%d %s", idx+1, doc.Title)
		}
		if doc.ID == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *model) viewerPanel() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.viewerHeader(), m.viewport.View())
}

func (m *model) viewerHeader() string {
	viewer := m.state.Viewer()
	view := viewer.Current()

	header := sectionHeaderStyle
	if m.focus == focusViewer {
		header = focusedHeaderStyle
	}
	prev, next := "◀", "▶"
	if viewer.CanGoPrevious() {
		prev = keyDescStyle.Render(prev)
	} else {
		prev = navDisabledStyle.Render(prev)
	}
	if viewer.CanGoNext() {
		next = keyDescStyle.Render(next)
	} else {
		next = navDisabledStyle.Render(next)
	}
	return strings.Join([]string{
		header.Render(view.Document.Title),
		prev,
		pageIndicatorStyle.Render(pageIndicator(view)),
		next,
	}, " ")
}

func pageIndicator(view workspace.PageView) string {
	switch view.Status {
	case workspace.LoadReady:
		return fmt.Sprintf("Page %d / %d", view.Page, view.Pages)
	case workspace.LoadFailed:
		return fmt.Sprintf("Page %d / -", view.Page)
	default:
		return fmt.Sprintf("Page %d / ?", view.Page)
	}
}

func (m *model) pageContent() string {
	view := m.state.Viewer().Current()
	switch view.Status {
	case workspace.LoadFailed:
		return errorStyle.Render("Failed to load PDF: " + view.LoadErr)
	case workspace.LoadPending:
		if m.config.Renderer == nil {
			return helperStyle.Render("No document renderer configured.")
		}
		return helperStyle.Render(fmt.Sprintf("%s Loading %s…", m.spinner.View(), view.Document.Title))
	}
	key, ok := m.visiblePage()
	if !ok {
		return helperStyle.Render("No document renderer configured.")
	}
	page, ok := m.rendered[key]
	switch {
	case !ok:
		return helperStyle.Render(fmt.Sprintf("%s Rendering page %d…", m.spinner.View(), view.Page))
	case page.err != nil:
		return errorStyle.Render(page.err.Error())
	default:
		return page.text
	}
}

func (m *model) composerPanel() string {
	query := m.state.Query()
	button := buttonStyle.Render(sendLabel)
	if !query.CanSubmit() {
		button = buttonDisabledStyle.Render(m.spinner.View() + " " + sendingLabel)
	}
	line := lipgloss.JoinHorizontal(lipgloss.Center, m.composer.View(), "  ", button)
	parts := []string{line}
	if msg := query.Err(); msg != "" {
		parts = append(parts, errorStyle.Render(msg))
	}
	return strings.Join(parts, "\n")
}

func (m *model) footerView() string {
	return strings.Join([]string{m.statusBarView(), m.keyLegendView()}, "\n")
}

func (m *model) statusBarView() string {
	view := m.state.Viewer().Current()
	stats := []string{
		fmt.Sprintf("Focus %s", m.focus),
		fmt.Sprintf("%s %s", view.Document.Title, view.Status),
	}
	backend := m.config.BackendLabel
	if backend == "" {
		backend = "unset"
	}
	stats = append(stats, "Backend "+backend)
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	var loads, queries int
	for _, snap := range m.running {
		switch snap.Kind {
		case jobKindLoad:
			loads++
		case jobKindQuery:
			queries++
		}
	}
	var badges []string
	if loads > 0 {
		badges = append(badges, fmt.Sprintf("Loading %d", loads))
	}
	if queries > 0 {
		badges = append(badges, "Asking…")
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyHints() []keyHint {
	common := []keyHint{{"Tab", "Focus"}, {"PgUp/PgDn", "Page"}, {"Ctrl+T", "Next doc"}, {"Ctrl+C", "Quit"}}
	switch m.focus {
	case focusViewer:
		return append([]keyHint{{"←/→", "Page"}, {"1-9", "Document"}, {"[/]", "Cycle"}, {"↑/↓", "Scroll"}}, common...)
	case focusSources:
		return append([]keyHint{{"↑/↓", "Move"}, {"Enter", "Open citation"}, {"Esc", "Composer"}}, common...)
	default:
		return append([]keyHint{{"Enter", "Send"}, {"Esc", "Clear"}}, common...)
	}
}

func (m *model) keyLegendView() string {
	hints := m.keyHints()
	cells := make([]string, 0, len(hints))
	for _, hint := range hints {
		cells = append(cells, keyStyle.Render(hint.Key)+keyDescStyle.Render(" "+hint.Description))
	}
	return strings.Join(cells, "  ")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
