package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/citeview/internal/docs"
	"github.com/csheth/citeview/internal/workspace"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Documents []workspace.Document
	Backend   Asker
	Renderer  docs.Renderer
	Logger    *zap.Logger
	// BackendLabel is shown in the status bar, eg. the backend host.
	BackendLabel string
}

type renderedPage struct {
	text string
	err  error
}

type model struct {
	config    Config
	logger    *zap.Logger
	state     *workspace.State
	jobs      *jobBus
	running   map[string]jobSnapshot
	requested map[workspace.DocumentID]bool
	rendered  map[pageKey]renderedPage
	rendering map[pageKey]bool

	layout    pageLayout
	composer  textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	sidePanel viewport.Model

	focus         focusArea
	sourceCursor  int
	sourceLines   map[int]int
	viewportDirty bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) (tea.Model, error) {
	state, err := workspace.New(config.Documents)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.Prompt = "> "
	composer.CharLimit = 500
	composer.Width = 60
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	side := viewport.New(30, 20)
	side.MouseWheelEnabled = true

	m := &model{
		config:        config,
		logger:        logger.Named("tui"),
		state:         state,
		jobs:          newJobBus(logger),
		running:       map[string]jobSnapshot{},
		requested:     map[workspace.DocumentID]bool{},
		rendered:      map[pageKey]renderedPage{},
		rendering:     map[pageKey]bool{},
		layout:        newPageLayout(),
		composer:      composer,
		spinner:       spin,
		viewport:      vp,
		sidePanel:     side,
		focus:         focusComposer,
		sourceLines:   map[int]int{},
		viewportDirty: true,
	}
	m.applyLayout(m.layout.windowWidth, m.layout.windowHeight)
	return m, nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.ensureLoaded(m.state.Selector().Active()))
}

// Update applies msg, then schedules extraction of the visible page if it
// has not been rendered at the current width.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if render := m.ensureRendered(); render != nil {
		cmd = tea.Batch(cmd, render)
	}
	return next, cmd
}

func (m *model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.applyLayout(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if m.state.Query().Loading() || len(m.running) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.markViewportDirty()
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.focus == focusSources {
			m.sidePanel, cmd = m.sidePanel.Update(msg)
		} else {
			m.viewport, cmd = m.viewport.Update(msg)
		}
		return m, cmd
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.update(msg.Payload)
	case docLoadedMsg:
		m.handleDocLoaded(msg)
		return m, nil
	case pageRenderedMsg:
		delete(m.rendering, msg.key)
		m.rendered[msg.key] = renderedPage{text: msg.text, err: msg.err}
		m.markViewportDirty()
		return m, nil
	case queryResultMsg:
		m.handleQueryResult(msg)
		return m, nil
	}

	if m.focus == focusComposer {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyPgUp:
		m.previousPage()
		return m, nil
	case tea.KeyPgDown:
		m.nextPage()
		return m, nil
	case tea.KeyCtrlT:
		return m, m.cycleDocument(1)
	case tea.KeyTab:
		m.cycleFocus(1)
		return m, nil
	case tea.KeyShiftTab:
		m.cycleFocus(-1)
		return m, nil
	}

	switch m.focus {
	case focusViewer:
		return m.handleViewerKey(key)
	case focusSources:
		return m.handleSourcesKey(key)
	default:
		return m.processComposerKey(key)
	}
}

func (m *model) processComposerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		return m, m.submitQuery()
	case tea.KeyEsc:
		m.composer.SetValue("")
		m.state.Query().SetInput("")
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	m.state.Query().SetInput(m.composer.Value())
	return m, cmd
}

func (m *model) handleViewerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := key.String(); k {
	case "left", "h":
		m.previousPage()
	case "right", "l":
		m.nextPage()
	case "[":
		return m, m.cycleDocument(-1)
	case "]":
		return m, m.cycleDocument(1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.selectIndex(int(k[0] - '1'))
	case "g", "home":
		m.viewport.GotoTop()
	case "G", "end":
		m.viewport.GotoBottom()
	case "q":
		return m, tea.Quit
	case "esc":
		m.setFocus(focusComposer)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleSourcesKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		m.moveSourceCursor(-1)
	case "down", "j":
		m.moveSourceCursor(1)
	case "enter":
		return m, m.activateCitation()
	case "q":
		return m, tea.Quit
	case "esc":
		m.setFocus(focusComposer)
	}
	return m, nil
}

func (m *model) submitQuery() tea.Cmd {
	text := m.composer.Value()
	query := m.state.Query()
	query.SetInput(text)
	seq, ok := query.Begin(text)
	if !ok {
		return nil
	}
	m.sourceCursor = 0
	m.sidePanel.GotoTop()
	m.markViewportDirty()
	m.logger.Info("query submitted", zap.Uint64("seq", seq), zap.Int("length", len(text)))
	return tea.Batch(
		m.jobs.Start(jobKindQuery, "question", queryJob(m.config.Backend, seq, text)),
		m.spinner.Tick,
	)
}

func (m *model) handleQueryResult(msg queryResultMsg) {
	query := m.state.Query()
	var applied bool
	if msg.result.OK() {
		applied = query.Succeed(msg.seq, msg.result.Answer)
	} else {
		applied = query.Fail(msg.seq, msg.result.Message())
	}
	if !applied {
		m.logger.Debug("dropping stale answer", zap.Uint64("seq", msg.seq))
		return
	}
	if !msg.result.OK() {
		m.logger.Warn("query failed",
			zap.Uint64("seq", msg.seq),
			zap.String("kind", msg.result.Kind.String()),
			zap.Int("status", msg.result.Status),
			zap.String("detail", msg.result.Detail),
			zap.Error(msg.result.Err),
		)
	}
	m.sourceCursor = 0
	m.sidePanel.GotoTop()
	m.markViewportDirty()
}

func (m *model) handleDocLoaded(msg docLoadedMsg) {
	viewer := m.state.Viewer()
	if msg.err != nil {
		m.logger.Warn("document load failed", zap.String("document", string(msg.id)), zap.Error(msg.err))
		_ = viewer.ReportLoadFailed(msg.id, msg.err)
		// Selecting the document again retries the load.
		delete(m.requested, msg.id)
	} else {
		_ = viewer.ReportLoaded(msg.id, msg.pages)
	}
	m.markViewportDirty()
}

func (m *model) ensureLoaded(id workspace.DocumentID) tea.Cmd {
	if m.config.Renderer == nil || m.requested[id] {
		return nil
	}
	view, ok := m.state.Viewer().Page(id)
	if !ok {
		return nil
	}
	m.requested[id] = true
	return tea.Batch(
		m.jobs.Start(jobKindLoad, view.Document.Title, loadDocumentJob(m.config.Renderer, id, view.Document.Source)),
		m.spinner.Tick,
	)
}

func (m *model) visiblePage() (pageKey, bool) {
	view := m.state.Viewer().Current()
	if m.config.Renderer == nil || view.Status != workspace.LoadReady {
		return pageKey{}, false
	}
	return pageKey{source: view.Document.Source, page: view.Page, width: wrapWidth(m.viewport.Width, 1)}, true
}

func (m *model) ensureRendered() tea.Cmd {
	key, ok := m.visiblePage()
	if !ok || m.rendering[key] {
		return nil
	}
	if _, done := m.rendered[key]; done {
		return nil
	}
	m.rendering[key] = true
	label := fmt.Sprintf("%s page %d", m.state.Viewer().Current().Document.Title, key.page)
	return tea.Batch(
		m.jobs.Start(jobKindRender, label, renderPageJob(m.config.Renderer, key)),
		m.spinner.Tick,
	)
}

func (m *model) previousPage() {
	if m.state.Viewer().GoPrevious() {
		m.viewport.GotoTop()
		m.markViewportDirty()
	}
}

func (m *model) nextPage() {
	if m.state.Viewer().GoNext() {
		m.viewport.GotoTop()
		m.markViewportDirty()
	}
}

func (m *model) cycleDocument(delta int) tea.Cmd {
	id := m.state.Selector().Cycle(delta)
	m.viewport.GotoTop()
	m.markViewportDirty()
	return m.ensureLoaded(id)
}

func (m *model) selectIndex(idx int) tea.Cmd {
	if err := m.state.Selector().SelectIndex(idx); err != nil {
		return nil
	}
	m.viewport.GotoTop()
	m.markViewportDirty()
	return m.ensureLoaded(m.state.Selector().Active())
}

func (m *model) citations() []workspace.Citation {
	answer, ok := m.state.Query().Answer()
	if !ok || m.state.Query().Loading() {
		return nil
	}
	return answer.Citations
}

func (m *model) moveSourceCursor(delta int) {
	count := len(m.citations())
	if count == 0 {
		m.sourceCursor = 0
		return
	}
	next := m.sourceCursor + delta
	if next < 0 {
		next = 0
	}
	if next >= count {
		next = count - 1
	}
	m.sourceCursor = next
	m.markViewportDirty()
}

func (m *model) activateCitation() tea.Cmd {
	citations := m.citations()
	if m.sourceCursor < 0 || m.sourceCursor >= len(citations) {
		return nil
	}
	citation := citations[m.sourceCursor]
	if !m.state.Navigator().Activate(citation) {
		m.logger.Info("citation not resolved", zap.String("source", citation.Source), zap.Int("page", citation.Page))
		return nil
	}
	m.viewport.GotoTop()
	m.markViewportDirty()
	return m.ensureLoaded(m.state.Selector().Active())
}

func (m *model) cycleFocus(delta int) {
	idx := 0
	for i, f := range focusOrder {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(focusOrder)) % len(focusOrder)
	m.setFocus(focusOrder[idx])
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	if f == focusComposer {
		m.composer.Focus()
	} else {
		m.composer.Blur()
	}
	m.markViewportDirty()
}

func (m *model) applyLayout(width, height int) {
	m.layout.Update(width, height)
	if m.viewport.Width != m.layout.viewerWidth {
		m.rendered = map[pageKey]renderedPage{}
	}
	m.viewport.Width = m.layout.viewerWidth
	m.viewport.Height = m.layout.bodyHeight - 1
	m.sidePanel.Width = m.layout.sideWidth
	m.sidePanel.Height = m.layout.bodyHeight
	m.composer.Width = m.layout.composerWidth
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	m.viewport.SetContent(m.pageContent())
	side := m.buildSidePanel()
	m.sourceLines = side.sourceLines
	m.sidePanel.SetContent(side.content)
	m.ensureSourceVisible()
}

func (m *model) ensureSourceVisible() {
	line, ok := m.sourceLines[m.sourceCursor]
	if !ok || m.focus != focusSources {
		return
	}
	switch {
	case line < m.sidePanel.YOffset:
		m.sidePanel.SetYOffset(line)
	case line >= m.sidePanel.YOffset+m.sidePanel.Height:
		m.sidePanel.SetYOffset(line - m.sidePanel.Height + 1)
	}
}
