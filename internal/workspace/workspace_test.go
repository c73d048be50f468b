package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aimDeck = "2023-conocophillips-aim-presentation.pdf"
	proxy   = "2024-conocophillips-proxy-statement.pdf"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := New([]Document{
		{ID: "pdf1", Title: "PDF 1", Source: "assets/" + aimDeck},
		{ID: "pdf2", Title: "PDF 2", Source: "assets/" + proxy},
	})
	require.NoError(t, err)
	return s
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New([]Document{{ID: "a", Source: "a.pdf"}, {ID: "a", Source: "b.pdf"}})
	assert.Error(t, err)

	_, err = New([]Document{{ID: "a", Source: "x/a.pdf"}, {ID: "b", Source: "y/a.pdf"}})
	assert.Error(t, err, "same base name for two documents is ambiguous")
}

func TestGoPreviousNeverDropsBelowOne(t *testing.T) {
	s := newTestState(t)
	v := s.Viewer()

	for i := 0; i < 3; i++ {
		assert.False(t, v.GoPrevious())
		assert.Equal(t, 1, v.Current().Page)
	}

	require.NoError(t, v.ReportLoaded("pdf1", 4))
	require.True(t, v.GoNext())
	require.True(t, v.GoPrevious())
	assert.False(t, v.GoPrevious())
	assert.Equal(t, 1, v.Current().Page)
}

func TestGoNextClampsOnceCountKnown(t *testing.T) {
	s := newTestState(t)
	v := s.Viewer()

	// Count unknown: optimistic.
	assert.True(t, v.GoNext())
	assert.Equal(t, 2, v.Current().Page)

	require.NoError(t, v.ReportLoaded("pdf1", 3))
	assert.True(t, v.GoNext())
	assert.False(t, v.GoNext())
	assert.False(t, v.CanGoNext())
	assert.Equal(t, 3, v.Current().Page)
}

func TestLoadFailureDisablesNavigation(t *testing.T) {
	s := newTestState(t)
	v := s.Viewer()
	require.NoError(t, v.ReportLoaded("pdf1", 5))
	require.True(t, v.GoNext())

	require.NoError(t, v.ReportLoadFailed("pdf1", errors.New("corrupt xref")))
	cur := v.Current()
	assert.Equal(t, LoadFailed, cur.Status)
	assert.Equal(t, "corrupt xref", cur.LoadErr)
	assert.False(t, v.GoNext())
	assert.False(t, v.GoPrevious())
	assert.Equal(t, 2, v.Current().Page)

	require.NoError(t, v.ReportLoaded("pdf1", 5))
	assert.True(t, v.GoNext())

	assert.ErrorIs(t, v.ReportLoaded("nope", 1), ErrUnknownDocument)
}

func TestSwitchingRestoresRememberedPages(t *testing.T) {
	s := newTestState(t)
	v, sel := s.Viewer(), s.Selector()
	require.NoError(t, v.ReportLoaded("pdf1", 10))
	require.NoError(t, v.ReportLoaded("pdf2", 10))

	v.GoNext()
	v.GoNext()
	require.Equal(t, 3, v.Current().Page)

	require.NoError(t, sel.Select("pdf2"))
	assert.Equal(t, 1, v.Current().Page)
	v.GoNext()

	for i := 0; i < 5; i++ {
		require.NoError(t, sel.Select("pdf1"))
		assert.Equal(t, 3, v.Current().Page)
		require.NoError(t, sel.Select("pdf2"))
		assert.Equal(t, 2, v.Current().Page)
	}
}

func TestSelectUnknownIsNoop(t *testing.T) {
	s := newTestState(t)
	sel := s.Selector()
	assert.ErrorIs(t, sel.Select("pdf9"), ErrUnknownDocument)
	assert.Equal(t, DocumentID("pdf1"), sel.Active())
	assert.ErrorIs(t, sel.SelectIndex(7), ErrUnknownDocument)
}

func TestCycleWraps(t *testing.T) {
	s := newTestState(t)
	sel := s.Selector()
	assert.Equal(t, DocumentID("pdf2"), sel.Cycle(1))
	assert.Equal(t, DocumentID("pdf1"), sel.Cycle(1))
	assert.Equal(t, DocumentID("pdf2"), sel.Cycle(-1))
}

func TestCitationActivation(t *testing.T) {
	s := newTestState(t)
	nav, sel := s.Navigator(), s.Selector()
	require.NoError(t, s.Viewer().ReportLoaded("pdf1", 10))
	s.Viewer().GoNext()

	ok := nav.Activate(Citation{Source: proxy, Page: 5})
	require.True(t, ok)
	assert.Equal(t, DocumentID("pdf2"), sel.Active())
	page, _ := sel.RememberedPage("pdf2")
	assert.Equal(t, 5, page)
	page, _ = sel.RememberedPage("pdf1")
	assert.Equal(t, 2, page, "other documents keep their page")

	// Base-name fallback.
	require.True(t, nav.Activate(Citation{Source: "data/" + aimDeck, Page: 7}))
	assert.Equal(t, DocumentID("pdf1"), sel.Active())
	assert.Equal(t, 7, s.Viewer().Current().Page)
}

func TestCitationUnknownSourceIsNoop(t *testing.T) {
	s := newTestState(t)
	nav, sel := s.Navigator(), s.Selector()
	require.NoError(t, sel.Select("pdf2"))
	s.Viewer().GoNext()

	for _, c := range []Citation{
		{Source: "annual-report.pdf", Page: 3},
		{Source: "", Page: 3},
		{Source: aimDeck, Page: 0},
	} {
		assert.False(t, nav.Activate(c))
		assert.Equal(t, DocumentID("pdf2"), sel.Active())
		p1, _ := sel.RememberedPage("pdf1")
		p2, _ := sel.RememberedPage("pdf2")
		assert.Equal(t, 1, p1)
		assert.Equal(t, 2, p2)
	}
}

func TestCitationPastLastPageIsPassedThrough(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.Viewer().ReportLoaded("pdf2", 4))
	require.True(t, s.Navigator().Activate(Citation{Source: proxy, Page: 40}))
	assert.Equal(t, 40, s.Viewer().Current().Page)
	assert.False(t, s.Viewer().CanGoNext())
	assert.True(t, s.Viewer().GoPrevious())
}

func TestBeginIgnoresBlankInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		s := newTestState(t)
		q := s.Query()
		_, ok := q.Begin(text)
		assert.False(t, ok)
		assert.False(t, q.Loading())
		assert.Empty(t, q.Err())
		_, has := q.Answer()
		assert.False(t, has)
	}
}

func TestBeginClearsPreviousAnswerAndError(t *testing.T) {
	s := newTestState(t)
	q := s.Query()

	seq, ok := q.Begin("first")
	require.True(t, ok)
	require.True(t, q.Fail(seq, "API Error: Bad Gateway"))
	assert.Equal(t, "API Error: Bad Gateway", q.Err())

	seq, ok = q.Begin("second")
	require.True(t, ok)
	assert.True(t, q.Loading())
	assert.False(t, q.CanSubmit())
	assert.Empty(t, q.Err())
	ans, has := q.Answer()
	require.True(t, has)
	assert.Empty(t, ans.Text)
	assert.Empty(t, ans.Citations)

	_, again := q.Begin("third")
	assert.False(t, again, "send is disabled while loading")

	require.True(t, q.Succeed(seq, Answer{Text: "ok"}))
	assert.True(t, q.CanSubmit())
	ans, _ = q.Answer()
	assert.Equal(t, "ok", ans.Text)
	assert.NotNil(t, ans.Citations)
}

func TestStaleResultsAreDropped(t *testing.T) {
	s := newTestState(t)
	q := s.Query()
	first, _ := q.Begin("one")
	q.Fail(first, "boom")
	second, _ := q.Begin("two")

	assert.False(t, q.Succeed(first, Answer{Text: "late"}))
	assert.True(t, q.Loading())
	assert.True(t, q.Succeed(second, Answer{Text: "fresh"}))
	ans, _ := q.Answer()
	assert.Equal(t, "fresh", ans.Text)
}

func TestFailFallsBackToGenericMessage(t *testing.T) {
	s := newTestState(t)
	q := s.Query()
	seq, _ := q.Begin("why")
	q.Fail(seq, " ")
	assert.Equal(t, "Unknown error occurred", q.Err())
}

func TestDisplayTextUnescapesNewlines(t *testing.T) {
	a := Answer{Text: `Hello\nWorld`}
	assert.Equal(t, "Hello\nWorld", a.DisplayText())
	assert.Equal(t, "a\nb\nc", Answer{Text: `a\r\nb\nc`}.DisplayText())
	assert.Equal(t, "proxy.pdf - Page 5", Citation{Source: "proxy.pdf", Page: 5}.Label())
}
