package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/citeview/internal/backend"
	"github.com/csheth/citeview/internal/docs"
	"github.com/csheth/citeview/internal/workspace"
)

const loadTimeout = 2 * time.Minute

// Asker sends a question to the answering backend.
type Asker interface {
	Ask(ctx context.Context, query string) backend.Result
}

func loadDocumentJob(renderer docs.Renderer, id workspace.DocumentID, source string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()
		pages, err := renderer.Load(ctx, source)
		return docLoadedMsg{id: id, pages: pages, err: err}, err
	}
}

func renderPageJob(renderer docs.Renderer, key pageKey) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		text, err := renderer.RenderPage(key.source, key.page, key.width)
		return pageRenderedMsg{key: key, text: text, err: err}, err
	}
}

func queryJob(asker Asker, seq uint64, query string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		var result backend.Result
		if asker == nil {
			result = backend.Result{Kind: backend.KindConfigError}
		} else {
			result = asker.Ask(ctx, query)
		}
		msg := queryResultMsg{seq: seq, query: query, result: result}
		if !result.OK() {
			return msg, errors.New(result.Message())
		}
		return msg, nil
	}
}
