// Package docs loads the bundled PDF documents and renders single pages as
// wrapped plain text for the terminal viewer.
package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/muesli/reflow/wordwrap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	// ErrNotLoaded is returned when a page is requested before Load succeeded.
	ErrNotLoaded = errors.New("document not loaded")
	// ErrPageOutOfRange is returned for pages outside 1..page count.
	ErrPageOutOfRange = errors.New("page out of range")

	extraneousWhitespace = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines           = regexp.MustCompile(`\n{3,}`)
)

const (
	defaultPageTTL = 30 * time.Minute
	minRenderWidth = 20
	emptyPageText  = "(no extractable text on this page)"
)

// Renderer is the capability the viewer needs from a PDF engine.
type Renderer interface {
	Load(ctx context.Context, source string) (int, error)
	RenderPage(source string, page, width int) (string, error)
}

// Options configures a Library.
type Options struct {
	CacheDir   string
	HTTPClient *http.Client
	PageTTL    time.Duration
	Logger     *zap.Logger
}

// Library keeps parsed documents in memory, keyed by source locator.
type Library struct {
	mu     sync.Mutex
	docs   map[string]*pdf.Reader
	pages  *cache.Cache
	mirror *mirror
	logger *zap.Logger
}

// NewLibrary returns an empty Library. Remote sources are mirrored into
// opts.CacheDir on first load.
func NewLibrary(opts Options) *Library {
	ttl := opts.PageTTL
	if ttl <= 0 {
		ttl = defaultPageTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("docs")
	return &Library{
		docs:   map[string]*pdf.Reader{},
		pages:  cache.New(ttl, 2*ttl),
		mirror: newMirror(opts.CacheDir, opts.HTTPClient, logger),
		logger: logger,
	}
}

// Load parses source and returns its page count. Loading an already loaded
// source is free.
func (l *Library) Load(ctx context.Context, source string) (int, error) {
	l.mu.Lock()
	if reader, ok := l.docs[source]; ok {
		l.mu.Unlock()
		return reader.NumPage(), nil
	}
	l.mu.Unlock()

	path := source
	if isRemote(source) {
		fetched, err := l.mirror.Path(ctx, source)
		if err != nil {
			return 0, fmt.Errorf("download %s: %w", source, err)
		}
		path = fetched
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", source, err)
	}
	reader, err := parse(data)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf %s: %w", source, err)
	}
	pages := reader.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("pdf %s has no pages", source)
	}

	l.mu.Lock()
	l.docs[source] = reader
	l.mu.Unlock()
	l.logger.Info("document loaded", zap.String("source", source), zap.Int("pages", pages))
	return pages, nil
}

// PageCount returns the page count of a loaded source.
func (l *Library) PageCount(source string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	reader, ok := l.docs[source]
	if !ok {
		return 0, ErrNotLoaded
	}
	return reader.NumPage(), nil
}

// RenderPage extracts the text of page (1-based) and wraps it to width.
func (l *Library) RenderPage(source string, page, width int) (string, error) {
	if width < minRenderWidth {
		width = minRenderWidth
	}
	key := fmt.Sprintf("%s#%d@%d", source, page, width)
	if cached, ok := l.pages.Get(key); ok {
		return cached.(string), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	reader, ok := l.docs[source]
	if !ok {
		return "", ErrNotLoaded
	}
	total := reader.NumPage()
	if page < 1 || page > total {
		return "", fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, total)
	}
	text, err := pageText(reader, page)
	if err != nil {
		l.logger.Warn("page extraction failed", zap.String("source", source), zap.Int("page", page), zap.Error(err))
		return "", fmt.Errorf("failed to extract page %d: %w", page, err)
	}
	rendered := wordwrap.String(normalizeText(text), width)
	l.pages.Set(key, rendered, cache.DefaultExpiration)
	return rendered, nil
}

func parse(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageText(reader *pdf.Reader, number int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page: %v", r)
		}
	}()
	page := reader.Page(number)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = extraneousWhitespace.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyPageText
	}
	return text
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
