package docs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	mirrorSubdir   = "citeview/pdfs"
	mirrorTTL      = 24 * time.Hour
	mirrorTimeout  = 90 * time.Second
	maxFailureBody = 512
)

// mirror keeps local copies of catalog documents whose source is an http(s)
// URL, so a hosted catalog opens offline after the first run.
type mirror struct {
	root   string
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// validators are the response headers needed for a conditional refresh,
// stored next to the mirrored file.
type validators struct {
	Source       string    `json:"source"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func (v validators) apply(h http.Header) {
	if v.ETag != "" {
		h.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		h.Set("If-Modified-Since", v.LastModified)
	}
}

type mirrorEntry struct {
	file    string
	sidecar string
	size    int64
	seen    validators
}

func (e mirrorEntry) present() bool { return e.size > 0 }

func (e mirrorEntry) fresh(now time.Time) bool {
	return e.present() && !e.seen.FetchedAt.IsZero() && now.Sub(e.seen.FetchedAt) < mirrorTTL
}

func newMirror(root string, client *http.Client, logger *zap.Logger) *mirror {
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		root = filepath.Join(base, mirrorSubdir)
	}
	if client == nil {
		client = &http.Client{Timeout: mirrorTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mirror{root: root, client: client, logger: logger, now: time.Now}
}

// Path returns a local file for source. A copy fetched within mirrorTTL is
// used as is; an older one is revalidated, and kept when the server cannot
// be reached.
func (m *mirror) Path(ctx context.Context, source string) (string, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return "", err
	}
	entry := m.lookup(source)
	if entry.fresh(m.now()) {
		return entry.file, nil
	}

	err := m.refresh(ctx, source, entry)
	switch {
	case err == nil:
		return entry.file, nil
	case entry.present():
		m.logger.Warn("serving stale mirror copy", zap.String("source", source), zap.Error(err))
		return entry.file, nil
	default:
		return "", err
	}
}

func (m *mirror) lookup(source string) mirrorEntry {
	sum := sha256.Sum256([]byte(source))
	name := hex.EncodeToString(sum[:6]) + "-" + sanitizeName(path.Base(source))
	entry := mirrorEntry{
		file:    filepath.Join(m.root, name),
		sidecar: filepath.Join(m.root, name+".json"),
	}
	if info, err := os.Stat(entry.file); err == nil {
		entry.size = info.Size()
	}
	if data, err := os.ReadFile(entry.sidecar); err == nil {
		_ = json.Unmarshal(data, &entry.seen)
	}
	return entry
}

func (m *mirror) refresh(ctx context.Context, source string, entry mirrorEntry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return err
	}
	if entry.present() {
		entry.seen.apply(req.Header)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && entry.present():
		entry.seen.FetchedAt = m.now().UTC()
		m.logger.Debug("mirror copy still current", zap.String("source", source))
		return m.writeSidecar(entry.sidecar, entry.seen)
	case resp.StatusCode == http.StatusOK:
		size, err := m.replace(entry.file, resp.Body)
		if err != nil {
			return err
		}
		m.logger.Info("mirrored document", zap.String("source", source), zap.Int64("bytes", size))
		return m.writeSidecar(entry.sidecar, validators{
			Source:       source,
			ETag:         resp.Header.Get("Etag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    m.now().UTC(),
		})
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxFailureBody))
		return fmt.Errorf("fetch %s: %s (%s)", source, resp.Status, strings.TrimSpace(string(snippet)))
	}
}

// replace streams body into a temp file in the mirror and renames it over
// target, so readers never see a partial document.
func (m *mirror) replace(target string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(m.root, ".incoming-*")
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	return size, os.Rename(tmp.Name(), target)
}

func (m *mirror) writeSidecar(name string, seen validators) error {
	data, err := json.Marshal(seen)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "_" {
		return "document.pdf"
	}
	return name
}
