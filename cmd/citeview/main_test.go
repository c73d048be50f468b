package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/citeview/internal/config"
	"github.com/csheth/citeview/internal/docs"
	"github.com/csheth/citeview/internal/pdftest"
)

func TestConfigCommandPrintsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "citeview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  addr: \":9191\"\n"), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--config", path, "--backend-url", "http://flag-backend"})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, ":9191")
	assert.Contains(t, text, "http://flag-backend")
	assert.Contains(t, text, "id: pdf1")
}

func TestCheckDocumentsReportsEachDocument(t *testing.T) {
	dir := t.TempDir()
	good := pdftest.Write(t, dir, "good.pdf", []string{"one", "two"})
	library := docs.NewLibrary(docs.Options{CacheDir: t.TempDir()})

	var out bytes.Buffer
	failed := checkDocuments(context.Background(), &out, library, []config.Document{
		{ID: "good", Source: good},
		{ID: "missing", Source: filepath.Join(dir, "missing.pdf")},
	})

	assert.Equal(t, 1, failed)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "good")
	assert.Contains(t, lines[0], "(2 pages)")
	assert.Contains(t, out.String(), "[FAIL]")
}

func TestBackendLabel(t *testing.T) {
	assert.Equal(t, "", backendLabel(""))
	assert.Equal(t, "backend:8000", backendLabel("http://backend:8000/api"))
	assert.Equal(t, "not a url", backendLabel("not a url"))
}
