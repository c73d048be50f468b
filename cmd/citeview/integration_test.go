package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/csheth/citeview/internal/pdftest"
	"github.com/csheth/citeview/internal/tuitest"
)

func TestAskAndFollowCitation(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	t.Parallel()

	work := t.TempDir()
	aim := pdftest.Write(t, work, "aim.pdf", []string{"Capital plan overview", "Production outlook"})
	proxy := pdftest.Write(t, work, "proxy.pdf", []string{"Letter to shareholders", "Board nominees table"})

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"response":"Nominees are listed\\nin the proxy.","sources":[{"text":"board","source":"proxy.pdf","page":2}]}`)
	}))
	t.Cleanup(backend.Close)

	cfgPath := filepath.Join(work, "citeview.yaml")
	cfg := fmt.Sprintf(`documents:
  - {id: aim, title: AIM, source: %q}
  - {id: proxy, title: Proxy, source: %q}
backend:
  url: %s
log:
  file: %q
`, aim, proxy, backend.URL, filepath.Join(work, "citeview.log"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	binary := buildBinary(t, moduleDir(t))
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--config", cfgPath},
		Dir:     work,
		Width:   120,
		Height:  32,
		Steps: []tuitest.Step{
			tuitest.Wait(time.Second),
			tuitest.Type("who are the nominees"),
			tuitest.Press(tuitest.KeyEnter),
			tuitest.Wait(time.Second),
			tuitest.Press(tuitest.KeyShiftTab),
			tuitest.Wait(300 * time.Millisecond),
			tuitest.Press(tuitest.KeyEnter),
			tuitest.Wait(time.Second),
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        15 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, want := range []string{
		"AIM",
		"Capital plan overview",
		"Nominees are listed",
		"proxy.pdf - Page 2",
		"Page 2 / 2",
		"Board nominees table",
	} {
		if !rec.Contains(want) {
			t.Fatalf("expected %q on screen\n%s", want, rec.Plain())
		}
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "citeview-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
