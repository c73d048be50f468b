package main

import (
	"fmt"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/citeview/internal/backend"
	"github.com/csheth/citeview/internal/config"
	"github.com/csheth/citeview/internal/docs"
	"github.com/csheth/citeview/internal/logging"
	"github.com/csheth/citeview/internal/tui"
)

var (
	version    = "dev"
	configPath string
	backendURL string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noAltScreen bool
	root := &cobra.Command{
		Use:          "citeview",
		Short:        "Read bundled PDFs and ask questions with page-level citations",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(noAltScreen)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to citeview.yaml or citeview.json")
	root.PersistentFlags().StringVar(&backendURL, "backend-url", "", "override the question-answering backend URL")
	root.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	root.AddCommand(relayCmd())
	root.AddCommand(docsCmd())
	root.AddCommand(configCmd())
	return root
}

// loadConfig resolves settings and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: configPath})
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}
	return cfg, nil
}

func runTUI(noAltScreen bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	library := docs.NewLibrary(docs.Options{CacheDir: cfg.Cache.Dir, Logger: logger})
	model, err := tui.New(tui.Config{
		Documents:    cfg.Catalog(),
		Backend:      backend.New(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}),
		Renderer:     library,
		Logger:       logger,
		BackendLabel: backendLabel(cfg.Backend.URL),
	})
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	logger.Info("starting citeview", zap.String("version", version), zap.Int("documents", len(cfg.Documents)))
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func backendLabel(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return parsed.Host
}
