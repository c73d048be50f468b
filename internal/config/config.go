// Package config resolves citeview settings from defaults, an optional config
// file, a .env file and CITEVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/csheth/citeview/internal/workspace"
)

const envPrefix = "CITEVIEW_"

// Files looked up in the working directory when no explicit path is given.
var defaultFiles = []string{"citeview.yaml", "citeview.yml", "citeview.json"}

// Legacy backend variables, checked in order when backend.url is unset.
var legacyBackendVars = []string{"VITE_BACKEND_URL", "BACKEND_URL"}

// Config holds the effective settings.
type Config struct {
	Documents []Document `koanf:"documents" yaml:"documents" validate:"min=1,dive"`
	Backend   Backend    `koanf:"backend" yaml:"backend"`
	Relay     Relay      `koanf:"relay" yaml:"relay"`
	Log       Log        `koanf:"log" yaml:"log"`
	Cache     Cache      `koanf:"cache" yaml:"cache"`
}

// Document is one catalog entry.
type Document struct {
	ID      string   `koanf:"id" yaml:"id" validate:"required"`
	Title   string   `koanf:"title" yaml:"title"`
	Source  string   `koanf:"source" yaml:"source" validate:"required"`
	Aliases []string `koanf:"aliases" yaml:"aliases,omitempty"`
}

// Backend locates the question-answering service.
type Backend struct {
	URL     string        `koanf:"url" yaml:"url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" validate:"gte=0"`
}

// Relay configures the local forwarding server.
type Relay struct {
	Addr string `koanf:"addr" yaml:"addr" validate:"required"`
}

// Log configures the rotating log file.
type Log struct {
	File  string `koanf:"file" yaml:"file"`
	Level string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Cache configures where downloaded documents are kept.
type Cache struct {
	Dir string `koanf:"dir" yaml:"dir"`
}

// Options controls where Load looks for settings.
type Options struct {
	// Path is an explicit config file; it must exist.
	Path string
	// Dir is searched for citeview.{yaml,yml,json} and .env. Empty means the
	// working directory.
	Dir string
}

// Load layers defaults, file and environment, then validates the result.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(filepath.Join(opts.Dir, ".env")); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	setDefaults(k)

	if err := loadFile(k, opts); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if strings.TrimSpace(k.String("backend.url")) == "" {
		for _, name := range legacyBackendVars {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				_ = k.Set("backend.url", v)
				break
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"documents": []map[string]any{
			{"id": "pdf1", "title": "PDF 1", "source": "assets/2023-conocophillips-aim-presentation.pdf"},
			{"id": "pdf2", "title": "PDF 2", "source": "assets/2024-conocophillips-proxy-statement.pdf"},
		},
		"backend.url":     "",
		"backend.timeout": "0s",
		"relay.addr":      ":8787",
		"log.file":        "citeview.log",
		"log.level":       "info",
		"cache.dir":       "",
	}
	for key, value := range defaults {
		_ = k.Set(key, value)
	}
}

func loadFile(k *koanf.Koanf, opts Options) error {
	if opts.Path != "" {
		parser, err := parserFor(opts.Path)
		if err != nil {
			return err
		}
		if err := k.Load(file.Provider(opts.Path), parser); err != nil {
			return fmt.Errorf("failed to load %s: %w", opts.Path, err)
		}
		return nil
	}
	for _, name := range defaultFiles {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		parser, _ := parserFor(path)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// envKey maps CITEVIEW_BACKEND_URL to backend.url and CITEVIEW_CACHE_DIR to
// cache.dir. Only the first underscore separates section from field.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1), value
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints and catalog uniqueness.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s fails %q", fe.Namespace(), fe.Tag())
		}
		return err
	}
	if _, err := workspace.New(c.Catalog()); err != nil {
		return err
	}
	return nil
}

// Catalog converts the configured documents into workspace documents.
func (c *Config) Catalog() []workspace.Document {
	docs := make([]workspace.Document, 0, len(c.Documents))
	for _, d := range c.Documents {
		title := d.Title
		if title == "" {
			title = d.ID
		}
		docs = append(docs, workspace.Document{
			ID:      workspace.DocumentID(d.ID),
			Title:   title,
			Source:  d.Source,
			Aliases: d.Aliases,
		})
	}
	return docs
}
