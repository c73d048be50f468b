package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/citeview/internal/config"
	"github.com/csheth/citeview/internal/docs"
)

const docsCheckTimeout = 2 * time.Minute

func docsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List the document catalog and check that every PDF opens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			library := docs.NewLibrary(docs.Options{CacheDir: cfg.Cache.Dir})
			ctx, cancel := context.WithTimeout(cmd.Context(), docsCheckTimeout)
			defer cancel()
			if failed := checkDocuments(ctx, cmd.OutOrStdout(), library, cfg.Documents); failed > 0 {
				return fmt.Errorf("%d of %d documents failed to load", failed, len(cfg.Documents))
			}
			return nil
		},
	}
}

func checkDocuments(ctx context.Context, out io.Writer, renderer docs.Renderer, documents []config.Document) int {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	failed := 0
	for _, doc := range documents {
		pages, err := renderer.Load(ctx, doc.Source)
		if err != nil {
			failed++
			fmt.Fprintf(out, "  %s %-8s %s\n      %s\n", bad("[FAIL]"), doc.ID, doc.Source, bad(err.Error()))
			continue
		}
		fmt.Fprintf(out, "  %s %-8s %s %s\n", ok("[ OK ]"), doc.ID, doc.Source, dim(fmt.Sprintf("(%d pages)", pages)))
	}
	return failed
}
