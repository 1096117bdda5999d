package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/repositories"
	"github.com/anonto42/tooth-fae/backend/internal/sanitizer"
	"github.com/anonto42/tooth-fae/backend/internal/scraper"
	"github.com/anonto42/tooth-fae/backend/pkg/config"
	"github.com/anonto42/tooth-fae/backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()
	log := logger.New("tooth-fae-scraper", cfg.LogLevel, cfg.Env)

	root := &cobra.Command{
		Use:           "scraper",
		Short:         "Fetch and sanitize third-party game pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFetchCommand(cfg, log), newSanitizeCommand())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("scraper failed")
	}
}

func newFetchCommand(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	var (
		slug     string
		outDir   string
		selector string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Scrape one game page into a content artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout+10*time.Second)
			defer cancel()

			s := scraper.New(scraper.Options{ContentSelector: selector, Timeout: timeout}, log)
			content, _, err := s.Fetch(ctx, args[0], slug)
			if err != nil {
				return err
			}

			contentRepo := repositories.NewFileGameContentRepository(outDir)
			if err := contentRepo.SaveContent(ctx, content); err != nil {
				return fmt.Errorf("save %s: %w", content.Slug, err)
			}
			log.Info().Str("slug", content.Slug).Str("dir", outDir).Msg("content artifact written")

			if cfg.PostgresUrl == "" {
				return nil
			}
			db, err := config.InitDB(&config.Config{PostgresUrl: cfg.PostgresUrl}, log)
			if err != nil {
				return err
			}
			defer db.CloseDB(log)

			catalog := repositories.NewGormGameCatalogRepository(db.Postgres)
			if err := catalog.Migrate(); err != nil {
				return err
			}
			if err := catalog.UpsertGame(ctx, content.Listing()); err != nil {
				return fmt.Errorf("upsert listing %s: %w", content.Slug, err)
			}
			log.Info().Str("slug", content.Slug).Msg("catalog listing upserted")
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "slug for the artifact (derived from the URL when empty)")
	cmd.Flags().StringVar(&outDir, "out", cfg.ContentDir, "directory receiving <slug>.json")
	cmd.Flags().StringVar(&selector, "selector", scraper.DefaultContentSelector, "CSS selector of the game container")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

func newSanitizeCommand() *cobra.Command {
	var cleanOnly bool

	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Sanitize HTML read from stdin and write the result to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := sanitizer.Sanitize(string(raw))
			if cleanOnly {
				out = sanitizer.Clean(string(raw))
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&cleanOnly, "clean-only", false, "skip extraction and print the whole cleaned document")
	return cmd
}
