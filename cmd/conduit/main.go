package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/config"
	"github.com/siahsang/conduit/internal/core"
	"github.com/siahsang/conduit/internal/database"
	"github.com/siahsang/conduit/internal/filter"
	"github.com/siahsang/conduit/internal/schema"
	"github.com/siahsang/conduit/models"
)

func main() {
	cfg := config.NewConfig()
	logger := configLogger(cfg.Log.Level)
	logger.Info("Starting application...")

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("Application failed", slog.String("stack", xerrors.Sprint(err)))
		os.Exit(1)
	}
}

// run opens the store, creates the schema when missing and seeds a freshly
// created store from the configured fixtures.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Errors closing database connection", slog.String("stack", xerrors.Sprint(err)))
		}
	}()

	materializer := schema.NewMaterializer(db, logger, cfg.Database.QueryTimeout)
	created, err := materializer.Materialize(ctx, schema.Tables(), schema.Relations())
	if err != nil {
		return xerrors.Newf("materialize schema: %w", err)
	}

	conduit := core.NewCore(db, logger, cfg.Database.QueryTimeout)

	if created && cfg.Seed.File != "" {
		fixtures, err := models.LoadFixtures(cfg.Seed.File)
		if err != nil {
			return err
		}
		if err := conduit.Seed(ctx, fixtures); err != nil {
			return xerrors.Newf("seed %s: %w", cfg.Seed.File, err)
		}
		logger.Info("Store seeded", "file", cfg.Seed.File)
	}

	tags, err := conduit.GetTags(ctx)
	if err != nil {
		return err
	}
	feed, err := conduit.GetArticlePreviews(ctx, filter.NewArticleFilter(0, 1))
	if err != nil {
		return err
	}

	logger.Info("Store ready", "fresh", created, "tags", len(tags), "articles", feed.Total)
	return nil
}

func configLogger(level slog.Level) *slog.Logger {
	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     level,
			},
			NewLineAfterLog: false,
		})

	logger := slog.New(handler)
	return logger
}
