package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"contractor-payments/internal/config"
	"contractor-payments/internal/repository"
	"contractor-payments/internal/seed"

	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if err := repository.Migrate(ctx, db, logger); err != nil {
		return err
	}

	store := repository.NewStore(db, logger)
	return store.WithTransaction(ctx, func(tx *repository.Store) error {
		return seed.Apply(ctx, tx, seed.Demo(), logger)
	})
}
