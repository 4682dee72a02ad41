// Command seed recreates the demo dataset against postgres.
// WARNING: it truncates parties, contracts and jobs first.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/config"
	"github.com/sheikh-saqib/contract-payments-engine/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	if err := store.Seed(ctx); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("database seeded successfully")
}
