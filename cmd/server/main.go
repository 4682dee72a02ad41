package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/api"
	"github.com/sheikh-saqib/contract-payments-engine/internal/billing"
	"github.com/sheikh-saqib/contract-payments-engine/internal/config"
	"github.com/sheikh-saqib/contract-payments-engine/internal/events/kafka"
	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/reporting"
	"github.com/sheikh-saqib/contract-payments-engine/internal/storage/memory"
	"github.com/sheikh-saqib/contract-payments-engine/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg.LogMode)
	defer log.Sync()

	billingStore, reportingStore, cleanup, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}
	defer cleanup()

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewPublisher(cfg.KafkaBrokers)
		defer p.Close()
		publisher = p
		log.Info("kafka publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	billingService := billing.NewService(billingStore, publisher, log)
	reportingService := reporting.NewService(reportingStore)
	server := api.NewServer(billingService, reportingService, billingStore, log)

	log.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
	if err := http.ListenAndServe(":"+cfg.Port, server.Handler()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func openStores(cfg config.Config, log *zap.Logger) (interfaces.BillingStore, interfaces.ReportingStore, func(), error) {
	switch cfg.Store {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil
	default:
		log.Info("using in-memory store; state is not durable")
		store := memory.NewStore()
		return store, store, func() {}, nil
	}
}

func newLogger(mode string) *zap.Logger {
	var log *zap.Logger
	var err error
	switch mode {
	case "prod", "production":
		log, err = zap.NewProduction()
	default:
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}
