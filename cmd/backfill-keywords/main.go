package main

import (
	"context"
	"log"
	"time"

	"github.com/amar-rokto/api/internal/repository"
	"github.com/amar-rokto/api/internal/service"
	"github.com/amar-rokto/api/pkg/config"
	"github.com/amar-rokto/api/pkg/database"
	"github.com/amar-rokto/api/pkg/logger"
)

// One-shot tool that re-derives the denormalized search keyword arrays for
// every blood bank row. Run after bulk imports or keyword rule changes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	bankRepo := repository.NewBankRepository(db)
	bankSvc := service.NewBankService(bankRepo, nil, nil, logr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	updated, err := bankSvc.RebuildKeywords(ctx)
	if err != nil {
		logr.Sugar().Fatalw("keyword backfill failed", "error", err)
	}
	logr.Sugar().Infow("keyword backfill complete", "banks_updated", updated)
}
