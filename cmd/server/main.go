package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantfolio/allocengine/internal/config"
	"github.com/quantfolio/allocengine/internal/database"
	"github.com/quantfolio/allocengine/internal/modules/allocation"
	"github.com/quantfolio/allocengine/internal/modules/cleanup"
	"github.com/quantfolio/allocengine/internal/scheduler"
	"github.com/quantfolio/allocengine/internal/server"
	"github.com/quantfolio/allocengine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.Pretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting allocation engine")

	db, err := database.New(database.Config{Path: cfg.DatabasePath})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	repo := allocation.NewRepository(db, log)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize schema")
		}
	}

	service := allocation.NewService(cfg.EngineConfig(), log)

	sched := scheduler.New(log)
	cleanupJob := cleanup.NewRecommendationCleanupJob(repo, cfg.RetentionDays, log)
	if err := sched.AddJob(cfg.CleanupSchedule, cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DB:        db,
		Service:   service,
		Repo:      repo,
		Scheduler: sched,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Allocation engine stopped")
}
