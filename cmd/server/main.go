package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glowdesk/salon_backend/internal/app"
	"github.com/glowdesk/salon_backend/internal/config"
	"github.com/glowdesk/salon_backend/internal/controller/rest"
	"github.com/glowdesk/salon_backend/internal/repository"
	"github.com/glowdesk/salon_backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	staffRepo := repository.NewStaffRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	locker := repository.NewStaffDayLocker(pool)

	allocService := service.NewAllocationService(staffRepo, serviceRepo, scheduleRepo, bookingRepo, locker, logger)
	bookingService := service.NewBookingService(bookingRepo, serviceRepo, logger)
	rosterService := service.NewRosterService(staffRepo, scheduleRepo, bookingRepo, nil, logger)
	utilService := service.NewUtilizationService(staffRepo, scheduleRepo, bookingRepo, logger)

	sweeper := app.NewSweeper(bookingService, 15*time.Minute, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := rest.NewServer(cfg.HTTPAddr, allocService, bookingService, rosterService, utilService, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Salon backend started",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
