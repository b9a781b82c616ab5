package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu-assistant-be/internal/bootstrap"
	"edu-assistant-be/internal/config"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/internal/server"
	"edu-assistant-be/internal/tracer"
	"edu-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.Database.MaxOpenConns
	pool.MaxIdleConns = cfg.Database.MaxIdleConns
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, pool, sysLogger, cfg.Database.LogQueries)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := container.IndexingService.EnsureCollection(startCtx); err != nil {
		sysLogger.Error("MAIN", "Failed to ensure vector collection", map[string]interface{}{"error": err.Error()})
	}
	cancel()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start job consumer: %v", err)
	}
	if container.ActivityService != nil {
		if err := container.ActivityService.Start(ctx); err != nil {
			sysLogger.Warn("MAIN", "Activity log disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		sysLogger.Info("MAIN", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
