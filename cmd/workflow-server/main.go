// cmd/workflow-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rentflow/internal/common/config"
	"rentflow/internal/common/database"
	"rentflow/internal/common/logger"
	"rentflow/internal/common/observability"
	"rentflow/internal/facade"
	"rentflow/internal/notify"
	"rentflow/internal/property"
	appregistry "rentflow/internal/registry"
	"rentflow/internal/server"
	"rentflow/internal/tasks"
	"rentflow/internal/workflow"
	stageregistry "rentflow/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting workflow server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stage registry ---
	stages, err := stageregistry.LoadRegistry(cfg.Tasks.RegistryPath)
	if err != nil {
		zapLog.Warn("stage registry load failed, using built-in defaults",
			zap.Error(err), zap.String("path", cfg.Tasks.RegistryPath))
		stages = stageregistry.Defaults()
	}

	// --- Wire components ---
	db := pg.GetDB()
	appStore := appregistry.NewPostgresStore(db, log)
	taskStore := tasks.NewPostgresStore(db)
	convStore := notify.NewPostgresStore(db)
	propStore := property.NewPostgresStore(db, log)

	var echo *notify.Echo
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		echo, err = notify.NewEcho(ctx, cfg.Notifications, db, log)
		if err != nil {
			zapLog.Fatal("notification echo init failed", zap.Error(err))
		}
	}

	engine := workflow.NewEngine(appStore, log)
	coordinator := tasks.NewCoordinator(taskStore, stages, log)
	dispatcher := notify.NewDispatcher(convStore, redisClient.GetClient(), echo, log)

	workflowFacade, err := facade.New(appStore, engine, coordinator, dispatcher, propStore, obs, log)
	if err != nil {
		zapLog.Fatal("facade init failed", zap.Error(err))
	}

	srv := server.New(cfg.Server, workflowFacade, log)

	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Stopped")
}
