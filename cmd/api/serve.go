package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/cache"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/migrations"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Configuration loaded",
		zap.String("mode", cfg.Server.Mode),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	db, err := connection.NewDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.AutoMigrate(ctx, db, log.Logger); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	auditLog, err := audit.New(cfg.Audit)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer auditLog.Close()

	bus := events.NewBus(128, log.Logger.Named("events"))

	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.NewConfigFromEnv(cfg), log.Logger.Named("redis"))
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()

		bus.WithForwarder(redisClient)
		go func() {
			if err := redisClient.RelayEvents(ctx, bus); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event relay stopped", zap.Error(err))
			}
		}()
		log.Info("Redis enabled: response cache, shared rate limits and event relay active")
	}

	router, err := api.NewRouter(api.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Bus:    bus,
		Audit:  auditLog,
		Logger: log.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited properly")
	return nil
}

