package api

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/routes"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/commission"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/timer"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/cache"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const responseCacheTTL = 30 * time.Second

// Deps are the process-wide resources the router is built from.
// Redis is optional; without it caching is off and rate limiting is in-memory.
type Deps struct {
	Config *config.Config
	DB     *connection.Database
	Redis  *cache.RedisClient
	Bus    *events.Bus
	Audit  *audit.Logger
	Logger *zap.Logger
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	log := d.Logger

	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  len(cfg.CORS.AllowedOrigins) == 0,
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     append([]string{middleware.RequestIDHeader}, cfg.CORS.AllowedHeaders...),
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, middleware.CacheHeader, "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/events/ws", "/metrics"})))

	// Repositories
	userRepo := user.NewRepository(d.DB)
	projectRepo := project.NewRepository(d.DB)
	sprintRepo := sprint.NewRepository(d.DB)
	taskRepo := task.NewRepository(d.DB)
	timerRepo := timer.NewRepository(d.DB)
	commissionRepo := commission.NewRepository(d.DB)

	// Services
	userService := user.NewService(userRepo)
	projectService := project.NewService(projectRepo)
	sprintService := sprint.NewService(d.DB, sprintRepo, projectRepo, log.Named("sprint"))
	taskService := task.NewService(d.DB, taskRepo, projectRepo, sprintRepo, userRepo, d.Bus, d.Audit, log.Named("task"))
	timerService := timer.NewService(d.DB, timerRepo, taskRepo, userRepo, d.Bus, d.Audit, log.Named("timer"))
	commissionService := commission.NewService(d.DB, commissionRepo, userRepo, taskRepo, d.Bus, d.Audit,
		log.Named("commission"), cfg.Commission.Location())

	// Handlers
	taskHandler := handlers.NewTaskHandler(taskService, log)
	timerHandler := handlers.NewTimerHandler(timerService, log)
	sprintHandler := handlers.NewSprintHandler(sprintService, log)
	commissionHandler := handlers.NewCommissionHandler(commissionService, log)
	projectHandler := handlers.NewProjectHandler(projectService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	eventHandler := handlers.NewEventHandler(d.Bus, log)

	// Shared middleware
	var (
		store      middleware.ResponseStore
		cacheStats routes.CacheStats
		extra      []gin.HandlerFunc
	)
	if d.Redis != nil {
		store = d.Redis
		cacheStats = d.Redis
	}
	if cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window > 0 {
		var limiter auth.RateLimiter
		if d.Redis != nil {
			limiter = auth.NewRedisRateLimiter(d.Redis.Client(), cfg.RateLimit.Window, int64(cfg.RateLimit.Requests))
		} else {
			limiter = auth.NewMemoryRateLimiter(cfg.RateLimit.Window, int64(cfg.RateLimit.Requests))
		}
		extra = append(extra, middleware.RateLimitMiddleware(limiter, log))
	}
	cacheMiddleware := middleware.NewCacheMiddleware(store, responseCacheTTL, log)
	breaker := middleware.NewCircuitBreaker(middleware.DefaultCircuitBreakerConfig(), log)

	routes.SetupHealthRoutes(router, d.DB, cacheStats)

	apiGroup := routes.NewAPIGroup(router,
		middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, log),
		extra...,
	)

	routes.NewTaskRoutes(taskHandler, timerHandler, breaker).RegisterRoutes(apiGroup, cacheMiddleware)
	routes.NewSprintRoutes(sprintHandler, taskHandler, breaker).RegisterRoutes(apiGroup, cacheMiddleware)
	routes.NewProjectRoutes(projectHandler).RegisterRoutes(apiGroup, cacheMiddleware)
	routes.NewCommissionRoutes(commissionHandler).RegisterRoutes(apiGroup)
	routes.NewUserRoutes(userHandler).RegisterRoutes(apiGroup)
	routes.NewEventRoutes(eventHandler).RegisterRoutes(apiGroup)

	log.Info("Routes registered", zap.Int("count", len(router.Routes())))
	return router, nil
}
