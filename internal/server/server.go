package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/biztools-dev/biztools/internal/access"
	"github.com/biztools-dev/biztools/internal/ai"
	"github.com/biztools-dev/biztools/internal/circuitbreaker"
	"github.com/biztools-dev/biztools/internal/config"
	"github.com/biztools-dev/biztools/internal/handler"
	"github.com/biztools-dev/biztools/internal/middleware"
	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/ratelimit"
	"github.com/biztools-dev/biztools/internal/repository"
	"github.com/biztools-dev/biztools/internal/service"
	"github.com/biztools-dev/biztools/internal/storage"
	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
	"github.com/biztools-dev/biztools/internal/tools/content"
	"github.com/biztools-dev/biztools/internal/tools/financial"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	redis    *storage.RedisClient
	postgres *storage.Postgres

	registry *tools.Registry
	counters ratelimit.CounterStore
	breaker  *circuitbreaker.Breaker

	authService      *service.AuthService
	apiKeyService    *service.APIKeyService
	analyticsService *service.AnalyticsService
	usageLogger      *middleware.UsageLogger

	authHandler      *handler.AuthHandler
	apiKeyHandler    *handler.APIKeyHandler
	usersHandler     *handler.UsersHandler
	toolsHandler     *handler.ToolsHandler
	analyticsHandler *handler.AnalyticsHandler
	statusHandler    *handler.StatusHandler

	httpServer  *http.Server
	stopCleanup chan struct{}
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Repositories
	userRepo := repository.NewUserRepository(postgres)
	apiKeyRepo := repository.NewAPIKeyRepository(postgres)
	calcRepo := repository.NewCalculationRepository(postgres)
	usageRepo := repository.NewUsageLogRepository(postgres)

	// Services
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	apiKeyService := service.NewAPIKeyService(postgres, apiKeyRepo, redis)
	tierService := service.NewTierService(userRepo, apiKeyRepo, redis)
	analyticsService := service.NewAnalyticsService(usageRepo, calcRepo)

	// Access engine over the configured counter backend
	var counters ratelimit.CounterStore
	switch cfg.RateLimit.Store {
	case "postgres":
		counters = ratelimit.NewGormStore(postgres)
	default:
		counters = ratelimit.NewRedisStore(redis)
	}
	engine := access.NewEngine(tierService, counters, policyFromConfig(cfg))

	// AI routing behind a circuit breaker
	breaker := circuitbreaker.New(5, 30*time.Second)
	aiRouter := ai.NewRouter(&cfg.AI, breaker)

	// Tool catalog
	registry := tools.NewRegistry()
	registry.MustRegister(financial.NewROICalculator())
	registry.MustRegister(financial.NewBreakEvenCalculator())
	registry.MustRegister(content.NewProposalGenerator())
	registry.MustRegister(content.NewTaglineWriter())

	usageLogger := middleware.NewUsageLogger(usageRepo, 1000)
	pipeline := tools.NewPipeline(engine, aiRouter, calcRepo, asyncUsageStore{usageLogger})

	s := &Server{
		router:   router,
		config:   cfg,
		redis:    redis,
		postgres: postgres,

		registry: registry,
		counters: counters,
		breaker:  breaker,

		authService:      authService,
		apiKeyService:    apiKeyService,
		analyticsService: analyticsService,
		usageLogger:      usageLogger,

		authHandler:      handler.NewAuthHandler(authService),
		apiKeyHandler:    handler.NewAPIKeyHandler(apiKeyService, tierService),
		usersHandler:     handler.NewUsersHandler(authService, tierService),
		toolsHandler:     handler.NewToolsHandler(registry, pipeline),
		analyticsHandler: handler.NewAnalyticsHandler(analyticsService),
		statusHandler:    handler.NewStatusHandler(registry, breaker, apiKeyService, cfg.AI.Provider),

		stopCleanup: make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.startCleanupSweep()

	return s
}

// asyncUsageStore adapts the batched usage logger to the pipeline's
// synchronous store interface.
type asyncUsageStore struct {
	logger *middleware.UsageLogger
}

func (s asyncUsageStore) Log(_ context.Context, entry *models.UsageLog) error {
	s.logger.Record(*entry)
	return nil
}

// policyFromConfig builds the catalog-wide rate policy from config, falling
// back to the built-in defaults when the config names no tiers.
func policyFromConfig(cfg *config.Config) access.Policy {
	if len(cfg.RateLimit.Tiers) == 0 {
		return access.DefaultPolicy()
	}

	policy := make(access.Policy)
	for tierName, periods := range cfg.RateLimit.Tiers {
		t, err := tier.Parse(tierName)
		if err != nil {
			log.Printf("config: skipping unknown tier %q in rate limits", tierName)
			continue
		}
		policy[t] = make(map[ratelimit.Period]int)
		for periodName, quota := range periods {
			p, err := ratelimit.ParsePeriod(periodName)
			if err != nil {
				log.Printf("config: skipping unknown period %q in rate limits", periodName)
				continue
			}
			policy[t][p] = quota
		}
	}

	if len(policy) == 0 {
		return access.DefaultPolicy()
	}
	return policy
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.APIKeyValidator(s.apiKeyService))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.authHandler.Register)
		auth.POST("/login", s.authHandler.Login)
	}

	api := s.router.Group("/api/v1", middleware.OptionalAuth(s.authService))
	{
		api.GET("/tools", s.toolsHandler.List)
		api.GET("/tools/:slug", middleware.TrackViews(s.usageLogger), s.toolsHandler.Get)
		api.GET("/tools/:slug/remaining", s.toolsHandler.Remaining)
		api.POST("/tools/:slug/invoke", s.toolsHandler.Invoke)
	}

	admin := s.router.Group("/admin", middleware.RequireAuth(s.authService))
	{
		admin.GET("/status", s.statusHandler.Status)
		admin.POST("/status/circuit/reset", s.statusHandler.ResetCircuit)

		admin.POST("/keys", s.apiKeyHandler.Create)
		admin.GET("/keys", s.apiKeyHandler.List)
		admin.GET("/keys/:id", s.apiKeyHandler.Get)
		admin.PATCH("/keys/:id", s.apiKeyHandler.Update)
		admin.DELETE("/keys/:id", s.apiKeyHandler.Delete)

		admin.GET("/users", s.usersHandler.List)
		admin.PATCH("/users/:id/tier", s.usersHandler.UpdateTier)

		admin.GET("/analytics/summary", s.analyticsHandler.GetSummary)
		admin.GET("/analytics/daily", s.analyticsHandler.GetDailySeries)
		admin.GET("/analytics/tools/:slug", s.analyticsHandler.GetToolStats)
	}
}

// startCleanupSweep periodically deletes expired counters and enforces the
// analytics retention window. Redis expires its own keys, so the counter
// sweep only matters for the Postgres backend, but running it is harmless
// either way.
func (s *Server) startCleanupSweep() {
	interval := time.Duration(s.config.RateLimit.CleanupIntervalMinutes) * time.Minute

	go func() {
		counterTicker := time.NewTicker(interval)
		defer counterTicker.Stop()

		retentionTicker := time.NewTicker(24 * time.Hour)
		defer retentionTicker.Stop()

		for {
			select {
			case <-counterTicker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				deleted, err := s.counters.Cleanup(ctx, time.Now())
				cancel()
				if err != nil {
					log.Printf("counter cleanup failed: %v", err)
				} else if deleted > 0 {
					log.Printf("counter cleanup removed %d expired rows", deleted)
				}
			case <-retentionTicker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				deleted, err := s.analyticsService.CleanupOldLogs(ctx, s.config.Analytics.RetentionDays)
				cancel()
				if err != nil {
					log.Printf("retention sweep failed: %v", err)
				} else if deleted > 0 {
					log.Printf("retention sweep removed %d rows older than %d days", deleted, s.config.Analytics.RetentionDays)
				}
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK

	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "biztools",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting biztools API on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)
	log.Printf("Registered tools: %d", s.registry.Len())

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	close(s.stopCleanup)

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Flush queued usage events after in-flight requests finish.
	s.usageLogger.Close()

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
