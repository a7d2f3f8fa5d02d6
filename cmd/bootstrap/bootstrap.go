package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vetclinic-portal/config"
	deliveryHttp "vetclinic-portal/internal/delivery/http"
	"vetclinic-portal/internal/delivery/http/handler"
	"vetclinic-portal/internal/delivery/http/middleware"
	"vetclinic-portal/internal/infrastructure/cache"
	"vetclinic-portal/internal/infrastructure/metrics"
	"vetclinic-portal/internal/repository"
	"vetclinic-portal/internal/service"
	"vetclinic-portal/internal/usecase"
	"vetclinic-portal/pkg/jwt"
	"vetclinic-portal/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	Views       usecase.CalendarViewUsecase
	RateLimiter *middleware.RateLimitMiddleware
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	log := setupLogger()
	app.Log = log

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	applyLogLevel(log, cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")

	// Initialize Redis (optional)
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.initializeServer(cfg, log, redisClient, prometheus.DefaultRegisterer)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

func applyLogLevel(log *logrus.Logger, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(parsed)
}

// initializeServer wires every layer and creates the HTTP server
func (app *App) initializeServer(cfg *config.Config, log *logrus.Logger, redisClient *redis.Client, reg prometheus.Registerer) {
	// Initialize metrics
	apiMetrics := metrics.NewAPIMetrics(reg)
	workflowMetrics := metrics.NewWorkflowMetrics(reg)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	client := repository.NewClinicAPIClient(cfg.API, log, apiMetrics)
	calendarRepo := repository.NewCalendarRepository(client)
	petRepo := repository.NewPetRepository(client)
	appointmentRepo := repository.NewAppointmentRepository(client)
	authRepo := repository.NewAuthRepository(client)
	healthRepo := repository.NewHealthRepository(client)

	// Initialize Redis-backed services; without Redis these stay nil
	var (
		rosterCache  usecase.RosterCache
		rosterWiper  usecase.RosterInvalidator
		sessionStore usecase.SessionStore
	)
	if redisClient != nil {
		rosters := service.NewRosterCache(redisClient, cfg.Portal.RosterCacheTTL, log)
		rosterCache = rosters
		rosterWiper = rosters
		sessionStore = service.NewSessionStore(redisClient, log)
	}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, authRepo, jwtService, sessionStore, rosterWiper)
	viewUsecase := usecase.NewCalendarViewUsecase(usecase.WorkflowDeps{
		Calendars:    calendarRepo,
		Pets:         petRepo,
		Appointments: appointmentRepo,
		RosterCache:  rosterCache,
		Log:          log,
		Metrics:      workflowMetrics,
	}, cfg.Portal.ViewIdleTTL)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, appointmentRepo)
	healthUsecase := usecase.NewHealthUsecase(log, healthRepo)
	app.Views = viewUsecase

	// Initialize handlers
	calendarViewHandler := handler.NewCalendarViewHandler(viewUsecase, authUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, authUsecase)
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	healthHandler := handler.NewHealthHandler(healthUsecase)

	// Initialize rate limiter (nil when disabled)
	rateLimiter := middleware.NewRateLimitMiddleware(cfg.RateLimit, log)
	app.RateLimiter = rateLimiter
	if cfg.RateLimit.TrustProxy {
		log.Info("Rate limiter trusts X-Forwarded-For / X-Real-IP")
	}

	// Initialize router
	router := deliveryHttp.NewRouter(deliveryHttp.RouterDeps{
		CalendarViewHandler: calendarViewHandler,
		AppointmentHandler:  appointmentHandler,
		AuthHandler:         authHandler,
		HealthHandler:       healthHandler,
		AuthMiddleware:      middleware.NewAuthMiddleware(authUsecase),
		CORSMiddleware:      middleware.NewCORSMiddleware(cfg.App.CORSOrigins),
		RateLimitMiddleware: rateLimiter,
		LoggingMiddleware:   middleware.NewLoggingMiddleware(log),
	})

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, clinic API: %s", app.Config.App.Env, app.Config.API.BaseURL)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers and closes connections
func (app *App) Close() {
	if app.Views != nil {
		app.Views.Stop()
	}
	app.RateLimiter.Stop()

	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Log.Warnf("Failed to close Redis: %v", err)
		}
	}
}
