package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-dashboard/internal/config"
	"github.com/yukikurage/task-dashboard/internal/constants"
	"github.com/yukikurage/task-dashboard/internal/database"
	"github.com/yukikurage/task-dashboard/internal/handlers"
	"github.com/yukikurage/task-dashboard/internal/logging"
	"github.com/yukikurage/task-dashboard/internal/middleware"
	"github.com/yukikurage/task-dashboard/internal/repository"
	"github.com/yukikurage/task-dashboard/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", gin.ReleaseMode)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.GinMode)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.MigrateDatabase(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedFile != "" {
		result, err := database.SeedFromFile(ctx, db, cfg.SeedFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("failed to seed database")
		}
		logger.Info().Int64("users", result.Users).Int64("tasks", result.Tasks).Msg("seed data loaded")
	}

	// Initialize services
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskService := services.NewTaskService(taskRepo, userRepo)
	userService := services.NewUserService(userRepo)
	views := services.NewViewService(taskService, userService, services.ViewConfig{
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
		IdleTimeout:    cfg.ViewIdleTimeout,
	}, logger)
	if err := views.StartSweeper(cfg.ViewSweepSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to start view sweeper")
	}
	defer views.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session store")
	}
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Dashboard API is running",
			"views":   views.Count(),
		})
	})

	handlers.RegisterRoutes(r, handlers.Services{
		Tasks: taskService,
		Users: userService,
		Views: views,
	})

	// closing the views ends their event streams so Shutdown can drain
	serve(ctx, logger, newServer(cfg.HTTPAddr, r, views.Stop))
}

// newServer builds the HTTP server. onShutdown runs when Shutdown starts;
// request contexts are left alone so in-flight requests complete.
func newServer(addr string, handler http.Handler, onShutdown func()) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(onShutdown)
	return srv
}

// newSessionStore builds the cookie or redis store named in the config
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rs, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // username (empty for default user)
			"",              // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// serve runs srv until ctx is cancelled, then drains open requests
func serve(ctx context.Context, logger zerolog.Logger, srv *http.Server) {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error().Err(err).Msg("server failed")
		}
		return
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
