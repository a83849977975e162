// Package server wires the API server together: configuration, logging,
// storage and migrations, the signin rate limiter, services, the HTTP server
// and background jobs, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/jobs"
	"github.com/dmitrijs2005/taskkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/rest"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	userService *services.UserService
	taskService *services.TaskService
	purge       jobs.Runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	limiter, err := app.newLimiter()
	if err != nil {
		app.close()
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(c.SecretKey, c.SigningAlgorithm)
	if err != nil {
		app.close()
		return nil, err
	}
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	app.userService = services.NewUserService(db, rm, hasher, tokens, limiter, c.TokenTTL)
	app.taskService = services.NewTaskService(db, rm)

	if c.RedisURL != "" {
		m, err := jobs.NewManager(c.RedisURL, c.SessionPurgeInterval, app.userService, logger)
		if err != nil {
			app.close()
			return nil, err
		}
		app.purge = m
	} else {
		app.purge = jobs.NewTicker(c.SessionPurgeInterval, app.userService, logger)
	}

	return app, nil
}

func (app *App) newLimiter() (ratelimit.Limiter, error) {
	settings := ratelimit.Settings{MaxAttempts: app.config.RateLimitMaxAttempts, Window: app.config.RateLimitWindow}

	if app.config.RateLimitBackend != config.BackendRedis {
		return ratelimit.NewMemoryLimiter(settings), nil
	}

	opt, err := redis.ParseURL(app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	app.redis = redis.NewClient(opt)
	return ratelimit.NewRedisLimiter(app.redis, settings), nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := rest.NewHTTPServer(app.config.HTTPAddr, app.logger, app.userService, app.taskService, rest.Options{
		AllowedOrigins: app.config.AllowedOrigins,
		CookieName:     app.config.SessionCookieName,
		CookieSecure:   app.config.CookieSecure,
		Ready:          app.db,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startJobs(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.purge.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a component fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startJobs(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(ctx, "App stopped")
}
