// Package server wires the configuration, storage, services and transports
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/logging"
	"github.com/dmitrijs2005/savethatagain/internal/server/auth"
	"github.com/dmitrijs2005/savethatagain/internal/server/blob"
	"github.com/dmitrijs2005/savethatagain/internal/server/config"
	"github.com/dmitrijs2005/savethatagain/internal/server/events"
	"github.com/dmitrijs2005/savethatagain/internal/server/metrics"
	"github.com/dmitrijs2005/savethatagain/internal/server/ratelimit"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/savethatagain/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	gs "github.com/dmitrijs2005/savethatagain/internal/server/grpc"
	hs "github.com/dmitrijs2005/savethatagain/internal/server/http"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	events  events.Publisher
	janitor *services.Janitor
	health  *services.HealthService
	router  *gin.Engine
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, os.Stdout)
	if err != nil {
		return nil, err
	}
	if c.UsesPlaceholderSecret() {
		logger.Warn(ctx, "JWT secret is the development placeholder; set JWT_SECRET in production")
	}

	app := &App{config: c, logger: logger}
	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return err
	}

	store, err := blob.NewS3Store(ctx, c)
	if err != nil {
		return fmt.Errorf("blob store init error: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	if c.RedisAddr != "" {
		rc, err := ratelimit.NewRedisClient(ctx, c.RedisAddr)
		if err != nil {
			return err
		}
		app.redis = rc
		limiter = ratelimit.NewRedisLimiter(rc, c.AuthAttemptsPerMinute, time.Minute)
	}

	app.events = events.NewNoop()
	if c.AMQPURL != "" {
		p, err := events.NewRabbit(c.AMQPURL, c.EventsExchange)
		if err != nil {
			return err
		}
		app.events = p
	}

	google, err := auth.NewIDTokenVerifier(ctx, c.GoogleClientID)
	if err != nil {
		return fmt.Errorf("google verifier init error: %w", err)
	}
	if c.GoogleClientID == "" {
		app.logger.Warn(ctx, "GOOGLE_CLIENT_ID is not set; Google sign-in will reject every token")
	}

	m := metrics.New()
	d := services.Deps{
		DB:      db,
		Tx:      dbx.NewSQLTransactor(db),
		Repos:   repos,
		Blobs:   store,
		Events:  app.events,
		Logger:  app.logger.With("module", "services"),
		Metrics: m,
	}

	authSvc := services.NewAuthService(d, auth.NewTokenCodec(c.SecretKey, c.TokenValidityDuration), google)
	accounts := services.NewAccountService(d, c.DeletionGracePeriod)
	clips := services.NewClipService(d)
	app.health = services.NewHealthService(d, db)
	app.janitor = services.NewJanitor(d, accounts, c.SweepInterval)

	gin.SetMode(gin.ReleaseMode)
	h := hs.NewHandler(authSvc, accounts, clips, app.health, hs.Options{
		Limiter:        limiter,
		Logger:         app.logger,
		MaxUploadBytes: c.MaxUploadBytes,
	})
	app.router = hs.NewRouter(h, m)
	return nil
}

func (app *App) close(ctx context.Context) {
	if app.events != nil {
		if err := app.events.Close(); err != nil {
			app.logger.Warn(ctx, "events close", "error", err)
		}
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP and gRPC and runs the janitor until a signal arrives or a
// server fails, then shuts everything down.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	app.janitor.ReportHealth(grpcServer, app.health.Healthy)
	httpServer := hs.NewServer(app.config.EndpointAddrHTTP, app.router, app.logger)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	wg.Wait()
	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
