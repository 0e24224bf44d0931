// Package server wires the WriterLab components together and runs the HTTP
// and gRPC health servers until the context is canceled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/config"
	"github.com/dmitrijs2005/writerlab/internal/server/httpapi"
	"github.com/dmitrijs2005/writerlab/internal/server/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/ratelimit"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/writerlab/internal/server/services"
	"github.com/dmitrijs2005/writerlab/internal/server/session"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/writerlab/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	limiter ratelimit.LoginLimiter
	handler http.Handler
	health  *gs.HealthServer
}

// NewApp connects to the database, applies migrations and builds the
// application. cfg must already be validated.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	app, err := newApp(ctx, cfg, logger, db, m)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*App, error) {
	opts := session.DefaultOptions(cfg.Production)
	opts.MaxAge = cfg.SessionMaxAge

	codec, err := session.NewCodec(cfg.SessionSecrets, opts)
	if err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: logger.With("module", "app"),
		db:     db,
	}

	users := services.NewUserService(db, m, passwords.NewBcrypt(), logger)
	sessions := services.NewSessionManager(codec, users, cfg.StoreTimeout, logger)

	app.limiter = ratelimit.Nop{}
	if cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.limiter = ratelimit.NewRedisLoginLimiter(app.redis, cfg.LoginMaxAttempts, cfg.LoginWindow)
	}

	// An untyped nil keeps BookService's "no presigner" check working.
	var presigner services.Presigner
	if cfg.S3Bucket != "" {
		p, err := services.NewS3Presigner(ctx, services.S3Settings{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Expiry:       cfg.S3PresignExpiry,
		})
		if err != nil {
			app.logger.Warn(ctx, "preview uploads disabled", "error", err)
		} else {
			presigner = p
		}
	}
	books := services.NewBookService(db, m, presigner, logger)

	app.handler = httpapi.NewHandler(users, books, sessions, app.limiter, logger).Router()
	app.health = gs.NewHealthServer(cfg.GRPCHealthAddr, db, cfg.HealthCheckInterval, logger)

	return app, nil
}

// Run serves until ctx is canceled or one of the servers fails, then shuts
// both down and releases the database and Redis connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	run := func(fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			errs <- err
			cancelFunc()
		}
	}

	wg.Add(2)
	go run(app.serveHTTP)
	go run(app.health.Run)
	wg.Wait()
	close(errs)

	var err error
	for e := range errs {
		err = errors.Join(err, e)
	}
	return err
}

func (app *App) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err)
	}
}
