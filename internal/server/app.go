// Package server wires the flourish server together: database and
// migrations, repositories, handlers, the TCP protocol listener, the gRPC
// health endpoint and the reset token janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/flourish/internal/dbx"
	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/server/auth"
	"github.com/dmitrijs2005/flourish/internal/server/config"
	gs "github.com/dmitrijs2005/flourish/internal/server/grpc"
	"github.com/dmitrijs2005/flourish/internal/server/handlers"
	"github.com/dmitrijs2005/flourish/internal/server/janitor"
	"github.com/dmitrijs2005/flourish/internal/server/mail"
	"github.com/dmitrijs2005/flourish/internal/server/pictures"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/flourish/internal/server/tcp"
	"golang.org/x/sync/errgroup"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	tcp     *tcp.Server
	health  *gs.HealthServer
	janitor *janitor.Janitor
}

// NewApp connects to the database, applies migrations and builds every
// component. The caller must Close the app.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetMaxIdleConns(c.DBMaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	app, err := newApp(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	exec := dbx.NewExecutor(db, "pgx")
	if err := exec.Ping(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	var store pictures.Store
	if c.S3Bucket != "" {
		s3, err := pictures.NewS3Store(ctx, pictures.Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("picture store: %w", err)
		}
		store = s3
	} else {
		logger.Info(ctx, "picture uploads disabled, no S3 bucket configured")
	}

	repos := rm.Bind(exec)
	registry, err := handlers.Build(handlers.Deps{
		Repos:              repos,
		UnitOfWork:         repomanager.NewUnitOfWork(exec, rm),
		Passwords:          hasher,
		Mail:               mail.NewLogSender(logger),
		Pictures:           store,
		Logger:             logger,
		ResetTokenValidity: c.ResetTokenValidityDuration,
		SearchLimit:        c.SearchLimit,
	})
	if err != nil {
		return nil, err
	}

	server := tcp.NewServer(c.EndpointAddrTCP, handlers.NewDispatcher(registry, logger), logger,
		tcp.WithMaxFrameSize(c.MaxFrameSize),
		tcp.WithIdleTimeout(c.IdleTimeout),
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		tcp:     server,
		health:  gs.NewHealthServer(c.EndpointAddrHealth, logger, exec, c.HealthCheckInterval),
		janitor: janitor.New(repos.ResetTokens, c.TokenCleanupInterval, logger),
	}, nil
}

// Run serves until ctx is cancelled, a termination signal arrives or one
// of the components fails. The first component error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.tcp.Run(ctx) })
	g.Go(func() error { return app.health.Run(ctx) })
	g.Go(func() error { return app.janitor.Run(ctx) })

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
