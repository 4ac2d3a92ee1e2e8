// Package server assembles the Anchor backend: it opens the database, wires
// repositories, services and event publishing, and runs the REST and gRPC
// transports until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/anchor/internal/enhance"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/mockai"
	"github.com/dmitrijs2005/anchor/internal/server/config"
	"github.com/dmitrijs2005/anchor/internal/server/events"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/server/rest"
	"github.com/dmitrijs2005/anchor/internal/server/services"
	"github.com/dmitrijs2005/anchor/internal/server/storage"

	gs "github.com/dmitrijs2005/anchor/internal/server/grpc"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher

	userService    *services.UserService
	anchorService  *services.AnchorService
	orderService   *services.OrderService
	enhanceService *services.EnhanceService
}

// NewLogger returns the JSON logger at the configured level; unknown levels
// fall back to info.
func NewLogger(level string) logging.Logger {
	return logging.NewJSONLogger(os.Stdout, logging.ParseLevel(level))
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := NewLogger(c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()

	pub, err := events.New(c.AMQPURL, c.AMQPExchange)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events init error: %w", err)
	}

	var store storage.ImageStore
	if c.S3Bucket != "" {
		s3, err := storage.NewS3Store(ctx, c)
		if err != nil {
			_ = db.Close()
			_ = pub.Close()
			return nil, fmt.Errorf("storage init error: %w", err)
		}
		store = s3
	}

	backend, configured := newBackend(c)
	if !configured {
		logger.Warn(ctx, "no inference token configured, using local tint backend")
	}

	enhanceService := services.NewEnhanceService(backend, store, c.EnhanceTimeout, configured, logger)
	enhanceService.SetStrokeExtraction(c.StrokeMethod)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		repomanager:    rm,
		publisher:      pub,
		userService:    services.NewUserService(db, rm, c),
		anchorService:  services.NewAnchorService(db, rm, pub, logger),
		orderService:   services.NewOrderService(db, rm, pub, logger),
		enhanceService: enhanceService,
	}, nil
}

func newBackend(c *config.Config) (enhance.Backend, bool) {
	if c.ReplicateToken == "" {
		return enhance.TintBackend{}, false
	}
	return enhance.NewReplicateClient(enhance.ReplicateConfig{
		BaseURL: c.ReplicateURL,
		Token:   c.ReplicateToken,
		Timeout: c.EnhanceTimeout,
	}, &http.Client{Timeout: 2 * time.Minute}), true
}

// Migrate applies pending database migrations.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	return nil
}

func (app *App) Close() {
	if err := app.publisher.Close(); err != nil {
		app.logger.Warn(context.Background(), "publisher close", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err.Error())
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.userService, app.anchorService, app.orderService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.HTTPAddr, app.logger, rest.Services{
		Users:    app.userService,
		Anchors:  app.anchorService,
		Orders:   app.orderService,
		Enhance:  app.enhanceService,
		Analyzer: mockai.New(),
	})
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) purgeTokens(ctx context.Context) {
	t := time.NewTicker(tokenPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err.Error())
				continue
			}
			app.logger.Debug(ctx, "purged refresh tokens", "count", n)
		}
	}
}

// Run migrates the database and serves both transports until ctx is
// cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.Migrate(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()
	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
