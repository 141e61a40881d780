// Package server wires the storefront together: it opens the store, runs
// migrations and seeding, and serves HTTP and gRPC health until a shutdown
// signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/auth"
	"github.com/gogamastore/storefront/internal/server/config"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
	"github.com/gogamastore/storefront/internal/server/rest"
	"github.com/gogamastore/storefront/internal/server/services"
	"github.com/gogamastore/storefront/internal/server/storage"

	gs "github.com/gogamastore/storefront/internal/server/grpc"
)

const closeTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	http   *rest.HTTPServer
	grpc   *gs.GRPCServer
}

var openRepositories = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.NewLogger(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, repos)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repos repomanager.RepositoryManager) (*App, error) {
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	if c.SeedSampleData {
		if err := services.NewSeeder(repos, logger).Seed(ctx); err != nil {
			return nil, err
		}
	}

	images, err := storage.NewImageResolver(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("image storage init error: %w", err)
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	app := &App{config: c, logger: logger, repos: repos}
	app.http = rest.NewHTTPServer(c.EndpointAddrHTTP, rest.Deps{
		Users:          services.NewUserService(repos, issuer, logger),
		Catalog:        services.NewCatalogService(repos),
		Carts:          services.NewCartService(repos, logger),
		Profiles:       services.NewProfileService(repos),
		Store:          repos,
		Images:         images,
		Logger:         logger,
		AllowedOrigins: c.CORSAllowedOrigins,
	})
	if c.EndpointAddrGRPC != "" {
		app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, repos)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives, ctx is cancelled or a server fails.
// The store is closed before Run returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		runErrs []error
	)
	serve := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped", "server", name, "error", err)
				errMu.Lock()
				runErrs = append(runErrs, fmt.Errorf("%s: %w", name, err))
				errMu.Unlock()
				cancelFunc()
			}
		}()
	}

	serve("http", app.http.Run)
	if app.grpc != nil {
		serve("grpc", app.grpc.Run)
	}
	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		runErrs = append(runErrs, fmt.Errorf("close store: %w", err))
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(runErrs...)
}
