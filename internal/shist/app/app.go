package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/shist-app/shist/internal/shist/http"
	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/internal/shist/store/drivers/sqlite"
	"github.com/shist-app/shist/internal/shist/ws"
	"github.com/shist-app/shist/pkg/idemx"
	"github.com/shist-app/shist/pkg/invitex"
	"github.com/shist-app/shist/pkg/jwtx"
	"github.com/shist-app/shist/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the Shist service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	jwt   *jwtx.HS256
	codec *invitex.Codec
	idem  *idemx.Store
	hub   *ws.Hub

	accessService       *service.AccessService
	userService         *service.UserService
	listService         *service.ListService
	itemService         *service.ItemService
	invitationService   *service.InvitationService
	connectionService   *service.ConnectionService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "shist",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	secret := []byte(cfg.TokenSecret)
	app.jwt = jwtx.NewHS256(secret, cfg.Issuer)
	app.codec = invitex.NewCodec(secret)
	app.idem = idemx.New(idemx.DefaultTTL)
	app.hub = ws.NewHub()

	app.initServices()
	app.initHTTP()

	// The router created the per-route limiters; housekeeping sweeps them.
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		cfg.HousekeepingInterval,
		app.idem,
		app.router.Limiters()...,
	)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("shist service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down shist service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("shist service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.accessService = &service.AccessService{Store: app.db}
	app.userService = &service.UserService{
		Store:      app.db,
		Signer:     app.jwt,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}
	app.listService = &service.ListService{Store: app.db, Access: app.accessService}
	app.itemService = &service.ItemService{Store: app.db, Access: app.accessService, Hub: app.hub}
	app.invitationService = &service.InvitationService{
		Store:  app.db,
		Access: app.accessService,
		Codec:  app.codec,
		Idem:   app.idem,
		TTL:    app.cfg.InvitationTTL,
	}
	app.connectionService = &service.ConnectionService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.jwt, BuildVersion, app.db, app.logger)

	router.AccessService = app.accessService
	router.UserService = app.userService
	router.ListService = app.listService
	router.ItemService = app.itemService
	router.InvitationService = app.invitationService
	router.ConnectionService = app.connectionService
	router.WS = &httpapi.WSHandler{Hub: app.hub, AccessService: app.accessService}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
