// Package app assembles the service: configuration, logging, storage,
// sessions, the provider client and the HTTP server, with explicit
// dependency injection throughout.
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

	"github.com/redis/go-redis/v9"

	"github.com/copperline/gatehouse/internal/auth/audit"
	httpapi "github.com/copperline/gatehouse/internal/auth/http"
	"github.com/copperline/gatehouse/internal/auth/mail"
	"github.com/copperline/gatehouse/internal/auth/service"
	"github.com/copperline/gatehouse/internal/auth/session"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/copperline/gatehouse/pkg/cryptox"
	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/copperline/gatehouse/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	redis    *redis.Client
	sessions *session.Store
	provider *oauthx.Client

	authService      *service.AuthService
	twoFactorService *service.TwoFactorService
	rolesService     *service.RolesService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatehouse",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initSessions()
	app.provider = oauthx.NewClient(cfg.ProviderBaseURL)

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.db = db
	return nil
}

func (app *Application) initSessions() {
	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
	})
	app.sessions = session.NewStore(app.redis, app.cfg.SessionTTL)
}

func (app *Application) initServices() {
	sink := &audit.LogSink{Logger: app.logger}

	var mailer service.ResetMailer
	if app.cfg.SMTPHost != "" {
		mailer = mail.NewMailer(mail.Config{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Sessions: app.sessions,
		Provider: app.provider,
		Audit:    sink,
		Mailer:   mailer,
	}
	app.twoFactorService = &service.TwoFactorService{
		Store:    app.db,
		Provider: app.provider,
		Audit:    sink,
		Issuer:   app.cfg.TOTPIssuer,
		Bypass: service.Bypass{
			Secret: app.cfg.TwoFactorTestSecret,
			Code:   app.cfg.TwoFactorTestCode,
		},
	}
	app.rolesService = &service.RolesService{
		Store:      app.db,
		HardDelete: app.cfg.Env == "test",
	}
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.TwoFactorService = app.twoFactorService
	app.router.RolesService = app.rolesService
	app.router.Introspector = app.provider
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gatehouse starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gatehouse...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := app.redis.Close(); err != nil {
		app.logger.Warn("redis close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		return fmt.Errorf("database close: %w", err)
	}

	app.logger.Info("shutdown complete")
	return nil
}
