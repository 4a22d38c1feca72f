// Package server initializes and runs the mail backend: database setup and
// migrations, service construction, the HTTP API server, and graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/penguinmail/penguinmail/internal/logging"
	"github.com/penguinmail/penguinmail/internal/server/config"
	"github.com/penguinmail/penguinmail/internal/server/httpapi"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
	"github.com/penguinmail/penguinmail/internal/server/services"
	"github.com/penguinmail/penguinmail/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server

	userService *services.UserService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	store := storage.NewS3ContentStore(cfg)

	userService := services.NewUserService(db, manager, cfg)

	api := httpapi.NewServer(cfg, logger, httpapi.Services{
		Auth:        userService,
		Accounts:    services.NewAccountService(db, manager),
		Emails:      services.NewEmailService(db, manager),
		Labels:      services.NewLabelService(db, manager),
		Folders:     services.NewFolderService(db, manager),
		Contacts:    services.NewContactService(db, manager),
		Groups:      services.NewContactGroupService(db, manager),
		Settings:    services.NewSettingsService(db, manager),
		Attachments: services.NewAttachmentService(db, manager, store),
	})

	app := &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		api:         api,
		userService: userService,
	}

	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
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

// bootstrapUser creates the configured initial user, if any. There is no
// registration endpoint, so a fresh deployment gets its first login here.
func (app *App) bootstrapUser(ctx context.Context) {
	cfg := app.config
	if cfg.BootstrapUsername == "" || cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}
	user, err := app.userService.EnsureBootstrapUser(ctx, cfg.BootstrapUsername, cfg.BootstrapEmail, cfg.BootstrapPassword)
	if err != nil {
		app.logger.Error(ctx, "bootstrap user failed", "error", err)
		return
	}
	app.logger.Info(ctx, "bootstrap user ready", "email", user.Email)
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.bootstrapUser(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := app.api.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	wg.Wait()
}
