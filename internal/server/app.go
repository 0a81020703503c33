// Package server wires the timesheet application together: storage backend,
// attachment store, services and the HTTP server, and runs it until the
// process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/attachments"
	"github.com/dmitrijs2005/timesheet/internal/server/auth"
	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/httpapi"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	http   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	files, err := attachments.New(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("attachment store init error: %w", err)
	}

	// Only the disk store is served by this process.
	opener, _ := files.(httpapi.FileOpener)

	secret := c.SecretKey
	if secret == "" {
		if secret, err = auth.RandomSecret(32); err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("secret key: %w", err)
		}
		logger.Warn(ctx, "no secret key configured, sessions will not survive a restart")
	}

	es := services.NewEntryService(repos, files, logger, c.MaxUploadSize)
	rs := services.NewReportService(repos, c.ReferenceYear)
	au := auth.NewAuthenticator(c.AdminPasswordHash, secret, c.SessionValidityDuration)

	if !au.Enabled() {
		logger.Warn(ctx, "no admin password hash configured, login is disabled")
	}

	hs := httpapi.NewServer(httpapi.Options{
		Address:       c.HTTPAddr,
		Logger:        logger,
		Entries:       es,
		Reports:       rs,
		Auth:          au,
		Files:         opener,
		MaxUploadSize: c.MaxUploadSize,
	})

	return &App{config: c, logger: logger, repos: repos, http: hs}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"storage", app.config.StorageBackend,
		"attachments", app.config.AttachmentBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
