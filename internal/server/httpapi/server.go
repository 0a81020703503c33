// Package httpapi exposes the timesheet over HTTP: entry CRUD, JSON report
// data, CSV downloads and import, and the shared-password session.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/auth"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
)

// FileOpener serves locally stored attachments. Only the disk store
// implements it; with object storage, file links point at the bucket.
type FileOpener interface {
	Open(key string) (*os.File, error)
}

// ShutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

type Server struct {
	address       string
	logger        logging.Logger
	entries       *services.EntryService
	reports       *services.ReportService
	auth          *auth.Authenticator
	files         FileOpener
	maxUploadSize int64
}

// Options carries the dependencies of a Server.
type Options struct {
	Address       string
	Logger        logging.Logger
	Entries       *services.EntryService
	Reports       *services.ReportService
	Auth          *auth.Authenticator
	Files         FileOpener
	MaxUploadSize int64
}

func NewServer(o Options) *Server {
	return &Server{
		address:       o.Address,
		logger:        o.Logger.With("module", "http_server"),
		entries:       o.Entries,
		reports:       o.Reports,
		auth:          o.Auth,
		files:         o.Files,
		maxUploadSize: o.MaxUploadSize,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	private := http.NewServeMux()
	private.HandleFunc("GET /{$}", s.handleIndex)
	private.HandleFunc("GET /entries", s.handleListEntries)
	private.HandleFunc("POST /entries", s.handleAddEntry)
	private.HandleFunc("POST /add", s.handleAddEntry)
	private.HandleFunc("POST /entries/{id}", s.handleUpdateEntry)
	private.HandleFunc("PUT /entries/{id}", s.handleUpdateEntry)
	private.HandleFunc("DELETE /entries/{id}", s.handleDeleteEntry)
	private.HandleFunc("GET /entries/{id}/file", s.handleEntryFile)
	private.HandleFunc("GET /files/{key...}", s.handleFile)

	private.HandleFunc("GET /daily-data", s.handleDailyData)
	private.HandleFunc("GET /weekly-data", s.handleWeeklyData)
	private.HandleFunc("GET /weekday-data", s.handleWeekdayData)
	private.HandleFunc("GET /weeks", s.handleWeeks)
	private.HandleFunc("GET /week-data", s.handleWeekData)

	private.HandleFunc("GET /download", s.handleDownload)
	private.HandleFunc("GET /daily-download", s.handleDailyDownload)
	private.HandleFunc("GET /weekly-download", s.handleWeeklyDownload)
	private.HandleFunc("GET /weekday-download", s.handleWeekdayDownload)
	private.HandleFunc("POST /import", s.handleImport)

	mux.Handle("/", s.requireSession(private))

	return s.recoverer(s.accessLog(mux))
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
