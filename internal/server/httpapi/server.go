// Package httpapi exposes the scanner API of the check-in server over
// HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/timex"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// EntryLister publishes the entry snapshot. *services.EntryService implements it.
type EntryLister interface {
	List(ctx context.Context) ([]models.Entry, error)
}

// BatchRecorder reconciles uploaded check-ins. *services.CheckInService
// implements it.
type BatchRecorder interface {
	RecordBatch(ctx context.Context, operator string, items []models.CheckIn) *models.BatchResult
}

type HTTPServer struct {
	address   string
	entries   EntryLister
	checkIns  BatchRecorder
	logger    logging.Logger
	jwtSecret []byte
	clock     timex.Clock
}

func NewHTTPServer(a string, l logging.Logger, es EntryLister, cs BatchRecorder, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		entries:   es,
		checkIns:  cs,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the route table:
//
//	GET  /api/health
//	GET  /api/scanner/entries
//	POST /api/scanner/checkin/batch
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	scanner := api.PathPrefix("/scanner").Subrouter()
	scanner.Use(s.accessTokenMiddleware)
	scanner.HandleFunc("/entries", s.listEntries).Methods(http.MethodGet)
	scanner.HandleFunc("/checkin/batch", s.recordBatch).Methods(http.MethodPost)

	for _, router := range []*mux.Router{r, api, scanner} {
		router.NotFoundHandler = http.HandlerFunc(notFound)
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
