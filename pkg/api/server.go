// Package api serves the record store over HTTP.
//
// Routes live under /api/v1 and answer with a {success, data, error} JSON
// envelope, except for the text report. Prometheus metrics are served
// unauthenticated at /metrics.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	metricsInterval = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Routes builds the router with all routes configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// unprotected for scraping
	r.Handle("/metrics", s.metrics.Handler())

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))
		r.Get("/check", m.InstrumentHandler("GET", "/api/v1/check", s.handleCheck))
		r.Get("/report", m.InstrumentHandler("GET", "/api/v1/report", s.handleReport))

		r.Route("/records", func(r chi.Router) {
			r.Get("/", m.InstrumentHandler("GET", "/api/v1/records", s.handleListRecords))
			r.Post("/", m.InstrumentHandler("POST", "/api/v1/records", s.handleAppendRecord))
			r.Get("/count", m.InstrumentHandler("GET", "/api/v1/records/count", s.handleCount))
			r.Get("/{index}", m.InstrumentHandler("GET", "/api/v1/records/{index}", s.handleGetRecord))
			r.Delete("/{index}", m.InstrumentHandler("DELETE", "/api/v1/records/{index}", s.handleDeleteRecord))
		})
	})

	return r
}

// Addr returns the listen address of the configuration
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	updaterCtx, stopUpdater := context.WithCancel(ctx)
	defer stopUpdater()
	go s.startMetricsUpdater(updaterCtx, metricsInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	log.Infof("serving record API on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down record API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartServer listens on the configured address and serves the record API
// until ctx is done
func StartServer(ctx context.Context, store IRecordStore, config ServerConfig) error {
	ln, err := net.Listen("tcp", config.Addr())
	if err != nil {
		return err
	}

	server := NewServer(store, config, NewMetrics())
	log.Noticef("metrics available at http://%s/metrics", ln.Addr())
	return server.Serve(ctx, ln)
}
