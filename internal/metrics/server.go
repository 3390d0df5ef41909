package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// HealthCheck reports an error when the adapter is not healthy.
type HealthCheck func() error

// Server exposes metrics and a health endpoint over HTTP. It does nothing when the address is empty.
type Server struct {
	mu sync.Mutex

	address string
	health  HealthCheck
	server  *http.Server
}

// NewServer creates a new diagnostics server.
func NewServer(address string, health HealthCheck) *Server {
	return &Server{
		address: address,
		health:  health,
	}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	return r
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.address == "" || s.server != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrapf(err, "metrics: failed to listen on %s", s.address)
	}

	s.server = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics: server stopped unexpectedly")
		}
	}(s.server)

	log.WithField("address", listener.Addr().String()).Info("metrics: diagnostics server started")

	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.server = nil

	if err != nil {
		return errors.Wrap(err, "metrics: failed to shut down server")
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}{Status: "ok"}

	code := http.StatusOK

	if s.health != nil {
		if err := s.health(); err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.WithError(err).Warn("metrics: failed to write health response")
	}
}
