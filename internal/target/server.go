// Package target provides a small reference service the harness can be
// pointed at for local runs and integration tests. It exposes the same
// surface the operation builders expect: a health probe and an in-memory
// object store.
package target

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server is an in-memory target for benchmarking the harness end to end.
type Server struct {
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server
	startTime  time.Time

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewServer builds a target server listening on port.
func NewServer(port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:    logger,
		router:    mux.NewRouter(),
		startTime: time.Now(),
		objects:   make(map[string][]byte),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/objects/{name}", s.handlePutObject).Methods("PUT")
	s.router.HandleFunc("/objects/{name}", s.handleGetObject).Methods("GET")
}

// Handler exposes the router for httptest-based callers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("target server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) handlePutObject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.objects[name] = body
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.RLock()
	body, ok := s.objects[name]
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "object not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(body)
}
