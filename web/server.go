// Package web provides the HTTP server for the device dashboard's REST API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"enipgo/config"
	"enipgo/logging"
	"enipgo/www"
)

// Server is the HTTP server for the device dashboard's REST API.
type Server struct {
	config config.WebConfig
	source DataSource
	server *http.Server
	router chi.Router

	mu      sync.RWMutex
	running bool
}

// NewServer creates a web server backed by source.
func NewServer(cfg config.WebConfig, source DataSource) *Server {
	s := &Server{config: cfg, source: source}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	auth := www.NewAuth(s.config.SessionSecret, s.config.Users)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Require)
		api.Get("/devices", s.handleListDevices)
		api.Get("/devices/{name}/identity", s.handleIdentity)
		api.Get("/devices/{name}/attributes/{path}", s.handleAttribute)
	})

	s.router = r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.ListDevices())
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	identity, err := s.source.Identity(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) handleAttribute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path := chi.URLParam(r, "path")
	reading, err := s.source.Attribute(r.Context(), name, path)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// debugLogWriter adapts logging.DebugLog to an io.Writer for *log.Logger.
type debugLogWriter string

func (tag debugLogWriter) Write(p []byte) (int, error) {
	logging.DebugLog(string(tag), "%s", string(p))
	return len(p), nil
}

// Start begins serving HTTP.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(debugLogWriter("web"), "", 0),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}
	}()
	s.running = true
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.running = false
	s.server = nil
	return err
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the server's base URL.
func (s *Server) Address() string {
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}
