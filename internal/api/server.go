// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes sessions, game history and operational probes over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/avalon/internal/api/middleware"
	"github.com/ManuGH/avalon/internal/domain/session/manager"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/log"
)

const (
	readyTimeout   = 2 * time.Second
	maxRequestBody = 64 << 10
)

// Config tunes the ingress stack.
type Config struct {
	// RateLimitRequests per RateLimitWindow per client IP; <= 0 disables.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TracingService names server spans; empty disables HTTP tracing.
	TracingService string
}

// Server routes HTTP requests to the engine and the history store.
type Server struct {
	cfg     Config
	engine  *manager.Engine
	history history.Store
	hub     http.Handler
	router  chi.Router
	logger  zerolog.Logger
}

// Option configures optional routes.
type Option func(*Server)

// WithHub mounts a websocket subscription handler on /ws.
func WithHub(h http.Handler) Option { return func(s *Server) { s.hub = h } }

// New builds the router. engine and store are required.
func New(cfg Config, engine *manager.Engine, store history.Store, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		history: store,
		logger:  log.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:     true,
		EnableLogging:     true,
		TracingService:    s.cfg.TracingService,
		RateLimitRequests: s.cfg.RateLimitRequests,
		RateLimitWindow:   s.cfg.RateLimitWindow,
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions/{guild}/{channel}", s.handleStatus)
		r.Post("/sessions/{guild}/{channel}/actions", s.handleAction)
		r.Get("/guilds/{guild}/history", s.handleHistory)
		r.Get("/guilds/{guild}/players/{player}/stats", s.handleStats)
	})

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Detail: "no route for " + req.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Detail: req.Method + " " + req.URL.Path})
	})
	return r
}
