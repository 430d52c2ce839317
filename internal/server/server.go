// Package server is the HTTP transport layer. It owns session lifecycle,
// invokes the dialogue core, and runs queued generative prompts through the
// augmentor after each turn.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce-chatbot/internal/common/config"
	"ecommerce-chatbot/internal/common/logger"
	"ecommerce-chatbot/internal/common/observability"
	"ecommerce-chatbot/internal/dialogue"
	"ecommerce-chatbot/internal/genai"
	"ecommerce-chatbot/internal/session"
)

// Server wires the transport layer together.
type Server struct {
	cfg        config.ServerConfig
	store      session.Store
	locker     *session.Locker
	dialogue   *dialogue.StateMachine
	augmentor  genai.Augmentor
	obs        *observability.Observability
	logger     logger.Logger
	router     chi.Router
	httpServer *http.Server
}

func New(cfg config.ServerConfig, store session.Store, sm *dialogue.StateMachine, augmentor genai.Augmentor, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		locker:    session.NewLocker(),
		dialogue:  sm,
		augmentor: augmentor,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(config.GetDuration(s.cfg.RequestTimeout)))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.CORSAllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/chat", s.handleChat)
	r.Post("/session/reset", s.handleSessionReset)

	return r
}

// Router exposes the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address and blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(s.cfg.WriteTimeout),
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("http server listening", map[string]interface{}{"addr": addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
